package axiell

// Backend status codes mapped to the message keys the caller displays.
// Unknown codes pass through untranslated.
var statusMessages = map[string]string{
	"copyHasSpecialCircCat": "Copy has special circulation",
	"copyIsReserved":        "renew_item_requested",
	"isLoanedToday":         "Borrowed today",
	"isRenewedToday":        "Renewed today",
	"isOverdue":             "renew_item_overdue",
	"maxNofRenewals":        "renew_item_limit",
	"patronIsDeniedLoan":    "renew_denied",
	"patronHasDebt":         "renew_debt",
	"patronIsInvoiced":      "renew_item_patron_is_invoiced",
	"renewalIsDenied":       "renew_denied",
	"ReservationDenied":     "hold_error_denied",
}

func mapStatus(status, op string) string {
	// A blocked card reads differently when placing a hold.
	if status == "BlockedBorrCard" {
		if op == "addReservation" {
			return "hold_error_blocked"
		}
		return "Borrowing Block Message"
	}
	if mapped, ok := statusMessages[status]; ok {
		return mapped
	}
	return status
}

// permanentRenewalBlocks never clear on their own, so renewal counters are
// not reported for loans carrying them.
var permanentRenewalBlocks = map[string]bool{
	"copyHasSpecialCircCat": true,
	"copyIsReserved":        true,
}

// itemStatuses maps department holding statuses to display statuses.
var itemStatuses = map[string]string{
	"availableForLoan":    "Available",
	"fetchnoteSent":       "On Hold",
	"onLoan":              "Charged",
	"nonAvailableForLoan": "On Reference Desk",
	"onRefDesk":           "On Reference Desk",
	"overdueLoan":         "overdueLoan",
	"ordered":             "Ordered",
	"returnedToday":       "Returned today",
	"inTransfer":          "In Transit",
}

// Messaging send method codes differ between the current and the old
// backend generation.
var messagingCodes = map[string]string{
	"snailMail":  "print",
	"ilsDefined": "inactive",
}

var messagingCodesOld = map[string]string{
	"snailMail":  "letter",
	"ilsDefined": "none",
}

func mapCodeToStatus(code string) string {
	if s, ok := messagingCodes[code]; ok {
		return s
	}
	return code
}

func mapStatusToCode(status string) string {
	for code, s := range messagingCodes {
		if s == status {
			return code
		}
	}
	return status
}

func mapOldCodeToStatus(code string) string {
	if s, ok := messagingCodesOld[code]; ok {
		return s
	}
	return code
}

func mapOldStatusToCode(status string) string {
	for code, s := range messagingCodesOld {
		if s == status {
			return code
		}
	}
	return status
}
