package mikromarc

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/indexdata/ilsdriver/dateutil"
	"github.com/indexdata/ilsdriver/ils"
)

// feeTypes maps backend account code ids to fee type labels. Codes missing
// from the table fall back to the backend's own account code name.
var feeTypes = map[int]string{
	-1: "Accrued Fine",
	1:  "Hold Fee",
	2:  "Arrival Notice",
	3:  "Other",
	4:  "Other",
	5:  "Accrued Fine",
	6:  "Overdue",
	7:  "Processing Fee for Overdue Notice",
	8:  "Lost Item Processing",
	9:  "Hold Fee",
	11: "Lost Item Replacement",
	12: "Other",
	13: "Other",
	14: "Other",
	15: "Interlibrary Loan",
	16: "Other",
	17: "Other",
	18: "Hold Expired",
}

type borrowerDebt struct {
	ID              int     `json:"Id"`
	State           string  `json:"State"`
	Amount          float64 `json:"Amount"`
	Remainder       float64 `json:"Remainder"`
	DebtDate        string  `json:"DebtDate"`
	AccountCodeID   int     `json:"AccountCodeId"`
	AccountCodeName string  `json:"AccountCodeName"`
	ItemID          int     `json:"ItemId"`
	LocalUnitID     int     `json:"LocalUnitId"`
	MarcRecordID    int     `json:"MarcRecordId"`
	MarcRecordTitle string  `json:"MarcRecordTitle"`
}

// GetMyFines returns the patron's open debts. Payability requires the debt
// to appear in the backend's payable listing, a fee type outside the
// blocked list and a positive balance.
func (d *Driver) GetMyFines(patron *ils.Patron) ([]ils.Fine, error) {
	// Account entry status 2 is the full listing.
	allFines, err := getList[borrowerDebt](d, "BorrowerDebts",
		[]string{"BorrowerDebts", patron.Username, "2", "0"}, nil)
	if err != nil {
		return nil, err
	}
	if len(allFines) == 0 {
		return nil, nil
	}

	payableIDs := map[int]bool{}
	if d.cfg.OnlinePayment.Enabled {
		// Status 1 lists the currently payable entries.
		payableFines, err := getList[borrowerDebt](d, "BorrowerDebts",
			[]string{"BorrowerDebts", patron.Username, "1", "0"}, nil)
		if err != nil {
			return nil, err
		}
		for _, fine := range payableFines {
			payableIDs[fine.ID] = true
		}
	}

	fines := make([]ils.Fine, 0, len(allFines))
	for _, entry := range allFines {
		if entry.State != "Estimated" && entry.State != "Unpaid" {
			continue
		}
		feeType, ok := feeTypes[entry.AccountCodeID]
		if !ok {
			feeType = entry.AccountCodeName
		}
		balance := int64(math.Round(entry.Remainder * 100))
		payable := payableIDs[entry.ID] &&
			!blockedFeeType(d.cfg.OnlinePayment.NonPayable, entry.AccountCodeID) &&
			balance >= 1

		fine := ils.Fine{
			ID:            strconv.Itoa(entry.ID),
			Amount:        int64(math.Round(entry.Amount * 100)),
			Balance:       balance,
			Description:   feeType,
			CreateDate:    dateutil.FormatOData(entry.DebtDate),
			PayableOnline: payable,
			Title:         entry.MarcRecordTitle,
		}
		if entry.ItemID != 0 {
			fine.ItemID = strconv.Itoa(entry.ItemID)
		}
		if entry.LocalUnitID != 0 {
			fine.Organisation = strconv.Itoa(entry.LocalUnitID)
		}
		if entry.MarcRecordID != 0 {
			fine.RecordID = strconv.Itoa(entry.MarcRecordID)
		}
		fines = append(fines, fine)
	}
	return fines, nil
}

func blockedFeeType(blocked []int, code int) bool {
	for _, b := range blocked {
		if b == code {
			return true
		}
	}
	return false
}

// GetOnlinePaymentDetails sums the payable balances. A non-payable fine in
// the list blocks the whole payment, as does a payable total under the
// configured minimum.
func (d *Driver) GetOnlinePaymentDetails(patron *ils.Patron, fines []ils.Fine) (*ils.PaymentDetails, error) {
	if len(fines) == 0 {
		return &ils.PaymentDetails{Reason: "online_payment_minimum_fee"}, nil
	}
	reason := ""
	var amount int64
	for _, fine := range fines {
		if !fine.PayableOnline {
			reason = "online_payment_fines_contain_nonpayable_fees"
			continue
		}
		amount += fine.Balance
	}
	if reason == "" && d.cfg.OnlinePayment.MinimumFee > 0 && amount < d.cfg.OnlinePayment.MinimumFee {
		reason = "online_payment_minimum_fee"
	}
	return &ils.PaymentDetails{
		Payable: reason == "",
		Amount:  amount,
		Reason:  reason,
	}, nil
}

type debtPayment struct {
	Amount float64 `json:"Amount"`
	// The backend only accepts a number here, so the internal transaction
	// number is relayed instead of the transaction id.
	DibsTransactionID string `json:"DibsTransactionId"`
	DibsPaymentDate   string `json:"DibsPaymentDate"`
}

// MarkFeesAsPaid registers the payment against the payable debts, splitting
// the amount oldest-first. When the payable balance drifted since checkout
// the payment is rejected with "fines_updated" and nothing is registered.
func (d *Driver) MarkFeesAsPaid(patron *ils.Patron, payment ils.Payment, fineIDs []string) (*ils.Result, error) {
	fines, err := d.GetMyFines(patron)
	if err != nil {
		return nil, err
	}
	var payableFines []ils.Fine
	var total int64
	for _, fine := range fines {
		if !fine.PayableOnline {
			continue
		}
		payableFines = append(payableFines, fine)
		total += fine.Balance
	}

	if total < payment.Amount ||
		(d.cfg.OnlinePayment.ExactBalanceRequired && total != payment.Amount) {
		d.logger.Warn("payable balance changed since payment was started",
			"patron", patron.Username, "payable", total, "paid", payment.Amount)
		return &ils.Result{Success: false, Status: "fines_updated"}, nil
	}

	amountLeft := payment.Amount
	for _, fine := range payableFines {
		if amountLeft == 0 {
			break
		}
		payAmount := min(fine.Balance, amountLeft)
		amountLeft -= payAmount

		req := debtPayment{
			Amount:            float64(payAmount) / 100.0,
			DibsTransactionID: payment.TransactionNumber,
			DibsPaymentDate:   time.Now().Format(time.RFC3339),
		}
		code, _, _, err := d.send("BorrowerDebts", http.MethodPost,
			[]string{"BorrowerDebts", patron.Username, fine.ID}, req)
		if err != nil {
			return nil, err
		}
		if code != http.StatusOK {
			d.logger.Error("payment registration failed",
				"patron", patron.Username, "fine", fine.ID, "status", code)
			return nil, &ils.TransportError{Op: "registerPayment", StatusCode: code}
		}
	}

	d.invalidatePatron(patron)
	return &ils.Result{Success: true}, nil
}
