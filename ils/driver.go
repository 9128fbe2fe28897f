package ils

// Driver is the backend-facing contract. Read operations fail with an error
// when the backend cannot be reached or answers out of protocol; mutating
// operations return a Result (or BatchResult) carrying business denials as
// status message keys and reserve errors for transport-level failures.
type Driver interface {
	// PatronLogin validates credentials and returns the public patron view.
	// Rejected credentials yield (nil, nil), not an error.
	PatronLogin(username, password string) (*Patron, error)
	GetMyProfile(patron *Patron) (*Profile, error)

	GetHolding(id string) ([]Holding, error)
	GetStatuses(ids []string) (map[string][]Holding, error)

	GetMyTransactions(patron *Patron) ([]Loan, error)
	GetMyTransactionHistory(patron *Patron, params *HistoryParams) (*TransactionHistory, error)
	UpdateTransactionHistoryState(patron *Patron, enabled bool) (*Result, error)
	RenewMyItems(patron *Patron, renewIDs []string) (*BatchResult, error)

	GetMyHolds(patron *Patron) ([]Hold, error)
	PlaceHold(req *HoldRequest) (*Result, error)
	CancelHolds(patron *Patron, cancelIDs []string) (*BatchResult, error)
	UpdateHolds(patron *Patron, updateIDs []string, update HoldUpdate) (map[string]Result, error)

	GetMyFines(patron *Patron) ([]Fine, error)
	GetOnlinePaymentDetails(patron *Patron, fines []Fine) (*PaymentDetails, error)
	MarkFeesAsPaid(patron *Patron, payment Payment, fineIDs []string) (*Result, error)

	GetPickUpLocations(patron *Patron, req *HoldRequest) ([]Location, error)
	GetDefaultPickUpLocation(patron *Patron) (string, error)
	GetRequestGroups(recordID string, patron *Patron) ([]RequestGroup, error)
	GetDefaultRequestGroup(patron *Patron) (string, error)

	UpdateEmail(patron *Patron, email string) (*Result, error)
	UpdatePhone(patron *Patron, phone string) (*Result, error)
	UpdateAddress(patron *Patron, addr AddressUpdate) (*Result, error)
	UpdateMessagingSettings(patron *Patron, settings map[string]MessageService) (*Result, error)
	ChangePassword(patron *Patron, oldPassword, newPassword string) (*Result, error)

	// SupportsMethod reports whether the driver can perform the named
	// operation under its current configuration.
	SupportsMethod(method string) bool
}

// AddressUpdate carries a patron address change.
type AddressUpdate struct {
	Address1 string
	Zip      string
	City     string
	Country  string
}
