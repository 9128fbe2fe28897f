package ils

// Shared entity types returned by the drivers. All values are transient,
// backend-normalized views; nothing here is persisted except the cached
// patron profile.

// Patron is the public view returned by PatronLogin.
type Patron struct {
	ID        string
	Username  string
	Password  string
	Firstname string
	Lastname  string
	// PatronID is a secondary, session-scoped identifier required by some
	// backend operations (e.g. loan history). Empty when the backend has no
	// such concept.
	PatronID string
	Blocked  bool
}

// Profile is the full patron profile, cached per username and language.
type Profile struct {
	Patron
	Email          string
	EmailID        string
	Phone          string
	PhoneID        string
	PhoneAreaCode  string
	PhoneLocalCode string
	Address1       string
	Address2       string
	AddressID      string
	Zip            string
	City           string
	Country        string
	ExpirationDate string
	LoanHistory    bool
	Messaging      map[string]MessageService
}

// MessageService describes one messaging preference (pickup notice, overdue
// notice, due date alert...) with its available and active send methods.
type MessageService struct {
	Type        string
	Active      bool
	NumOfDays   int
	SendMethods map[string]SendMethod
	// Transport is the single selected method for drivers that expose
	// settings as a per-service selection rather than a toggle list.
	Transport string
}

type SendMethod struct {
	Type   string
	Active bool
}

// SummaryLocation is the sentinel location of the trailing summary
// pseudo-item in a holdings list.
const SummaryLocation = "__HOLDINGSSUMMARYLOCATION__"

// Holding is one item-level holding entry. The last element of any holdings
// list is a summary pseudo-item carrying the aggregate fields and the
// SummaryLocation sentinel, with the per-item fields zeroed, so that
// consumers can iterate without branching on the element shape.
type Holding struct {
	ID             string
	ItemID         string
	Barcode        string
	HoldingsID     string
	OrganisationID string
	BranchID       string
	Branch         string
	Department     string
	Location       string
	Status         string
	Availability   bool
	DueDate        string
	CallNumber     string
	// Number holds issue/volume numbering (e.g. "2018:4") when the backend
	// reports it, possibly reinterpreted from the shelf mark.
	Number         string
	Holdable       bool
	RequestsPlaced int
	Journal        *JournalInfo
	Info           AvailabilityInfo

	// Aggregate fields, set only on the summary pseudo-item.
	Available    int
	Ordered      int
	Total        int
	Reservations int
	Locations    int
	// TitleHold reports whether a title-level hold is permitted; only
	// meaningful on the summary and only for drivers that support it.
	TitleHold bool
	Summary   bool
}

// JournalInfo groups serial holdings by year and edition.
type JournalInfo struct {
	Year     string
	Edition  string
	Location string
}

// AvailabilityInfo carries the per-entry counts used to build the summary.
// Total is nil when the backend did not report a count, which is distinct
// from an explicit zero.
type AvailabilityInfo struct {
	Available    int
	Ordered      int
	Total        *int
	Reservations int
	DisplayText  string
}

// DueStatus of a loan relative to now.
type DueStatus string

const (
	DueStatusNone    DueStatus = ""
	DueStatusDue     DueStatus = "due"
	DueStatusOverdue DueStatus = "overdue"
)

// Loan is a checked-out item.
type Loan struct {
	ID         string
	CheckoutID string
	ItemID     string
	Title      string
	DueDate    string
	DueStatus  DueStatus
	Renewable  bool
	Message    string
	// Renew/RenewLimit count remaining renewals; RenewalCount/RenewalLimit
	// count used renewals against a configured limit. A driver fills one
	// pair depending on what the backend reports.
	Renew        int
	RenewLimit   int
	RenewalCount int
	RenewalLimit int
	HasRenewals  bool
}

// HistoryLoan is a past transaction.
type HistoryLoan struct {
	ID              string
	Title           string
	CheckoutDate    string
	ReturnDate      string
	PublicationYear string
	Volume          string
}

// TransactionHistory is a page of past loans.
type TransactionHistory struct {
	Count        int
	Transactions []HistoryLoan
}

// HistoryParams select and order a transaction history page.
type HistoryParams struct {
	Page     int
	PageSize int
	// Sort is "<field> <direction>", e.g. "checkout desc".
	Sort string
}

// Hold is a reservation. CancelDetails and UpdateDetails are opaque tokens
// that must round-trip unchanged into CancelHolds/UpdateHolds.
type Hold struct {
	ID             string
	ItemID         string
	RequestID      string
	Title          string
	Location       string
	PickupNumber   string
	Create         string
	Expire         string
	LastPickupDate string
	Position       string
	Available      bool
	InTransit      bool
	Frozen         bool
	FrozenThrough  string
	RequestGroup   string
	RequestGroupID string
	Organisation   string
	Type           string
	CancelDetails  string
	UpdateDetails  string
	Volume         string
	PubYear        string
}

// HoldRequest carries the data needed to place a hold.
type HoldRequest struct {
	Patron         *Patron
	RecordID       string
	ItemID         string
	PickUpLocation string
	RequestGroupID string
	// StartDate and RequiredBy are Unix timestamps; zero means unset.
	StartDate  int64
	RequiredBy int64
	// Organisation is set when querying pickup locations for an existing
	// hold, so drivers can restrict the choice to the holding organisation.
	Organisation string
}

// HoldUpdate describes the fields to change on existing holds.
type HoldUpdate struct {
	Frozen         *bool
	FrozenThrough  int64
	RequiredBy     int64
	PickUpLocation string
}

// Fine is an outstanding debt. Amount and Balance are integer minor
// currency units.
type Fine struct {
	ID            string
	RecordID      string
	ItemID        string
	Title         string
	Amount        int64
	Balance       int64
	Description   string
	CreateDate    string
	PayableOnline bool
	Organisation  string
}

// Location is a pickup location.
type Location struct {
	ID      string
	Display string
}

// RequestGroup scopes which branches may fulfil a hold.
type RequestGroup struct {
	ID   string
	Name string
}

// Result is the outcome of a single mutating operation.
type Result struct {
	Success    bool
	Status     string
	SysMessage string
	// WarningMessage is set when the operation succeeded but a follow-up
	// step failed (partial success).
	WarningMessage string
}

// ItemResult is the outcome for one item in a batch operation.
type ItemResult struct {
	ItemID     string
	Success    bool
	Status     string
	SysMessage string
	NewDate    string
}

// BatchResult reports per-item outcomes of a client-side loop. A failure on
// one item never aborts the rest of the batch.
type BatchResult struct {
	Count  int
	Items  map[string]ItemResult
	Blocks []string
}

// PaymentDetails describes what is currently payable online.
type PaymentDetails struct {
	Payable bool
	Amount  int64
	Reason  string
}

// Payment registers an online payment against the backend.
type Payment struct {
	Amount            int64
	TransactionID     string
	TransactionNumber string
}
