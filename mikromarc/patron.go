package mikromarc

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/indexdata/ilsdriver/dateutil"
	"github.com/indexdata/ilsdriver/ils"
)

type authenticateRequest struct {
	Barcode string `json:"Barcode"`
	Pin     string `json:"Pin"`
}

type borrower struct {
	Name                   string `json:"Name"`
	MainEmail              string `json:"MainEmail"`
	MainPhone              string `json:"MainPhone"`
	Mobile                 string `json:"Mobile"`
	MainAddrLine1          string `json:"MainAddrLine1"`
	MainAddrLine2          string `json:"MainAddrLine2"`
	MainZip                string `json:"MainZip"`
	MainPlace              string `json:"MainPlace"`
	Expires                string `json:"Expires"`
	Defaulted              bool   `json:"Defaulted"`
	StoreBorrowerHistory   bool   `json:"StoreBorrowerHistory"`
	RefuseReminderMessages bool   `json:"RefuseReminderMessages"`
	ReceiptMessageFormat   int    `json:"ReceiptMessageFormat"`
	LettersByEmail         bool   `json:"LettersByEmail"`
	LettersBySMS           bool   `json:"LettersBySMS"`
}

// PatronLogin authenticates the patron and caches the full profile fetched
// from the borrower record. Bad credentials return (nil, nil).
func (d *Driver) PatronLogin(username, password string) (*ils.Patron, error) {
	req := authenticateRequest{Barcode: username, Pin: password}
	code, result, oerr, err := d.send("Default.Authenticate", http.MethodPost,
		[]string{"odata", "Borrowers", "Default.Authenticate"}, req)
	if err != nil {
		return nil, err
	}

	var id int
	switch {
	case code == http.StatusOK:
		if json.Unmarshal(result, &id) != nil || id == 0 {
			return nil, nil
		}
	case code == http.StatusForbidden && oerr != nil && oerr.Code == "Defaulted":
		// A defaulted borrower still gets in, through the debtor endpoint.
		id, err = d.authenticateDebtor(req)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return nil, nil
		}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return nil, nil
	default:
		return nil, &ils.TransportError{Op: "Default.Authenticate", StatusCode: code}
	}

	patron := &ils.Patron{
		ID:       strconv.Itoa(id),
		Username: username,
		Password: password,
	}
	profile, err := d.fetchProfile(patron)
	if err != nil {
		return nil, err
	}
	patron.Firstname = profile.Firstname
	patron.Lastname = profile.Lastname
	patron.Blocked = profile.Blocked
	return patron, nil
}

func (d *Driver) authenticateDebtor(req authenticateRequest) (int, error) {
	const op = "Default.AuthenticateDebtor"
	code, result, _, err := d.send(op, http.MethodPost,
		[]string{"odata", "Borrowers", op}, req)
	if err != nil {
		return 0, err
	}
	if code != http.StatusOK {
		if code == http.StatusUnauthorized || code == http.StatusForbidden {
			return 0, nil
		}
		return 0, &ils.TransportError{Op: op, StatusCode: code}
	}
	var debtor struct {
		BorrowerID int `json:"BorrowerId"`
	}
	if json.Unmarshal(result, &debtor) != nil {
		return 0, nil
	}
	return debtor.BorrowerID, nil
}

// GetMyProfile returns the cached profile, fetching the borrower record
// again after invalidation.
func (d *Driver) GetMyProfile(patron *ils.Patron) (*ils.Profile, error) {
	return d.fetchProfile(patron)
}

func (d *Driver) fetchProfile(patron *ils.Patron) (*ils.Profile, error) {
	key := d.patronCacheKey(patron, "profile")
	if cached, ok := d.cache.Get(key); ok {
		return cached.(*ils.Profile), nil
	}

	b, err := getObject[borrower](d, "Borrowers",
		[]string{"odata", "Borrowers(" + patron.ID + ")"})
	if err != nil {
		return nil, err
	}

	// Names come back as "Last, First".
	lastname, firstname, _ := strings.Cut(b.Name, ",")
	phone := b.MainPhone
	if phone == "" {
		phone = b.Mobile
	}
	profile := ils.Profile{
		Patron: ils.Patron{
			ID:        patron.ID,
			Username:  patron.Username,
			Password:  patron.Password,
			Firstname: strings.TrimSpace(firstname),
			Lastname:  upperFirst(strings.TrimSpace(lastname)),
			Blocked:   b.Defaulted,
		},
		Email:          b.MainEmail,
		Phone:          phone,
		Address1:       b.MainAddrLine1,
		Address2:       b.MainAddrLine2,
		Zip:            b.MainZip,
		City:           b.MainPlace,
		ExpirationDate: dateutil.FormatOData(b.Expires),
		Messaging:      d.parseMessagingSettings(b),
	}
	if d.cfg.TransactionHistoryEnabled {
		profile.LoanHistory = b.StoreBorrowerHistory
	}

	d.cache.Put(key, &profile, patronCacheTTL)
	return &profile, nil
}

// parseMessagingSettings builds the messaging preferences the borrower
// record carries. The due date notice is a plain toggle; the checkout
// notice is a single-format selection; notifications toggle per channel.
func (d *Driver) parseMessagingSettings(b *borrower) map[string]ils.MessageService {
	settings := map[string]ils.MessageService{
		"dueDateNotice": {
			Type:   "dueDateNotice",
			Active: !b.RefuseReminderMessages,
		},
	}

	if len(d.cfg.Messaging.CheckoutNotice) > 0 {
		format := strconv.Itoa(b.ReceiptMessageFormat)
		methods := map[string]ils.SendMethod{}
		for _, option := range d.cfg.Messaging.CheckoutNotice {
			value, _, _ := strings.Cut(option, ":")
			methods[value] = ils.SendMethod{Type: value, Active: value == format}
		}
		settings["checkoutNotice"] = ils.MessageService{
			Type:        "checkoutNotice",
			Transport:   format,
			SendMethods: methods,
		}
	}

	if len(d.cfg.Messaging.Notifications) > 0 {
		active := map[string]bool{"Email": b.LettersByEmail, "SMS": b.LettersBySMS}
		methods := map[string]ils.SendMethod{}
		for _, option := range d.cfg.Messaging.Notifications {
			value, _, _ := strings.Cut(option, ":")
			methods[value] = ils.SendMethod{Type: value, Active: active[value]}
		}
		settings["notifications"] = ils.MessageService{
			Type:        "notifications",
			SendMethods: methods,
		}
	}
	return settings
}

// patchBorrower applies a partial update to the borrower record and returns
// the backend status code.
func (d *Driver) patchBorrower(patron *ils.Patron, fields map[string]any) (int, error) {
	code, _, _, err := d.send("Borrowers", http.MethodPatch,
		[]string{"odata", "Borrowers(" + patron.ID + ")"}, fields)
	return code, err
}

// UpdateEmail changes the patron's email address.
func (d *Driver) UpdateEmail(patron *ils.Patron, email string) (*ils.Result, error) {
	code, err := d.patchBorrower(patron, map[string]any{"MainEmail": email})
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return &ils.Result{Success: false, Status: "Changing the email address failed"}, nil
	}
	d.invalidatePatron(patron)
	return &ils.Result{Success: true, Status: "request_change_accepted"}, nil
}

// UpdatePhone changes both the main and mobile phone numbers.
func (d *Driver) UpdatePhone(patron *ils.Patron, phone string) (*ils.Result, error) {
	code, err := d.patchBorrower(patron, map[string]any{"MainPhone": phone, "Mobile": phone})
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return &ils.Result{Success: false, Status: "Changing the phone number failed"}, nil
	}
	d.invalidatePatron(patron)
	return &ils.Result{Success: true, Status: "request_change_accepted"}, nil
}

// UpdateAddress changes the patron's main address.
func (d *Driver) UpdateAddress(patron *ils.Patron, addr ils.AddressUpdate) (*ils.Result, error) {
	fields := map[string]any{
		"MainAddrLine1": addr.Address1,
		"MainZip":       addr.Zip,
		"MainPlace":     addr.City,
	}
	code, err := d.patchBorrower(patron, fields)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return &ils.Result{Success: false, Status: "An error has occurred"}, nil
	}
	d.invalidatePatron(patron)
	return &ils.Result{Success: true, Status: "request_change_done"}, nil
}

// UpdateTransactionHistoryState toggles the per-patron loan history opt-in.
func (d *Driver) UpdateTransactionHistoryState(patron *ils.Patron, enabled bool) (*ils.Result, error) {
	code, err := d.patchBorrower(patron, map[string]any{"StoreBorrowerHistory": enabled})
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return &ils.Result{Success: false, Status: "Changing the checkout history state failed"}, nil
	}
	d.invalidatePatron(patron)
	return &ils.Result{Success: true, Status: "request_change_accepted"}, nil
}

// UpdateMessagingSettings writes the changed messaging preferences back to
// the borrower record.
func (d *Driver) UpdateMessagingSettings(patron *ils.Patron, settings map[string]ils.MessageService) (*ils.Result, error) {
	fields := map[string]any{}
	if service, ok := settings["dueDateNotice"]; ok {
		fields["RefuseReminderMessages"] = !service.Active
	}
	if service, ok := settings["checkoutNotice"]; ok {
		fields["ReceiptMessageFormat"] = intID(service.Transport)
	}
	if service, ok := settings["notifications"]; ok {
		if method, ok := service.SendMethods["SMS"]; ok {
			fields["LettersBySMS"] = method.Active
		}
		if method, ok := service.SendMethods["Email"]; ok {
			fields["LettersByEmail"] = method.Active
		}
	}

	code, err := d.patchBorrower(patron, fields)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return &ils.Result{Success: false, Status: "Changing the preferences failed"}, nil
	}
	d.invalidatePatron(patron)
	return &ils.Result{Success: true, Status: "request_change_accepted"}, nil
}

// ChangePassword changes the patron's PIN code.
func (d *Driver) ChangePassword(patron *ils.Patron, oldPassword, newPassword string) (*ils.Result, error) {
	req := map[string]string{"NewPin": newPassword, "OldPin": oldPassword}
	code, _, _, err := d.send("Default.ChangePinCode", http.MethodPost,
		[]string{"odata", "Borrowers(" + patron.ID + ")", "Default.ChangePinCode"}, req)
	if err != nil {
		return nil, err
	}
	if code != http.StatusNoContent {
		return &ils.Result{Success: false, Status: "authentication_error_invalid_attributes"}, nil
	}
	return &ils.Result{Success: true, Status: "change_password_ok"}, nil
}

func upperFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
