package axiell

import (
	"strings"

	"github.com/indexdata/ilsdriver/ils"
)

// messagingServices are the service types the backend knows, with the send
// methods each one accepts.
var messagingServices = map[string][]string{
	"pickUpNotice":  {"letter", "email", "sms", "none"},
	"overdueNotice": {"letter", "email", "sms", "none"},
	"dueDateAlert":  {"email", "none"},
}

// PatronLogin authenticates the patron and caches the full profile parsed
// from the same response. Bad credentials return (nil, nil).
func (d *Driver) PatronLogin(username, password string) (*ils.Patron, error) {
	const op = "getPatronInformation"
	req := patronInformationRequest{Param: patronAuthParams{
		ArenaMember: d.cfg.ArenaMember,
		User:        username,
		Password:    password,
		Language:    d.language(),
	}}
	var res patronInformationResponse
	st, err := d.call(d.patron, op, req, &res, username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, username); err != nil {
			return nil, err
		}
		return nil, nil
	}
	info := res.Result.PatronInformation
	if info == nil {
		return nil, nil
	}

	names := strings.Split(info.PatronName, " ")
	lastname := names[len(names)-1]
	firstname := strings.Join(names[:len(names)-1], " ")

	// Some operations need a separate session id, e.g. the loan history.
	patronID, err := d.authenticatePatron(username, password)
	if err != nil {
		return nil, err
	}

	patron := ils.Patron{
		ID:        info.BackendPatronID,
		Username:  username,
		Password:  password,
		Firstname: firstname,
		Lastname:  lastname,
		PatronID:  patronID,
	}

	profile := ils.Profile{
		Patron:      patron,
		LoanHistory: yes(info.IsLoanHistoryEnabled) || info.IsLoanHistoryEnabled == "true",
	}
	for _, email := range info.EmailAddresses.EmailAddress {
		if yes(email.IsActive) {
			profile.Email = email.Address
			profile.EmailID = email.ID
		}
	}
	for _, address := range info.Addresses.Address {
		if yes(address.IsActive) {
			profile.Address1 = address.StreetAddress
			profile.Zip = address.ZipCode
			profile.City = address.City
			profile.Country = address.Country
			profile.AddressID = address.ID
		}
	}
	for _, phone := range info.PhoneNumbers.PhoneNumber {
		if yes(phone.Sms.UseForSms) {
			profile.PhoneAreaCode = phone.AreaCode
			profile.PhoneLocalCode = phone.LocalCode
			profile.Phone = phone.AreaCode + phone.LocalCode
			profile.PhoneID = phone.ID
		}
	}

	switch d.cfg.MessagingMethod {
	case "database":
		profile.Messaging = d.parseStoredMessagingSettings(info.MessageServices.MessageService)
	case "driver":
		messaging, err := d.parseDriverMessagingSettings(
			info.MessageServices.MessageService, &patron)
		if err != nil {
			return nil, err
		}
		profile.Messaging = messaging
	default:
		profile.Messaging = map[string]ils.MessageService{}
	}

	d.cache.Put(d.patronCacheKey(username), &profile, patronCacheTTL)
	return &patron, nil
}

func (d *Driver) authenticatePatron(username, password string) (string, error) {
	const op = "authenticatePatron"
	req := authenticatePatronRequest{Param: patronAuthParams{
		ArenaMember: d.cfg.ArenaMember,
		User:        username,
		Password:    password,
	}}
	var res authenticatePatronResponse
	st, err := d.call(d.patron, op, req, &res, username)
	if err != nil {
		return "", err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, username); err != nil {
			return "", err
		}
		return "", nil
	}
	return res.Result.PatronID, nil
}

// GetMyProfile returns the cached profile, logging in again to repopulate
// it after invalidation.
func (d *Driver) GetMyProfile(patron *ils.Patron) (*ils.Profile, error) {
	key := d.patronCacheKey(patron.Username)
	if cached, ok := d.cache.Get(key); ok {
		return cached.(*ils.Profile), nil
	}
	if _, err := d.PatronLogin(patron.Username, patron.Password); err != nil {
		return nil, err
	}
	cached, ok := d.cache.Get(key)
	if !ok {
		return nil, &ils.AuthError{Detail: "profile unavailable for " + patron.Username}
	}
	return cached.(*ils.Profile), nil
}

// parseStoredMessagingSettings exposes messaging preferences as a full
// toggle list so that a settings form can be rendered from it.
func (d *Driver) parseStoredMessagingSettings(services []messageService) map[string]ils.MessageService {
	parsed := make(map[string]ils.MessageService, len(messagingServices))
	for serviceType, validMethods := range messagingServices {
		methods := map[string]ils.SendMethod{}
		for _, method := range validMethods {
			if d.methodFiltered(serviceType, mapOldStatusToCode(method)) {
				continue
			}
			methods[method] = ils.SendMethod{Type: method}
		}
		parsed[serviceType] = ils.MessageService{
			Type:        serviceType,
			SendMethods: methods,
		}
	}
	for _, service := range services {
		entry, ok := parsed[service.ServiceType]
		if !ok {
			continue
		}
		entry.Active = yes(service.IsActive)
		entry.NumOfDays = service.NofDays.Value
		for _, method := range service.SendMethods.SendMethod {
			methodType := "none"
			if method.Value != "" {
				methodType = mapOldCodeToStatus(method.Value)
			}
			if current, ok := entry.SendMethods[methodType]; ok {
				current.Active = yes(method.IsActive)
				entry.SendMethods[methodType] = current
			}
		}
		parsed[service.ServiceType] = entry
	}
	return parsed
}

// parseDriverMessagingSettings exposes messaging preferences as a single
// selected transport per service, with the selectable methods fetched from
// the backend.
func (d *Driver) parseDriverMessagingSettings(services []messageService, patron *ils.Patron) (map[string]ils.MessageService, error) {
	selected := map[string]messageService{}
	for _, service := range services {
		selected[service.ServiceType] = service
	}
	available, err := d.getMessageServices(patron)
	if err != nil {
		return nil, err
	}
	parsed := make(map[string]ils.MessageService, len(available))
	for serviceType, methods := range available {
		current := selected[serviceType]
		transport := ""
		if len(current.SendMethods.SendMethod) > 0 {
			transport = mapCodeToStatus(current.SendMethods.SendMethod[0].Value)
		}
		entry := ils.MessageService{
			Type:      serviceType,
			Transport: transport,
			NumOfDays: current.NofDays.Value,
		}
		entry.SendMethods = make(map[string]ils.SendMethod, len(methods))
		for _, method := range methods {
			coded := mapCodeToStatus(method)
			entry.SendMethods[coded] = ils.SendMethod{
				Type:   coded,
				Active: transport == coded,
			}
		}
		parsed[serviceType] = entry
	}
	return parsed, nil
}

func (d *Driver) methodFiltered(serviceType, code string) bool {
	for _, filtered := range d.cfg.MessagingFilters[serviceType] {
		if filtered == code {
			return true
		}
	}
	return false
}

// getMessageServices lists the send methods the backend offers per service
// type, minus the configured filters.
func (d *Driver) getMessageServices(patron *ils.Patron) (map[string][]string, error) {
	if d.patronAurora == nil {
		return nil, nil
	}
	const op = "getMessageServices"
	req := messageServicesRequest{Param: patronAuthParams{
		ArenaMember: d.cfg.ArenaMember,
		Language:    d.language(),
		User:        patron.Username,
		Password:    patron.Password,
	}}
	var res messageServicesResponse
	st, err := d.call(d.patronAurora, op, req, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, patron.Username); err != nil {
			return nil, err
		}
		return nil, nil
	}
	available := map[string][]string{}
	for _, service := range res.Result.MessageServices.MessageService {
		var methods []string
		for _, method := range service.SendMethods.SendMethod {
			if d.methodFiltered(service.ServiceType, method.Value) {
				continue
			}
			methods = append(methods, method.Value)
		}
		available[service.ServiceType] = methods
	}
	return available, nil
}

// UpdateMessagingSettings applies the selected transport of each service,
// removing the service when the selection maps to the backend default.
func (d *Driver) UpdateMessagingSettings(patron *ils.Patron, settings map[string]ils.MessageService) (*ils.Result, error) {
	result := &ils.Result{Success: true, Status: "request_change_done"}
	for serviceType, service := range settings {
		if service.Transport == "" {
			continue
		}
		coded := mapStatusToCode(service.Transport)
		var status *ils.Result
		var err error
		if coded == "ilsDefined" {
			status, err = d.removeMessageService(patron, serviceType)
		} else {
			status, err = d.changeMessageService(patron, serviceType, coded, service.NumOfDays)
		}
		if err != nil {
			return nil, err
		}
		if !status.Success {
			result = status
		}
	}
	d.invalidatePatron(patron.Username)
	return result, nil
}

func (d *Driver) changeMessageService(patron *ils.Patron, serviceType, sendMethod string, nofDays int) (*ils.Result, error) {
	const op = "changeMessageService"
	param := changeMessageServiceParam{
		ArenaMember: d.cfg.ArenaMember,
		Language:    d.language(),
		User:        patron.Username,
		Password:    patron.Password,
		SendMethod:  valueElem{Value: sendMethod},
		ServiceType: serviceType,
	}
	if serviceType == "dueDateAlert" {
		param.NofDays = &intValueElem{Value: nofDays}
	}
	var res changeMessageServiceResponse
	st, err := d.call(d.patronAurora, op, changeMessageServiceRequest{Param: param}, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		msg, err := d.handleError(op, st, patron.Username)
		if err != nil {
			return nil, err
		}
		return &ils.Result{Success: false, Status: msg}, nil
	}
	return &ils.Result{Success: true}, nil
}

func (d *Driver) removeMessageService(patron *ils.Patron, serviceType string) (*ils.Result, error) {
	const op = "removeMessageService"
	req := removeMessageServiceRequest{Param: removeMessageServiceParam{
		ArenaMember: d.cfg.ArenaMember,
		Language:    d.language(),
		User:        patron.Username,
		Password:    patron.Password,
		ServiceType: serviceType,
	}}
	var res removeMessageServiceResponse
	st, err := d.call(d.patronAurora, op, req, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		msg, err := d.handleError(op, st, patron.Username)
		if err != nil {
			return nil, err
		}
		return &ils.Result{Success: false, Status: msg}, nil
	}
	return &ils.Result{Success: true}, nil
}

// UpdateEmail changes the active email address, adding one when the patron
// has none on file.
func (d *Driver) UpdateEmail(patron *ils.Patron, email string) (*ils.Result, error) {
	profile, err := d.GetMyProfile(patron)
	if err != nil {
		return nil, err
	}
	// The backend converts a bare plus sign to a space.
	if d.cfg.EncodeEmailPlusSign == nil || *d.cfg.EncodeEmailPlusSign {
		email = strings.ReplaceAll(email, "+", "%2B")
	}
	param := emailParams{
		ArenaMember: d.cfg.ArenaMember,
		Language:    "en",
		User:        patron.Username,
		Password:    patron.Password,
		Address:     email,
		IsActive:    "yes",
	}
	var st *awsStatus
	op := "addEmail"
	if profile.EmailID != "" {
		op = "changeEmail"
		param.ID = profile.EmailID
		var res changeEmailResponse
		st, err = d.call(d.patron, op, changeEmailRequest{Param: param}, &res, patron.Username)
	} else {
		var res addEmailResponse
		st, err = d.call(d.patron, op, addEmailRequest{Param: param}, &res, patron.Username)
	}
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, patron.Username); err != nil {
			return nil, err
		}
		return &ils.Result{
			Success:    false,
			Status:     "Changing the email address failed",
			SysMessage: statusDetail(st),
		}, nil
	}
	d.invalidatePatron(patron.Username)
	return &ils.Result{Success: true, Status: "Email address changed"}, nil
}

// UpdatePhone changes the SMS phone number, adding one when the patron has
// none on file.
func (d *Driver) UpdatePhone(patron *ils.Patron, phone string) (*ils.Result, error) {
	profile, err := d.GetMyProfile(patron)
	if err != nil {
		return nil, err
	}
	param := phoneParams{
		ArenaMember: d.cfg.ArenaMember,
		Language:    "en",
		User:        patron.Username,
		Password:    patron.Password,
		Country:     "FI",
		LocalCode:   phone,
		UseForSms:   "yes",
	}
	var st *awsStatus
	op := "addPhone"
	if profile.PhoneID != "" {
		op = "changePhone"
		param.ID = profile.PhoneID
		var res changePhoneResponse
		st, err = d.call(d.patron, op, changePhoneRequest{Param: param}, &res, patron.Username)
	} else {
		var res addPhoneResponse
		st, err = d.call(d.patron, op, addPhoneRequest{Param: param}, &res, patron.Username)
	}
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, patron.Username); err != nil {
			return nil, err
		}
		return &ils.Result{
			Success:    false,
			Status:     "Changing the phone number failed",
			SysMessage: statusDetail(st),
		}, nil
	}
	d.invalidatePatron(patron.Username)
	return &ils.Result{Success: true, Status: "Phone number changed"}, nil
}

// UpdateAddress changes the active street address. Requires the aurora
// patron service.
func (d *Driver) UpdateAddress(patron *ils.Patron, addr ils.AddressUpdate) (*ils.Result, error) {
	if d.patronAurora == nil {
		return nil, &ils.ConfigError{Field: "patronAuroraURL", Reason: "required for address updates"}
	}
	profile, err := d.GetMyProfile(patron)
	if err != nil {
		return nil, err
	}
	const op = "changeAddress"
	req := changeAddressRequest{Param: changeAddressParam{
		ArenaMember:   d.cfg.ArenaMember,
		Language:      d.language(),
		User:          patron.Username,
		Password:      patron.Password,
		PatronID:      patron.ID,
		IsActive:      "yes",
		ID:            profile.AddressID,
		StreetAddress: addr.Address1,
		ZipCode:       addr.Zip,
		City:          addr.City,
	}}
	var res changeAddressResponse
	st, err := d.call(d.patronAurora, op, req, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, patron.Username); err != nil {
			return nil, err
		}
		return &ils.Result{Success: false, Status: statusDetail(st)}, nil
	}
	d.invalidatePatron(patron.Username)
	status := "request_change_done"
	if d.cfg.UpdateAddressNeedsApproval != nil && !*d.cfg.UpdateAddressNeedsApproval {
		status = "request_change_accepted"
	}
	return &ils.Result{Success: true, Status: status}, nil
}

// ChangePassword changes the card PIN.
func (d *Driver) ChangePassword(patron *ils.Patron, oldPassword, newPassword string) (*ils.Result, error) {
	const op = "changeCardPin"
	req := changeCardPinRequest{Param: changeCardPinParam{
		ArenaMember: d.cfg.ArenaMember,
		CardNumber:  patron.Username,
		CardPin:     oldPassword,
		NewCardPin:  newPassword,
	}}
	var res changeCardPinResponse
	st, err := d.call(d.patron, op, req, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, patron.Username); err != nil {
			return nil, err
		}
		return &ils.Result{Success: false, Status: statusDetail(st)}, nil
	}
	d.invalidatePatron(patron.Username)
	return &ils.Result{Success: true, Status: "change_password_ok"}, nil
}

// UpdateTransactionHistoryState enables or disables loan history retention.
func (d *Driver) UpdateTransactionHistoryState(patron *ils.Patron, enabled bool) (*ils.Result, error) {
	if d.patronAurora == nil {
		return nil, &ils.ConfigError{Field: "patronAuroraURL", Reason: "required for loan history state"}
	}
	const op = "changeLoanHistoryStatus"
	req := changeLoanHistoryStatusRequest{Param: changeLoanHistoryStatusParam{
		ArenaMember:          d.cfg.ArenaMember,
		PatronID:             patron.PatronID,
		IsLoanHistoryEnabled: enabled,
	}}
	var res changeLoanHistoryStatusResponse
	st, err := d.call(d.patronAurora, op, req, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, patron.Username); err != nil {
			return nil, err
		}
		return &ils.Result{Success: false, Status: "Changing the checkout history state failed"}, nil
	}
	d.invalidatePatron(patron.Username)
	return &ils.Result{Success: true, Status: "request_change_done"}, nil
}

func statusDetail(st *awsStatus) string {
	if st.Message != "" {
		return st.Message
	}
	return st.Type
}
