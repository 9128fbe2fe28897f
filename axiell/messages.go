package axiell

import "encoding/xml"

// Request and response shapes for the Arena web services. Requests carry
// their operation element name and namespace; responses are matched by the
// result child element, so the wrapper name does not matter.

// awsStatus is present in every result. A type other than "ok" carries the
// failure in message, or in type itself when message is empty.
type awsStatus struct {
	Type    string `xml:"type"`
	Message string `xml:"message"`
}

type awsResponse interface {
	status() *awsStatus
}

// catalogue service

type getHoldingsRequest struct {
	XMLName xml.Name          `xml:"http://arena.axiell.com/catalogue GetHoldings"`
	Request getHoldingsParams `xml:"GetHoldingsRequest"`
}

type getHoldingsParams struct {
	ArenaMember string `xml:"arenaMember"`
	ID          string `xml:"id"`
	Language    string `xml:"language"`
}

type getHoldingsResponse struct {
	Result getHoldingResult `xml:"GetHoldingResult"`
}

func (r *getHoldingsResponse) status() *awsStatus { return &r.Result.Status }

type getHoldingResult struct {
	Status          awsStatus       `xml:"status"`
	CatalogueRecord *holdingsRecord `xml:"catalogueRecord"`
}

type holdingsRecord struct {
	CompositeHoldings []compositeHolding `xml:"compositeHolding"`
}

// compositeHolding nests per level: year > edition > organisation > branch.
type compositeHolding struct {
	Type                    string             `xml:"type"`
	Value                   string             `xml:"value"`
	ID                      string             `xml:"id"`
	Status                  string             `xml:"status"`
	Reservable              string             `xml:"reservable"`
	ReservationButtonStatus string             `xml:"reservationButtonStatus"`
	NofReservations         int                `xml:"nofReservations"`
	CompositeHoldings       []compositeHolding `xml:"compositeHolding"`
	Holdings                struct {
		Holding []departmentHolding `xml:"holding"`
	} `xml:"holdings"`
}

type departmentHolding struct {
	Department          string `xml:"department"`
	Location            string `xml:"location"`
	ShelfMark           string `xml:"shelfMark"`
	FirstLoanDueDate    string `xml:"firstLoanDueDate"`
	NofAvailableForLoan int    `xml:"nofAvailableForLoan"`
	NofTotal            *int   `xml:"nofTotal"`
	NofOrdered          int    `xml:"nofOrdered"`
	NofReference        int    `xml:"nofReference"`
	Status              string `xml:"status"`
}

// patron service

type patronInformationRequest struct {
	XMLName xml.Name         `xml:"http://arena.axiell.com/patron getPatronInformation"`
	Param   patronAuthParams `xml:"patronInformationParam"`
}

type patronAuthParams struct {
	ArenaMember string `xml:"arenaMember"`
	User        string `xml:"user"`
	Password    string `xml:"password"`
	Language    string `xml:"language,omitempty"`
}

type patronInformationResponse struct {
	Result patronInformationResult `xml:"patronInformationResult"`
}

func (r *patronInformationResponse) status() *awsStatus { return &r.Result.Status }

type patronInformationResult struct {
	Status            awsStatus          `xml:"status"`
	PatronInformation *patronInformation `xml:"patronInformation"`
}

type patronInformation struct {
	PatronName           string `xml:"patronName"`
	BackendPatronID      string `xml:"backendPatronId"`
	IsLoanHistoryEnabled string `xml:"isLoanHistoryEnabled"`
	EmailAddresses       struct {
		EmailAddress []emailAddress `xml:"emailAddress"`
	} `xml:"emailAddresses"`
	Addresses struct {
		Address []patronAddress `xml:"address"`
	} `xml:"addresses"`
	PhoneNumbers struct {
		PhoneNumber []phoneNumber `xml:"phoneNumber"`
	} `xml:"phoneNumbers"`
	MessageServices struct {
		MessageService []messageService `xml:"messageService"`
	} `xml:"messageServices"`
}

type emailAddress struct {
	ID       string `xml:"id"`
	Address  string `xml:"address"`
	IsActive string `xml:"isActive"`
}

type patronAddress struct {
	ID            string `xml:"id"`
	StreetAddress string `xml:"streetAddress"`
	ZipCode       string `xml:"zipCode"`
	City          string `xml:"city"`
	Country       string `xml:"country"`
	IsActive      string `xml:"isActive"`
}

type phoneNumber struct {
	ID        string `xml:"id"`
	AreaCode  string `xml:"areaCode"`
	LocalCode string `xml:"localCode"`
	Sms       struct {
		UseForSms string `xml:"useForSms"`
	} `xml:"sms"`
}

type messageService struct {
	ServiceType string `xml:"serviceType"`
	IsActive    string `xml:"isActive"`
	NofDays     struct {
		Value int `xml:"value"`
	} `xml:"nofDays"`
	SendMethods struct {
		SendMethod []sendMethod `xml:"sendMethod"`
	} `xml:"sendMethods"`
}

type sendMethod struct {
	Value    string `xml:"value"`
	IsActive string `xml:"isActive"`
}

type authenticatePatronRequest struct {
	XMLName xml.Name         `xml:"http://arena.axiell.com/patron authenticatePatron"`
	Param   patronAuthParams `xml:"authenticatePatronParam"`
}

type authenticatePatronResponse struct {
	Result authenticatePatronResult `xml:"authenticatePatronResult"`
}

func (r *authenticatePatronResponse) status() *awsStatus { return &r.Result.Status }

type authenticatePatronResult struct {
	Status   awsStatus `xml:"status"`
	PatronID string    `xml:"patronId"`
}

type emailParams struct {
	ArenaMember string `xml:"arenaMember"`
	Language    string `xml:"language"`
	User        string `xml:"user"`
	Password    string `xml:"password"`
	ID          string `xml:"id,omitempty"`
	Address     string `xml:"address"`
	IsActive    string `xml:"isActive"`
}

type addEmailRequest struct {
	XMLName xml.Name    `xml:"http://arena.axiell.com/patron addEmail"`
	Param   emailParams `xml:"addEmailAddressParam"`
}

type addEmailResponse struct {
	Result statusOnlyResult `xml:"addEmailAddressResult"`
}

func (r *addEmailResponse) status() *awsStatus { return &r.Result.Status }

type changeEmailRequest struct {
	XMLName xml.Name    `xml:"http://arena.axiell.com/patron changeEmail"`
	Param   emailParams `xml:"changeEmailAddressParam"`
}

type changeEmailResponse struct {
	Result statusOnlyResult `xml:"changeEmailAddressResult"`
}

func (r *changeEmailResponse) status() *awsStatus { return &r.Result.Status }

type phoneParams struct {
	ArenaMember string `xml:"arenaMember"`
	Language    string `xml:"language"`
	User        string `xml:"user"`
	Password    string `xml:"password"`
	ID          string `xml:"id,omitempty"`
	AreaCode    string `xml:"areaCode"`
	Country     string `xml:"country"`
	LocalCode   string `xml:"localCode"`
	UseForSms   string `xml:"useForSms"`
}

type addPhoneRequest struct {
	XMLName xml.Name    `xml:"http://arena.axiell.com/patron addPhone"`
	Param   phoneParams `xml:"addPhoneNumberParam"`
}

type addPhoneResponse struct {
	Result statusOnlyResult `xml:"addPhoneNumberResult"`
}

func (r *addPhoneResponse) status() *awsStatus { return &r.Result.Status }

type changePhoneRequest struct {
	XMLName xml.Name    `xml:"http://arena.axiell.com/patron changePhone"`
	Param   phoneParams `xml:"changePhoneNumberParam"`
}

type changePhoneResponse struct {
	Result statusOnlyResult `xml:"changePhoneNumberResult"`
}

func (r *changePhoneResponse) status() *awsStatus { return &r.Result.Status }

type changeCardPinRequest struct {
	XMLName xml.Name           `xml:"http://arena.axiell.com/patron changeCardPin"`
	Param   changeCardPinParam `xml:"changeCardPinParam"`
}

type changeCardPinParam struct {
	ArenaMember string `xml:"arenaMember"`
	CardNumber  string `xml:"cardNumber"`
	CardPin     string `xml:"cardPin"`
	NewCardPin  string `xml:"newCardPin"`
}

type changeCardPinResponse struct {
	Result statusOnlyResult `xml:"changeCardPinResult"`
}

func (r *changeCardPinResponse) status() *awsStatus { return &r.Result.Status }

type statusOnlyResult struct {
	Status awsStatus `xml:"status"`
}

// patron aurora service

type messageServicesRequest struct {
	XMLName xml.Name         `xml:"http://arena.axiell.com/patron getMessageServices"`
	Param   patronAuthParams `xml:"messageServicesRequest"`
}

type messageServicesResponse struct {
	Result messageServicesResult `xml:"messageServicesResponse"`
}

func (r *messageServicesResponse) status() *awsStatus { return &r.Result.Status }

type messageServicesResult struct {
	Status          awsStatus `xml:"status"`
	MessageServices struct {
		MessageService []messageService `xml:"messageService"`
	} `xml:"messageServices"`
}

type changeMessageServiceRequest struct {
	XMLName xml.Name                  `xml:"http://arena.axiell.com/patron changeMessageService"`
	Param   changeMessageServiceParam `xml:"changeMessageServiceRequest"`
}

type changeMessageServiceParam struct {
	ArenaMember string        `xml:"arenaMember"`
	Language    string        `xml:"language"`
	User        string        `xml:"user"`
	Password    string        `xml:"password"`
	SendMethod  valueElem     `xml:"sendMethod"`
	NofDays     *intValueElem `xml:"nofDays,omitempty"`
	ServiceType string        `xml:"serviceType"`
}

type valueElem struct {
	Value string `xml:"value"`
}

type intValueElem struct {
	Value int `xml:"value"`
}

type changeMessageServiceResponse struct {
	Result statusOnlyResult `xml:"changeMessageServiceResponse"`
}

func (r *changeMessageServiceResponse) status() *awsStatus { return &r.Result.Status }

type removeMessageServiceRequest struct {
	XMLName xml.Name                  `xml:"http://arena.axiell.com/patron removeMessageService"`
	Param   removeMessageServiceParam `xml:"removeMessageServiceRequest"`
}

type removeMessageServiceParam struct {
	ArenaMember string `xml:"arenaMember"`
	Language    string `xml:"language"`
	User        string `xml:"user"`
	Password    string `xml:"password"`
	ServiceType string `xml:"serviceType"`
}

type removeMessageServiceResponse struct {
	Result statusOnlyResult `xml:"removeMessageServiceResponse"`
}

func (r *removeMessageServiceResponse) status() *awsStatus { return &r.Result.Status }

type changeAddressRequest struct {
	XMLName xml.Name           `xml:"http://arena.axiell.com/patron changeAddress"`
	Param   changeAddressParam `xml:"changeAddressRequest"`
}

type changeAddressParam struct {
	ArenaMember   string `xml:"arenaMember"`
	Language      string `xml:"language"`
	User          string `xml:"user"`
	Password      string `xml:"password"`
	PatronID      string `xml:"patronId"`
	IsActive      string `xml:"isActive"`
	ID            string `xml:"id"`
	StreetAddress string `xml:"streetAddress"`
	ZipCode       string `xml:"zipCode"`
	City          string `xml:"city"`
}

type changeAddressResponse struct {
	Result statusOnlyResult `xml:"changeAddressResponse"`
}

func (r *changeAddressResponse) status() *awsStatus { return &r.Result.Status }

type changeLoanHistoryStatusRequest struct {
	XMLName xml.Name                     `xml:"http://arena.axiell.com/patron changeLoanHistoryStatus"`
	Param   changeLoanHistoryStatusParam `xml:"changeLoanHistoryStatusParam"`
}

type changeLoanHistoryStatusParam struct {
	ArenaMember          string `xml:"arenaMember"`
	PatronID             string `xml:"patronId"`
	IsLoanHistoryEnabled bool   `xml:"isLoanHistoryEnabled"`
}

type changeLoanHistoryStatusResponse struct {
	Result statusOnlyResult `xml:"changeLoanHistoryStatusResult"`
}

func (r *changeLoanHistoryStatusResponse) status() *awsStatus { return &r.Result.Status }

// loans service

type getLoansRequest struct {
	XMLName xml.Name         `xml:"http://arena.axiell.com/loans GetLoans"`
	Param   patronAuthParams `xml:"loansRequest"`
}

type getLoansResponse struct {
	Result loansResult `xml:"loansResponse"`
}

func (r *getLoansResponse) status() *awsStatus { return &r.Result.Status }

type loansResult struct {
	Status awsStatus `xml:"status"`
	Loans  struct {
		Loan []loan `xml:"loan"`
	} `xml:"loans"`
}

type loan struct {
	ID                string `xml:"id"`
	LoanDueDate       string `xml:"loanDueDate"`
	Note              string `xml:"note"`
	RemainingRenewals int    `xml:"remainingRenewals"`
	LoanStatus        struct {
		Status      string `xml:"status"`
		IsRenewable string `xml:"isRenewable"`
	} `xml:"loanStatus"`
	CatalogueRecord catalogueRecord `xml:"catalogueRecord"`
}

type catalogueRecord struct {
	ID              string `xml:"id"`
	Title           string `xml:"title"`
	PublicationYear string `xml:"publicationYear"`
	Volume          string `xml:"volume"`
}

type renewLoansRequest struct {
	XMLName xml.Name        `xml:"http://arena.axiell.com/loans RenewLoans"`
	Param   renewLoansParam `xml:"renewLoansRequest"`
}

type renewLoansParam struct {
	ArenaMember string   `xml:"arenaMember"`
	User        string   `xml:"user"`
	Password    string   `xml:"password"`
	Language    string   `xml:"language"`
	Loans       []string `xml:"loans"`
}

type renewLoansResponse struct {
	Result loansResult `xml:"renewLoansResponse"`
}

func (r *renewLoansResponse) status() *awsStatus { return &r.Result.Status }

// loans aurora service

type loanHistoryRequest struct {
	XMLName xml.Name         `xml:"http://arena.axiell.com/loans GetLoanHistory"`
	Param   loanHistoryParam `xml:"loanHistoryRequest"`
}

type loanHistoryParam struct {
	ArenaMember   string `xml:"arenaMember"`
	Language      string `xml:"language"`
	PatronID      string `xml:"patronId"`
	Start         int    `xml:"start"`
	Count         int    `xml:"count"`
	SortField     string `xml:"sortField"`
	SortDirection string `xml:"sortDirection"`
}

type loanHistoryResponse struct {
	Result loanHistoryResult `xml:"loanHistoryResponse"`
}

func (r *loanHistoryResponse) status() *awsStatus { return &r.Result.Status }

type loanHistoryResult struct {
	Status           awsStatus `xml:"status"`
	LoanHistoryItems struct {
		TotalCount      int               `xml:"totalCount"`
		LoanHistoryItem []loanHistoryItem `xml:"loanHistoryItem"`
	} `xml:"loanHistoryItems"`
}

type loanHistoryItem struct {
	CheckOutDate    string          `xml:"checkOutDate"`
	CheckInDate     string          `xml:"checkInDate"`
	Note            string          `xml:"note"`
	CatalogueRecord catalogueRecord `xml:"catalogueRecord"`
}

// payments service

type getDebtsRequest struct {
	XMLName xml.Name      `xml:"http://arena.axiell.com/payments GetDebts"`
	Param   getDebtsParam `xml:"debtsRequest"`
}

type getDebtsParam struct {
	ArenaMember string `xml:"arenaMember"`
	User        string `xml:"user"`
	Password    string `xml:"password"`
	Language    string `xml:"language"`
	FromDate    string `xml:"fromDate"`
	ToDate      int64  `xml:"toDate"`
}

type getDebtsResponse struct {
	Result debtsResult `xml:"debtsResponse"`
}

func (r *getDebtsResponse) status() *awsStatus { return &r.Result.Status }

type debtsResult struct {
	Status awsStatus `xml:"status"`
	Debts  struct {
		Debt []debt `xml:"debt"`
	} `xml:"debts"`
}

type debt struct {
	ID                  string `xml:"id"`
	DebtType            string `xml:"debtType"`
	DebtNote            string `xml:"debtNote"`
	DebtDate            string `xml:"debtDate"`
	DebtAmountFormatted string `xml:"debtAmountFormatted"`
	Organisation        string `xml:"organisation"`
}

type addPaymentRequest struct {
	XMLName xml.Name        `xml:"http://arena.axiell.com/payments AddPayment"`
	Param   addPaymentParam `xml:"addPaymentRequest"`
}

type addPaymentParam struct {
	ArenaMember       string `xml:"arenaMember"`
	OrderID           string `xml:"orderId"`
	TransactionNumber string `xml:"transactionNumber"`
	PaymentAmount     int64  `xml:"paymentAmount"`
	Debts             struct {
		ID string `xml:"id"`
	} `xml:"debts"`
}

type addPaymentResponse struct {
	Result statusOnlyResult `xml:"addPaymentResponse"`
}

func (r *addPaymentResponse) status() *awsStatus { return &r.Result.Status }

// reservations service

type getReservationsRequest struct {
	XMLName xml.Name         `xml:"http://arena.axiell.com/reservations getReservations"`
	Param   patronAuthParams `xml:"getReservationsParam"`
}

type getReservationsResponse struct {
	Result getReservationsResult `xml:"getReservationsResult"`
}

func (r *getReservationsResponse) status() *awsStatus { return &r.Result.Status }

type getReservationsResult struct {
	Status       awsStatus `xml:"status"`
	Reservations struct {
		Reservation []reservation `xml:"reservation"`
	} `xml:"reservations"`
}

type reservation struct {
	ID                string          `xml:"id"`
	ValidFromDate     string          `xml:"validFromDate"`
	ValidToDate       string          `xml:"validToDate"`
	PickUpBranchID    string          `xml:"pickUpBranchId"`
	PickUpExpireDate  string          `xml:"pickUpExpireDate"`
	PickUpNo          string          `xml:"pickUpNo"`
	QueueNo           string          `xml:"queueNo"`
	Note              string          `xml:"note"`
	IsEditable        string          `xml:"isEditable"`
	IsDeletable       string          `xml:"isDeletable"`
	ReservationStatus string          `xml:"reservationStatus"`
	ReservationType   string          `xml:"reservationType"`
	OrganisationID    string          `xml:"organisationId"`
	CreateDate        string          `xml:"createDate"`
	CatalogueRecord   catalogueRecord `xml:"catalogueRecord"`
}

type addReservationRequest struct {
	XMLName xml.Name            `xml:"http://arena.axiell.com/reservations addReservation"`
	Param   addReservationParam `xml:"addReservationParam"`
}

type addReservationParam struct {
	ArenaMember         string `xml:"arenaMember"`
	User                string `xml:"user"`
	Password            string `xml:"password"`
	Language            string `xml:"language"`
	ReservationEntities string `xml:"reservationEntities"`
	ReservationSource   string `xml:"reservationSource"`
	ReservationType     string `xml:"reservationType"`
	OrganisationID      string `xml:"organisationId"`
	PickUpBranchID      string `xml:"pickUpBranchId"`
	ValidFromDate       string `xml:"validFromDate"`
	ValidToDate         string `xml:"validToDate"`
}

type addReservationResponse struct {
	Result statusOnlyResult `xml:"addReservationResult"`
}

func (r *addReservationResponse) status() *awsStatus { return &r.Result.Status }

type removeReservationRequest struct {
	XMLName xml.Name               `xml:"http://arena.axiell.com/reservations removeReservation"`
	Param   removeReservationParam `xml:"removeReservationsParam"`
}

type removeReservationParam struct {
	ArenaMember string `xml:"arenaMember"`
	User        string `xml:"user"`
	Password    string `xml:"password"`
	Language    string `xml:"language"`
	ID          string `xml:"id"`
}

type removeReservationResponse struct {
	Result statusOnlyResult `xml:"removeReservationResult"`
}

func (r *removeReservationResponse) status() *awsStatus { return &r.Result.Status }

type changeReservationRequest struct {
	XMLName xml.Name               `xml:"http://arena.axiell.com/reservations changeReservation"`
	Param   changeReservationParam `xml:"changeReservationsParam"`
}

type changeReservationParam struct {
	ArenaMember    string `xml:"arenaMember"`
	User           string `xml:"user"`
	Password       string `xml:"password"`
	Language       string `xml:"language"`
	ID             string `xml:"id"`
	PickUpBranchID string `xml:"pickUpBranchId"`
	ValidFromDate  string `xml:"validFromDate"`
	ValidToDate    string `xml:"validToDate"`
}

type changeReservationResponse struct {
	Result statusOnlyResult `xml:"changeReservationResult"`
}

func (r *changeReservationResponse) status() *awsStatus { return &r.Result.Status }

type reservationBranchesRequest struct {
	XMLName xml.Name                 `xml:"http://arena.axiell.com/reservations getReservationBranches"`
	Param   reservationBranchesParam `xml:"getReservationBranchesParam"`
}

type reservationBranchesParam struct {
	ArenaMember         string `xml:"arenaMember"`
	User                string `xml:"user"`
	Password            string `xml:"password"`
	Language            string `xml:"language"`
	Country             string `xml:"country"`
	ReservationEntities string `xml:"reservationEntities"`
	ReservationType     string `xml:"reservationType"`
}

type reservationBranchesResponse struct {
	Result reservationBranchesResult `xml:"getReservationBranchesResult"`
}

func (r *reservationBranchesResponse) status() *awsStatus { return &r.Result.Status }

type reservationBranchesResult struct {
	Status        awsStatus `xml:"status"`
	Organisations struct {
		Organisation []reservationOrganisation `xml:"organisation"`
	} `xml:"organisations"`
}

type reservationOrganisation struct {
	ID       string `xml:"id"`
	Name     string `xml:"name"`
	Branches struct {
		Branch []reservationBranch `xml:"branch"`
	} `xml:"branches"`
}

type reservationBranch struct {
	ID   string `xml:"id"`
	Name string `xml:"name"`
}
