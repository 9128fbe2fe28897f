package axiell

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/indexdata/ilsdriver/cache"
	"github.com/indexdata/ilsdriver/dateutil"
	"github.com/indexdata/ilsdriver/ils"
)

// soapServer serves canned result elements keyed by operation, wrapping each
// in the operation's response element the way the live service does, and
// recording the request bodies for assertions. Responses queue up per
// operation; the last one repeats when the queue runs out.
type soapServer struct {
	*httptest.Server
	responses map[string][]string
	requests  map[string][]string
}

func newSoapServer(t *testing.T) *soapServer {
	s := &soapServer{
		responses: map[string][]string{},
		requests:  map[string][]string{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op := strings.Trim(r.Header.Get("SOAPAction"), `"`)
		buf, err := io.ReadAll(r.Body)
		assert.Nil(t, err)
		s.requests[op] = append(s.requests[op], string(buf))
		queue := s.responses[op]
		if len(queue) == 0 {
			t.Errorf("unexpected operation %v", op)
			http.Error(w, "unexpected operation", http.StatusInternalServerError)
			return
		}
		result := queue[0]
		if len(queue) > 1 {
			s.responses[op] = queue[1:]
		}
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, err = w.Write([]byte(`<?xml version="1.0" ?>` +
			`<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/"><S:Body>` +
			`<ns2:` + op + `Response xmlns:ns2="http://arena.axiell.com/aws">` +
			result + `</ns2:` + op + `Response>` +
			`</S:Body></S:Envelope>`))
		assert.Nil(t, err)
	}))
	return s
}

func (s *soapServer) respond(op, result string) {
	s.responses[op] = append(s.responses[op], result)
}

func (s *soapServer) lastRequest(op string) string {
	if len(s.requests[op]) == 0 {
		return ""
	}
	return s.requests[op][len(s.requests[op])-1]
}

func testDriver(t *testing.T, url string, mutate func(*Config)) *Driver {
	cfg := Config{
		ArenaMember:     "test_member",
		CatalogueURL:    url,
		PatronURL:       url,
		LoansURL:        url,
		PaymentsURL:     url,
		ReservationsURL: url,
		Language:        "en",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	d, err := New(cfg, nil, nil, nil)
	assert.Nil(t, err)
	return d
}

func testPatron() *ils.Patron {
	return &ils.Patron{
		ID:       "12345",
		Username: "cardnumber",
		Password: "pin",
		PatronID: "s-99",
	}
}

const okStatus = "<status><type>ok</type></status>"

func TestNewMissingConfig(t *testing.T) {
	_, err := New(Config{ArenaMember: "m"}, nil, nil, nil)
	assert.NotNil(t, err)
	cfgErr, ok := err.(*ils.ConfigError)
	assert.True(t, ok)
	assert.Equal(t, "catalogueURL", cfgErr.Field)
}

func TestPatronLogin(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("getPatronInformation", `<patronInformationResult>`+okStatus+`
		<patronInformation>
			<patronName>Maija Liisa Virtanen</patronName>
			<backendPatronId>12345</backendPatronId>
			<isLoanHistoryEnabled>yes</isLoanHistoryEnabled>
			<emailAddresses>
				<emailAddress><id>e1</id><address>maija@example.com</address><isActive>yes</isActive></emailAddress>
				<emailAddress><id>e2</id><address>old@example.com</address><isActive>no</isActive></emailAddress>
			</emailAddresses>
			<addresses>
				<address><id>a1</id><streetAddress>Katu 1</streetAddress><zipCode>00100</zipCode><city>Helsinki</city><country>FI</country><isActive>yes</isActive></address>
			</addresses>
			<phoneNumbers>
				<phoneNumber><id>p1</id><areaCode>+358</areaCode><localCode>401234567</localCode><sms><useForSms>yes</useForSms></sms></phoneNumber>
			</phoneNumbers>
			<messageServices>
				<messageService>
					<serviceType>pickUpNotice</serviceType><isActive>yes</isActive>
					<nofDays><value>0</value></nofDays>
					<sendMethods>
						<sendMethod><value>email</value><isActive>yes</isActive></sendMethod>
					</sendMethods>
				</messageService>
			</messageServices>
		</patronInformation>
	</patronInformationResult>`)
	server.respond("authenticatePatron", `<authenticatePatronResult>`+okStatus+
		`<patronId>s-99</patronId></authenticatePatronResult>`)

	d := testDriver(t, server.URL, func(cfg *Config) {
		cfg.MessagingMethod = "database"
	})
	patron, err := d.PatronLogin("cardnumber", "pin")
	assert.Nil(t, err)
	assert.NotNil(t, patron)
	assert.Equal(t, "12345", patron.ID)
	assert.Equal(t, "Maija Liisa", patron.Firstname)
	assert.Equal(t, "Virtanen", patron.Lastname)
	assert.Equal(t, "s-99", patron.PatronID)

	// The profile comes from the cache, not from another backend call.
	profile, err := d.GetMyProfile(patron)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(server.requests["getPatronInformation"]))
	assert.Equal(t, "maija@example.com", profile.Email)
	assert.Equal(t, "e1", profile.EmailID)
	assert.Equal(t, "Katu 1", profile.Address1)
	assert.Equal(t, "00100", profile.Zip)
	assert.Equal(t, "+358401234567", profile.Phone)
	assert.True(t, profile.LoanHistory)

	pickUp := profile.Messaging["pickUpNotice"]
	assert.True(t, pickUp.Active)
	assert.True(t, pickUp.SendMethods["email"].Active)
	assert.False(t, pickUp.SendMethods["letter"].Active)
	assert.Contains(t, pickUp.SendMethods, "sms")
	// dueDateAlert only offers email and none.
	assert.NotContains(t, profile.Messaging["dueDateAlert"].SendMethods, "letter")
}

func TestPatronLoginBadCredentials(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("getPatronInformation", `<patronInformationResult>
		<status><type>patronDoesNotExist</type></status>
	</patronInformationResult>`)

	d := testDriver(t, server.URL, nil)
	patron, err := d.PatronLogin("nobody", "wrong")
	assert.Nil(t, err)
	assert.Nil(t, patron)
}

func TestPatronLoginOffline(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("getPatronInformation", `<patronInformationResult>
		<status><type>error</type><message>BackendError</message></status>
	</patronInformationResult>`)

	d := testDriver(t, server.URL, nil)
	_, err := d.PatronLogin("cardnumber", "pin")
	assert.NotNil(t, err)
	offline, ok := err.(*ils.OfflineError)
	assert.True(t, ok)
	assert.Contains(t, offline.Error(), "BackendError")
}

func TestPatronLoginMissingStatus(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("getPatronInformation", `<patronInformationResult></patronInformationResult>`)

	d := testDriver(t, server.URL, nil)
	_, err := d.PatronLogin("cardnumber", "pin")
	assert.NotNil(t, err)
	_, ok := err.(*ils.OfflineError)
	assert.True(t, ok)
}

func TestGetHolding(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("GetHoldings", `<GetHoldingResult>`+okStatus+`
		<catalogueRecord>
			<compositeHolding>
				<type>organisation</type><value>Helmet</value><id>1</id>
				<compositeHolding>
					<type>branch</type><value>Pasila</value><id>11</id>
					<reservable>item-11</reservable>
					<reservationButtonStatus>reservationOk</reservationButtonStatus>
					<nofReservations>2</nofReservations>
					<holdings>
						<holding>
							<department>Adults</department><location>Floor 2</location>
							<shelfMark>84.2</shelfMark>
							<nofAvailableForLoan>1</nofAvailableForLoan>
							<nofTotal>3</nofTotal><nofOrdered>1</nofOrdered>
							<status>availableForLoan</status>
						</holding>
					</holdings>
				</compositeHolding>
			</compositeHolding>
			<compositeHolding>
				<type>organisation</type><value>Vaski</value><id>2</id>
				<compositeHolding>
					<type>branch</type><value>Turku</value><id>21</id>
					<reservable>item-21</reservable>
					<reservationButtonStatus>reservationNotOk</reservationButtonStatus>
					<holdings>
						<holding>
							<department>Adults</department>
							<firstLoanDueDate>2026-10-15</firstLoanDueDate>
							<nofTotal>1</nofTotal>
							<status>onLoan</status>
						</holding>
					</holdings>
				</compositeHolding>
			</compositeHolding>
		</catalogueRecord>
	</GetHoldingResult>`)

	d := testDriver(t, server.URL, func(cfg *Config) {
		cfg.Holdings.OrganisationOrder = []string{"2", "1"}
	})
	holdings, err := d.GetHolding("rec-1")
	assert.Nil(t, err)
	assert.Equal(t, 3, len(holdings))

	assert.Equal(t, "Vaski", holdings[0].Location)
	assert.Equal(t, "Turku", holdings[0].Branch)
	assert.Equal(t, "Charged", holdings[0].Status)
	assert.False(t, holdings[0].Availability)
	assert.Equal(t, "2026-10-15", holdings[0].DueDate)
	assert.False(t, holdings[0].Holdable)

	assert.Equal(t, "Helmet", holdings[1].Location)
	assert.Equal(t, "Adults, Floor 2", holdings[1].Department)
	assert.Equal(t, "84.2", holdings[1].CallNumber)
	assert.Equal(t, "item-11", holdings[1].ItemID)
	assert.Equal(t, "Available", holdings[1].Status)
	assert.True(t, holdings[1].Availability)
	assert.True(t, holdings[1].Holdable)
	assert.Equal(t, 2, holdings[1].RequestsPlaced)

	summary := holdings[2]
	assert.True(t, summary.Summary)
	assert.Equal(t, ils.SummaryLocation, summary.Location)
	assert.Equal(t, 1, summary.Available)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Ordered)
	assert.Equal(t, 2, summary.Locations)
	assert.True(t, summary.Holdable)
	assert.Equal(t, 0, summary.Reservations)
}

func TestGetHoldingReferenceDesk(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("GetHoldings", `<GetHoldingResult>`+okStatus+`
		<catalogueRecord>
			<compositeHolding>
				<type>organisation</type><value>Helmet</value><id>1</id>
				<compositeHolding>
					<type>branch</type><value>Pasila</value><id>11</id>
					<holdings>
						<holding>
							<department>Reading room</department>
							<nofReference>1</nofReference><nofTotal>1</nofTotal>
							<status>nonAvailableForLoan</status>
						</holding>
					</holdings>
				</compositeHolding>
			</compositeHolding>
		</catalogueRecord>
	</GetHoldingResult>`)

	d := testDriver(t, server.URL, nil)
	holdings, err := d.GetHolding("rec-1")
	assert.Nil(t, err)
	assert.Equal(t, 2, len(holdings))
	// A reference copy counts as available on the reference desk.
	assert.Equal(t, "On Reference Desk", holdings[0].Status)
	assert.True(t, holdings[0].Availability)
}

func TestGetHoldingJournal(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("GetHoldings", `<GetHoldingResult>`+okStatus+`
		<catalogueRecord>
			<compositeHolding>
				<type>year</type><value>2018</value>
				<compositeHolding>
					<type>edition</type><value>2018:4</value>
					<compositeHolding>
						<type>organisation</type><value>Helmet</value><id>1</id>
						<compositeHolding>
							<type>branch</type><value>Pasila</value><id>11</id>
							<reservationButtonStatus>reservationOk</reservationButtonStatus>
							<holdings>
								<holding>
									<department>Magazines</department><nofTotal>1</nofTotal>
									<status>availableForLoan</status>
								</holding>
							</holdings>
						</compositeHolding>
					</compositeHolding>
				</compositeHolding>
				<compositeHolding>
					<type>edition</type><value>5</value>
					<compositeHolding>
						<type>organisation</type><value>Helmet</value><id>1</id>
						<compositeHolding>
							<type>branch</type><value>Pasila</value><id>11</id>
							<holdings>
								<holding>
									<department>Magazines</department><nofTotal>1</nofTotal>
									<status>onLoan</status>
								</holding>
							</holdings>
						</compositeHolding>
					</compositeHolding>
				</compositeHolding>
			</compositeHolding>
		</catalogueRecord>
	</GetHoldingResult>`)

	d := testDriver(t, server.URL, nil)
	holdings, err := d.GetHolding("rec-1")
	assert.Nil(t, err)
	assert.Equal(t, 3, len(holdings))
	// Editions sort descending, label collapsing the year when the edition
	// already starts with it.
	assert.Equal(t, "2018:4", holdings[0].Location)
	assert.Equal(t, "2018, 5", holdings[1].Location)
	assert.Equal(t, "Helmet", holdings[1].Journal.Location)
	// No title-level holds on journals.
	assert.False(t, holdings[2].Holdable)
}

func TestGetHoldingNoHoldings(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("GetHoldings", `<GetHoldingResult>`+okStatus+`
		<catalogueRecord>
			<compositeHolding><type>organisation</type><status>noHolding</status></compositeHolding>
		</catalogueRecord>
	</GetHoldingResult>`)

	d := testDriver(t, server.URL, nil)
	holdings, err := d.GetHolding("rec-1")
	assert.Nil(t, err)
	assert.Empty(t, holdings)
}

func TestGetHoldingSummaryReportedZeroTotal(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("GetHoldings", `<GetHoldingResult>`+okStatus+`
		<catalogueRecord>
			<compositeHolding>
				<type>organisation</type><value>Helmet</value><id>1</id>
				<compositeHolding>
					<type>branch</type><value>Pasila</value><id>11</id>
					<reservationButtonStatus>reservationOk</reservationButtonStatus>
					<holdings>
						<holding>
							<department>Adults</department>
							<nofTotal>0</nofTotal>
							<status>onLoan</status>
						</holding>
						<holding>
							<department>Magazines</department>
							<status>onLoan</status>
						</holding>
					</holdings>
				</compositeHolding>
			</compositeHolding>
		</catalogueRecord>
	</GetHoldingResult>`)

	d := testDriver(t, server.URL, nil)
	holdings, err := d.GetHolding("rec-1")
	assert.Nil(t, err)
	assert.Equal(t, 3, len(holdings))

	// A reported zero count stays zero in the summary; only a missing count
	// stands in for one copy.
	summary := holdings[2]
	assert.True(t, summary.Summary)
	assert.Equal(t, 1, summary.Total)
}

func TestGetStatuses(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	result := `<GetHoldingResult>` + okStatus + `<catalogueRecord></catalogueRecord></GetHoldingResult>`
	server.respond("GetHoldings", result)
	server.respond("GetHoldings", result)

	d := testDriver(t, server.URL, nil)
	statuses, err := d.GetStatuses([]string{"rec-1", "rec-2"})
	assert.Nil(t, err)
	assert.Equal(t, 2, len(statuses))
	assert.Contains(t, statuses, "rec-1")
	assert.Contains(t, statuses, "rec-2")
}

func TestGetMyTransactions(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1).Format(dateutil.DisplayLayout)
	today := time.Now().Format(dateutil.DisplayLayout)

	server := newSoapServer(t)
	defer server.Close()
	server.respond("GetLoans", `<loansResponse>`+okStatus+`
		<loans>
			<loan>
				<id>l-1</id><loanDueDate>`+today+`</loanDueDate>
				<remainingRenewals>3</remainingRenewals>
				<loanStatus><isRenewable>yes</isRenewable></loanStatus>
				<catalogueRecord><id>rec-1</id><title>Seitsemän veljestä</title></catalogueRecord>
			</loan>
			<loan>
				<id>l-2</id><loanDueDate>`+yesterday+`</loanDueDate>
				<note>course reserve</note>
				<remainingRenewals>0</remainingRenewals>
				<loanStatus><status>maxNofRenewals</status><isRenewable>no</isRenewable></loanStatus>
				<catalogueRecord><id>rec-2</id><title>Kalevala</title></catalogueRecord>
			</loan>
		</loans>
	</loansResponse>`)

	d := testDriver(t, server.URL, nil)
	loans, err := d.GetMyTransactions(testPatron())
	assert.Nil(t, err)
	assert.Equal(t, 2, len(loans))

	// Sorted by due date, oldest first.
	assert.Equal(t, "Kalevala (course reserve)", loans[0].Title)
	assert.Equal(t, yesterday, loans[0].DueDate)
	assert.Equal(t, ils.DueStatusOverdue, loans[0].DueStatus)
	assert.False(t, loans[0].Renewable)
	assert.Equal(t, "renew_item_limit", loans[0].Message)
	assert.False(t, loans[0].HasRenewals)

	assert.Equal(t, "Seitsemän veljestä", loans[1].Title)
	assert.Equal(t, ils.DueStatusDue, loans[1].DueStatus)
	assert.True(t, loans[1].Renewable)
	assert.True(t, loans[1].HasRenewals)
	assert.Equal(t, 3, loans[1].RenewLimit)
}

func TestGetMyTransactionsRenewalLimit(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("GetLoans", `<loansResponse>`+okStatus+`
		<loans>
			<loan>
				<id>l-1</id><loanDueDate>2026-09-20</loanDueDate>
				<remainingRenewals>2</remainingRenewals>
				<loanStatus><isRenewable>yes</isRenewable></loanStatus>
				<catalogueRecord><id>rec-1</id><title>Title</title></catalogueRecord>
			</loan>
		</loans>
	</loansResponse>`)

	d := testDriver(t, server.URL, func(cfg *Config) {
		cfg.Loans.RenewalLimit = 5
	})
	loans, err := d.GetMyTransactions(testPatron())
	assert.Nil(t, err)
	assert.Equal(t, 5, loans[0].RenewalLimit)
	assert.Equal(t, 3, loans[0].RenewalCount)
	assert.True(t, loans[0].HasRenewals)
}

func TestGetMyTransactionHistory(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("GetLoanHistory", `<loanHistoryResponse>`+okStatus+`
		<loanHistoryItems>
			<totalCount>120</totalCount>
			<loanHistoryItem>
				<checkOutDate>2026-01-10</checkOutDate>
				<checkInDate>2026-02-01</checkInDate>
				<catalogueRecord><id>rec-1</id><title>Tuntematon sotilas</title></catalogueRecord>
			</loanHistoryItem>
		</loanHistoryItems>
	</loanHistoryResponse>`)

	d := testDriver(t, server.URL, func(cfg *Config) {
		cfg.LoansAuroraURL = server.URL
	})
	history, err := d.GetMyTransactionHistory(testPatron(), &ils.HistoryParams{Page: 3, PageSize: 10})
	assert.Nil(t, err)
	assert.Equal(t, 120, history.Count)
	assert.Equal(t, 1, len(history.Transactions))
	assert.Equal(t, "2026-01-10", history.Transactions[0].CheckoutDate)
	assert.Equal(t, "2026-02-01", history.Transactions[0].ReturnDate)

	body := server.lastRequest("GetLoanHistory")
	assert.Contains(t, body, "<start>20</start>")
	assert.Contains(t, body, "<count>10</count>")
	assert.Contains(t, body, "<sortField>CHECK_OUT_DATE</sortField>")
	assert.Contains(t, body, "<sortDirection>DESCENDING</sortDirection>")
	assert.Contains(t, body, "<patronId>s-99</patronId>")
}

func TestGetMyTransactionHistoryUnconfigured(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	d := testDriver(t, server.URL, nil)
	_, err := d.GetMyTransactionHistory(testPatron(), nil)
	assert.NotNil(t, err)
	_, ok := err.(*ils.ConfigError)
	assert.True(t, ok)
}

func TestRenewMyItems(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("RenewLoans", `<renewLoansResponse>`+okStatus+`
		<loans>
			<loan>
				<id>l-1</id><loanDueDate>2026-10-15</loanDueDate>
				<loanStatus><status>isRenewedToday</status></loanStatus>
			</loan>
			<loan>
				<id>l-2</id><loanDueDate>2026-09-01</loanDueDate>
				<loanStatus><status>copyIsReserved</status></loanStatus>
			</loan>
		</loans>
	</renewLoansResponse>`)

	d := testDriver(t, server.URL, nil)
	result, err := d.RenewMyItems(testPatron(), []string{"l-1", "l-2"})
	assert.Nil(t, err)
	assert.Equal(t, 1, result.Count)

	assert.True(t, result.Items["l-1"].Success)
	assert.Equal(t, "Loan renewed", result.Items["l-1"].Status)
	assert.Equal(t, "2026-10-15", result.Items["l-1"].NewDate)

	assert.False(t, result.Items["l-2"].Success)
	assert.Equal(t, "Renewal failed", result.Items["l-2"].Status)
	assert.Equal(t, "renew_item_requested", result.Items["l-2"].SysMessage)

	body := server.lastRequest("RenewLoans")
	assert.Contains(t, body, "<loans>l-1</loans>")
	assert.Contains(t, body, "<loans>l-2</loans>")
}

func TestGetMyHolds(t *testing.T) {
	from := time.Now().AddDate(0, 0, 5).Format(dateutil.DisplayLayout)
	to := time.Now().AddDate(0, 0, 30).Format(dateutil.DisplayLayout)
	frozenThrough := time.Now().AddDate(0, 0, 4).Format(dateutil.DisplayLayout)

	server := newSoapServer(t)
	defer server.Close()
	server.respond("getReservations", `<getReservationsResult>`+okStatus+`
		<reservations>
			<reservation>
				<id>r-2</id>
				<validFromDate>`+from+`</validFromDate>
				<validToDate>`+to+`</validToDate>
				<pickUpBranchId>11</pickUpBranchId>
				<queueNo>3</queueNo>
				<isEditable>yes</isEditable><isDeletable>yes</isDeletable>
				<reservationStatus>reservationOk</reservationStatus>
				<reservationType>normal</reservationType>
				<organisationId>1</organisationId>
				<createDate>2026-08-01</createDate>
				<catalogueRecord><id>rec-2</id><title>Beta</title></catalogueRecord>
			</reservation>
			<reservation>
				<id>r-1</id>
				<validFromDate>2026-08-01</validFromDate>
				<validToDate>2026-12-01</validToDate>
				<pickUpBranchId>11</pickUpBranchId>
				<pickUpExpireDate>2026-09-10</pickUpExpireDate>
				<pickUpNo>17</pickUpNo>
				<isEditable>no</isEditable><isDeletable>yes</isDeletable>
				<reservationStatus>fetchable</reservationStatus>
				<reservationType>normal</reservationType>
				<organisationId>1</organisationId>
				<createDate>2026-08-01</createDate>
				<catalogueRecord><id>rec-1</id><title>Alpha</title></catalogueRecord>
			</reservation>
		</reservations>
	</getReservationsResult>`)

	d := testDriver(t, server.URL, nil)
	holds, err := d.GetMyHolds(testPatron())
	assert.Nil(t, err)
	assert.Equal(t, 2, len(holds))

	// Sorted by title.
	fetchable := holds[0]
	assert.Equal(t, "Alpha", fetchable.Title)
	assert.True(t, fetchable.Available)
	assert.Equal(t, "2026-09-10", fetchable.Expire)
	assert.Equal(t, "17", fetchable.PickupNumber)
	assert.Empty(t, fetchable.UpdateDetails)
	assert.Equal(t, "r-1|2026-08-01|2026-12-01|11", fetchable.CancelDetails)
	assert.False(t, fetchable.Frozen)

	frozen := holds[1]
	assert.Equal(t, "Beta", frozen.Title)
	assert.True(t, frozen.Frozen)
	assert.Equal(t, frozenThrough, frozen.FrozenThrough)
	assert.Equal(t, "3", frozen.Position)
	assert.Equal(t, "r-2|"+from+"|"+to+"|11", frozen.UpdateDetails)
	assert.Empty(t, frozen.RequestGroup)
}

func TestPlaceHold(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("addReservation", `<addReservationResult>`+okStatus+`</addReservationResult>`)

	d := testDriver(t, server.URL, nil)
	requiredBy := time.Date(2026, 12, 24, 12, 0, 0, 0, time.Local)
	result, err := d.PlaceHold(&ils.HoldRequest{
		Patron:         testPatron(),
		RecordID:       "rec-1",
		ItemID:         "item-11",
		PickUpLocation: "1.11",
		RequiredBy:     requiredBy.Unix(),
	})
	assert.Nil(t, err)
	assert.True(t, result.Success)

	body := server.lastRequest("addReservation")
	assert.Contains(t, body, "<reservationEntities>item-11</reservationEntities>")
	assert.Contains(t, body, "<reservationSource>holdings</reservationSource>")
	assert.Contains(t, body, "<reservationType>normal</reservationType>")
	assert.Contains(t, body, "<organisationId>1</organisationId>")
	assert.Contains(t, body, "<pickUpBranchId>11</pickUpBranchId>")
	assert.Contains(t, body, "<validToDate>2026-12-24</validToDate>")
}

func TestPlaceHoldRecordLevel(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("addReservation", `<addReservationResult>`+okStatus+`</addReservationResult>`)

	d := testDriver(t, server.URL, func(cfg *Config) {
		cfg.Holds.DefaultRequiredDate = "0:2:0"
	})
	result, err := d.PlaceHold(&ils.HoldRequest{
		Patron:         testPatron(),
		RecordID:       "rec-1",
		PickUpLocation: "1.11",
	})
	assert.Nil(t, err)
	assert.True(t, result.Success)

	expected := time.Now().AddDate(0, 2, 0).Format(dateutil.DisplayLayout)
	body := server.lastRequest("addReservation")
	assert.Contains(t, body, "<reservationEntities>rec-1</reservationEntities>")
	assert.Contains(t, body, "<reservationSource>catalogueRecordDetail</reservationSource>")
	assert.Contains(t, body, "<validToDate>"+expected+"</validToDate>")
}

func TestPlaceHoldBlocked(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("addReservation", `<addReservationResult>
		<status><type>error</type><message>BlockedBorrCard</message></status>
	</addReservationResult>`)

	d := testDriver(t, server.URL, nil)
	result, err := d.PlaceHold(&ils.HoldRequest{
		Patron:         testPatron(),
		RecordID:       "rec-1",
		PickUpLocation: "1.11",
	})
	assert.Nil(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "hold_error_blocked", result.SysMessage)
}

func TestCancelHolds(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("removeReservation", `<removeReservationResult>`+okStatus+`</removeReservationResult>`)
	server.respond("removeReservation", `<removeReservationResult>
		<status><type>error</type><message>ReservationDenied</message></status>
	</removeReservationResult>`)

	d := testDriver(t, server.URL, nil)
	result, err := d.CancelHolds(testPatron(), []string{
		"r-1|2026-08-01|2026-12-01|11",
		"r-2|2026-08-01|2026-12-01|11",
	})
	assert.Nil(t, err)
	assert.Equal(t, 2, result.Count)
	assert.True(t, result.Items["r-1"].Success)
	assert.Equal(t, "hold_cancel_success", result.Items["r-1"].Status)
	assert.False(t, result.Items["r-2"].Success)
	assert.Equal(t, "hold_cancel_fail", result.Items["r-2"].Status)
	assert.Equal(t, "ReservationDenied", result.Items["r-2"].SysMessage)
}

func TestUpdateHoldsFreeze(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("changeReservation", `<changeReservationResult>`+okStatus+`</changeReservationResult>`)

	frozenThrough := time.Date(2026, 10, 10, 0, 0, 0, 0, time.Local)
	frozen := true
	d := testDriver(t, server.URL, nil)
	results, err := d.UpdateHolds(testPatron(), []string{"r-1|2026-08-01|2026-12-01|11"},
		ils.HoldUpdate{Frozen: &frozen, FrozenThrough: frozenThrough.Unix()})
	assert.Nil(t, err)
	assert.True(t, results["r-1"].Success)

	// The hold stays frozen through the given date, so it reactivates the
	// day after.
	body := server.lastRequest("changeReservation")
	assert.Contains(t, body, "<validFromDate>2026-10-11</validFromDate>")
	assert.Contains(t, body, "<validToDate>2026-12-01</validToDate>")
	assert.Contains(t, body, "<pickUpBranchId>11</pickUpBranchId>")
}

func TestUpdateHoldsPickUpLocation(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("changeReservation", `<changeReservationResult>`+okStatus+`</changeReservationResult>`)

	d := testDriver(t, server.URL, nil)
	results, err := d.UpdateHolds(testPatron(), []string{"r-1|2026-08-01|2026-12-01|11"},
		ils.HoldUpdate{PickUpLocation: "2.21"})
	assert.Nil(t, err)
	assert.True(t, results["r-1"].Success)
	assert.Contains(t, server.lastRequest("changeReservation"), "<pickUpBranchId>21</pickUpBranchId>")
}

const branchesResult = `<getReservationBranchesResult>` + okStatus + `
	<organisations>
		<organisation>
			<id>1</id><name>Helmet</name>
			<branches>
				<branch><id>11</id><name>Pasila</name></branch>
				<branch><id>12</id><name>Kallio</name></branch>
			</branches>
		</organisation>
		<organisation>
			<id>2</id><name>Vaski</name>
			<branches>
				<branch><id>21</id><name>Turku</name></branch>
			</branches>
		</organisation>
	</organisations>
</getReservationBranchesResult>`

func TestGetPickUpLocations(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("getReservationBranches", branchesResult)

	d := testDriver(t, server.URL, func(cfg *Config) {
		cfg.Holds.PickUpLocationOrder = []string{"2.21"}
		cfg.Holds.ExcludedPickUpLocations = map[string]ExcludedLocations{
			"normal": {Units: []string{"1.12"}},
		}
	})
	locations, err := d.GetPickUpLocations(testPatron(), &ils.HoldRequest{RecordID: "rec-1"})
	assert.Nil(t, err)
	assert.Equal(t, 2, len(locations))
	assert.Equal(t, "2.21", locations[0].ID)
	assert.Equal(t, "Turku", locations[0].Display)
	assert.Equal(t, "1.11", locations[1].ID)

	body := server.lastRequest("getReservationBranches")
	assert.Contains(t, body, "<country>FI</country>")
	assert.Contains(t, body, "<reservationType>normal</reservationType>")
}

func TestGetPickUpLocationsItemFallback(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("getReservationBranches",
		`<getReservationBranchesResult>`+okStatus+`<organisations></organisations></getReservationBranchesResult>`)
	server.respond("getReservationBranches", branchesResult)

	d := testDriver(t, server.URL, nil)
	locations, err := d.GetPickUpLocations(testPatron(),
		&ils.HoldRequest{RecordID: "rec-1", ItemID: "item-11"})
	assert.Nil(t, err)
	assert.Equal(t, 3, len(locations))

	// The retry drops the item id and queries at the record level.
	first := server.requests["getReservationBranches"][0]
	assert.Contains(t, first, "<reservationEntities>item-11</reservationEntities>")
	second := server.requests["getReservationBranches"][1]
	assert.Contains(t, second, "<reservationEntities>rec-1</reservationEntities>")
}

func TestGetPickUpLocationsLimitToOrganisation(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("getReservationBranches", branchesResult)

	d := testDriver(t, server.URL, nil)
	locations, err := d.GetPickUpLocations(testPatron(),
		&ils.HoldRequest{RecordID: "rec-1", Organisation: "Vaski"})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(locations))
	assert.Equal(t, "2.21", locations[0].ID)
}

func TestGetRequestGroups(t *testing.T) {
	d := testDriver(t, "http://localhost", nil)
	groups, err := d.GetRequestGroups("rec-1", testPatron())
	assert.Nil(t, err)
	assert.Empty(t, groups)

	d = testDriver(t, "http://localhost", func(cfg *Config) {
		cfg.Holds.RequestGroupsEnabled = true
		cfg.Holds.DefaultRequestGroup = "normal"
	})
	groups, err = d.GetRequestGroups("rec-1", testPatron())
	assert.Nil(t, err)
	assert.Equal(t, 2, len(groups))
	assert.Equal(t, "axiell_normal", groups[0].Name)
	assert.Equal(t, "axiell_regional", groups[1].Name)

	group, err := d.GetDefaultRequestGroup(testPatron())
	assert.Nil(t, err)
	assert.Equal(t, "normal", group)
}

func TestGetDefaultPickUpLocationUserSelected(t *testing.T) {
	d := testDriver(t, "http://localhost", func(cfg *Config) {
		cfg.Holds.DefaultPickUpLocation = "user-selected"
	})
	location, err := d.GetDefaultPickUpLocation(testPatron())
	assert.Nil(t, err)
	assert.Empty(t, location)
}

func debtsResultXML(payableDate string) string {
	return `<debtsResponse>` + okStatus + `
		<debts>
			<debt>
				<id>d-1</id><debtType>Overdue fee</debtType><debtNote>Kalevala</debtNote>
				<debtDate>` + payableDate + `</debtDate>
				<debtAmountFormatted>3,50 EUR</debtAmountFormatted>
				<organisation>Helmet</organisation>
			</debt>
			<debt>
				<id>d-2</id><debtType>Overdue fee</debtType><debtNote>Old debt</debtNote>
				<debtDate>2005-01-01</debtDate>
				<debtAmountFormatted>10,00 EUR</debtAmountFormatted>
			</debt>
			<debt>
				<id>d-3</id><debtType>Replacement</debtType><debtNote>Lost item</debtNote>
				<debtDate>` + payableDate + `</debtDate>
				<debtAmountFormatted>25,00 EUR</debtAmountFormatted>
			</debt>
		</debts>
	</debtsResponse>`
}

func TestGetMyFines(t *testing.T) {
	recent := time.Now().AddDate(0, -1, 0).Format(dateutil.DisplayLayout)

	server := newSoapServer(t)
	defer server.Close()
	server.respond("GetDebts", debtsResultXML(recent))

	d := testDriver(t, server.URL, func(cfg *Config) {
		cfg.OnlinePayment.Enabled = true
		cfg.OnlinePayment.NonPayable = []string{"/^Replacement/"}
	})
	fines, err := d.GetMyFines(testPatron())
	assert.Nil(t, err)
	assert.Equal(t, 3, len(fines))

	// Newest first.
	assert.Equal(t, "2005-01-01", fines[2].CreateDate)
	assert.False(t, fines[2].PayableOnline)

	byID := map[string]ils.Fine{}
	for _, fine := range fines {
		byID[fine.ID] = fine
	}
	assert.Equal(t, int64(350), byID["d-1"].Amount)
	assert.Equal(t, "Overdue fee - Kalevala", byID["d-1"].Description)
	assert.True(t, byID["d-1"].PayableOnline)
	assert.Equal(t, "Helmet", byID["d-1"].Organisation)

	assert.Equal(t, int64(1000), byID["d-2"].Amount)

	// Blocked by the non-payable pattern despite being recent.
	assert.Equal(t, int64(2500), byID["d-3"].Amount)
	assert.False(t, byID["d-3"].PayableOnline)
}

func TestGetMyFinesPaymentDisabled(t *testing.T) {
	recent := time.Now().AddDate(0, -1, 0).Format(dateutil.DisplayLayout)

	server := newSoapServer(t)
	defer server.Close()
	server.respond("GetDebts", debtsResultXML(recent))

	d := testDriver(t, server.URL, nil)
	fines, err := d.GetMyFines(testPatron())
	assert.Nil(t, err)
	for _, fine := range fines {
		assert.False(t, fine.PayableOnline)
	}
}

func TestGetOnlinePaymentDetails(t *testing.T) {
	d := testDriver(t, "http://localhost", func(cfg *Config) {
		cfg.OnlinePayment.Enabled = true
		cfg.OnlinePayment.MinimumFee = 500
	})
	fines := []ils.Fine{
		{ID: "d-1", Balance: 350, PayableOnline: true},
		{ID: "d-2", Balance: 1000},
	}
	details, err := d.GetOnlinePaymentDetails(testPatron(), fines)
	assert.Nil(t, err)
	assert.False(t, details.Payable)
	assert.Equal(t, int64(350), details.Amount)
	assert.Equal(t, "online_payment_minimum_fee", details.Reason)

	fines[1].PayableOnline = true
	details, err = d.GetOnlinePaymentDetails(testPatron(), fines)
	assert.Nil(t, err)
	assert.True(t, details.Payable)
	assert.Equal(t, int64(1350), details.Amount)

	details, err = d.GetOnlinePaymentDetails(testPatron(), nil)
	assert.Nil(t, err)
	assert.False(t, details.Payable)
	assert.Empty(t, details.Reason)
}

func TestMarkFeesAsPaid(t *testing.T) {
	recent := time.Now().AddDate(0, -1, 0).Format(dateutil.DisplayLayout)

	server := newSoapServer(t)
	defer server.Close()
	server.respond("GetDebts", debtsResultXML(recent))
	server.respond("AddPayment", `<addPaymentResponse>`+okStatus+`</addPaymentResponse>`)

	d := testDriver(t, server.URL, func(cfg *Config) {
		cfg.OnlinePayment.Enabled = true
		cfg.OnlinePayment.NonPayable = []string{"/^Replacement/"}
	})
	payment := ils.Payment{
		Amount:            350,
		TransactionID:     "tx-1",
		TransactionNumber: "order-9",
	}
	result, err := d.MarkFeesAsPaid(testPatron(), payment, nil)
	assert.Nil(t, err)
	assert.True(t, result.Success)

	body := server.lastRequest("AddPayment")
	assert.Contains(t, body, "<orderId>order-9</orderId>")
	assert.Contains(t, body, "<transactionNumber>tx-1</transactionNumber>")
	assert.Contains(t, body, "<paymentAmount>350</paymentAmount>")
	assert.Contains(t, body, "<id>d-1</id>")
}

func TestMarkFeesAsPaidBalanceChanged(t *testing.T) {
	recent := time.Now().AddDate(0, -1, 0).Format(dateutil.DisplayLayout)

	server := newSoapServer(t)
	defer server.Close()
	server.respond("GetDebts", debtsResultXML(recent))

	d := testDriver(t, server.URL, func(cfg *Config) {
		cfg.OnlinePayment.Enabled = true
		cfg.OnlinePayment.NonPayable = []string{"/^Replacement/"}
	})
	result, err := d.MarkFeesAsPaid(testPatron(), ils.Payment{Amount: 500}, nil)
	assert.Nil(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "fines_updated", result.Status)
	assert.Empty(t, server.requests["AddPayment"])
}

func TestUpdateEmail(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("getPatronInformation", `<patronInformationResult>`+okStatus+`
		<patronInformation>
			<patronName>Maija Virtanen</patronName>
			<backendPatronId>12345</backendPatronId>
			<emailAddresses>
				<emailAddress><id>e1</id><address>maija@example.com</address><isActive>yes</isActive></emailAddress>
			</emailAddresses>
		</patronInformation>
	</patronInformationResult>`)
	server.respond("authenticatePatron", `<authenticatePatronResult>`+okStatus+
		`<patronId>s-99</patronId></authenticatePatronResult>`)
	server.respond("changeEmail", `<changeEmailAddressResult>`+okStatus+`</changeEmailAddressResult>`)

	d := testDriver(t, server.URL, nil)
	result, err := d.UpdateEmail(testPatron(), "new+tag@example.com")
	assert.Nil(t, err)
	assert.True(t, result.Success)

	body := server.lastRequest("changeEmail")
	assert.Contains(t, body, "<id>e1</id>")
	assert.Contains(t, body, "<address>new%2Btag@example.com</address>")
}

func TestChangePassword(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("changeCardPin", `<changeCardPinResult>`+okStatus+`</changeCardPinResult>`)

	d := testDriver(t, server.URL, func(cfg *Config) {
		cfg.ChangePasswordEnabled = true
	})
	result, err := d.ChangePassword(testPatron(), "1234", "5678")
	assert.Nil(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "change_password_ok", result.Status)

	body := server.lastRequest("changeCardPin")
	assert.Contains(t, body, "<cardNumber>cardnumber</cardNumber>")
	assert.Contains(t, body, "<cardPin>1234</cardPin>")
	assert.Contains(t, body, "<newCardPin>5678</newCardPin>")
}

func TestUpdateMessagingSettings(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("changeMessageService", `<changeMessageServiceResponse>`+okStatus+`</changeMessageServiceResponse>`)
	server.respond("removeMessageService", `<removeMessageServiceResponse>`+okStatus+`</removeMessageServiceResponse>`)

	d := testDriver(t, server.URL, func(cfg *Config) {
		cfg.PatronAuroraURL = server.URL
	})
	result, err := d.UpdateMessagingSettings(testPatron(), map[string]ils.MessageService{
		"dueDateAlert":  {Transport: "email", NumOfDays: 3},
		"overdueNotice": {Transport: "inactive"},
	})
	assert.Nil(t, err)
	assert.True(t, result.Success)

	change := server.lastRequest("changeMessageService")
	assert.Contains(t, change, "<serviceType>dueDateAlert</serviceType>")
	assert.Contains(t, change, "<value>3</value>")
	remove := server.lastRequest("removeMessageService")
	assert.Contains(t, remove, "<serviceType>overdueNotice</serviceType>")
}

func TestSupportsMethod(t *testing.T) {
	d := testDriver(t, "http://localhost", nil)
	assert.True(t, d.SupportsMethod("PatronLogin"))
	assert.True(t, d.SupportsMethod("GetMyHolds"))
	assert.False(t, d.SupportsMethod("ChangePassword"))
	assert.False(t, d.SupportsMethod("GetMyTransactionHistory"))
	assert.False(t, d.SupportsMethod("UpdateAddress"))
	assert.False(t, d.SupportsMethod("MarkFeesAsPaid"))
	assert.False(t, d.SupportsMethod("NoSuchMethod"))

	d = testDriver(t, "http://localhost", func(cfg *Config) {
		cfg.ChangePasswordEnabled = true
		cfg.LoansAuroraURL = "http://localhost"
		cfg.PatronAuroraURL = "http://localhost"
		cfg.OnlinePayment.Enabled = true
	})
	assert.True(t, d.SupportsMethod("ChangePassword"))
	assert.True(t, d.SupportsMethod("GetMyTransactionHistory"))
	assert.True(t, d.SupportsMethod("UpdateAddress"))
	assert.True(t, d.SupportsMethod("UpdateTransactionHistoryState"))
	assert.True(t, d.SupportsMethod("MarkFeesAsPaid"))
}

func TestTransportError(t *testing.T) {
	d := testDriver(t, "http://localhost:1", nil)
	_, err := d.GetHolding("rec-1")
	assert.NotNil(t, err)
	transport, ok := err.(*ils.TransportError)
	assert.True(t, ok)
	assert.Equal(t, "GetHoldings", transport.Op)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		formatted string
		expected  int64
	}{
		{"3,50 EUR", 350},
		{"3.50", 350},
		{"0,00", 0},
		{"1 250,00 EUR", 100},
		{"", 0},
		{"EUR", 0},
	}
	for _, tt := range tests {
		t.Run(tt.formatted, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseAmount(tt.formatted))
		})
	}
}

func TestDefaultRequiredByDate(t *testing.T) {
	d := testDriver(t, "http://localhost", func(cfg *Config) {
		cfg.Holds.DefaultRequiredDate = "10:0:1"
	})
	expected := time.Now().AddDate(1, 0, 10).Format(dateutil.DisplayLayout)
	assert.Equal(t, expected, d.defaultRequiredByDate().Format(dateutil.DisplayLayout))

	d = testDriver(t, "http://localhost", nil)
	expected = time.Now().AddDate(0, 1, 0).Format(dateutil.DisplayLayout)
	assert.Equal(t, expected, d.defaultRequiredByDate().Format(dateutil.DisplayLayout))
}

func TestGetMyHoldsRequestGroups(t *testing.T) {
	server := newSoapServer(t)
	defer server.Close()
	server.respond("getReservations", fmt.Sprintf(`<getReservationsResult>%s
		<reservations>
			<reservation>
				<id>r-1</id>
				<validFromDate>2026-08-01</validFromDate>
				<validToDate>2026-12-01</validToDate>
				<pickUpBranchId>11</pickUpBranchId>
				<isEditable>no</isEditable><isDeletable>yes</isDeletable>
				<reservationStatus>reservationOk</reservationStatus>
				<reservationType>regional</reservationType>
				<createDate>2026-08-01</createDate>
				<catalogueRecord><id>rec-1</id><title>Alpha</title></catalogueRecord>
			</reservation>
		</reservations>
	</getReservationsResult>`, okStatus))

	d := testDriver(t, server.URL, func(cfg *Config) {
		cfg.Holds.RequestGroupsEnabled = true
	})
	holds, err := d.GetMyHolds(testPatron())
	assert.Nil(t, err)
	assert.Equal(t, "axiell_regional", holds[0].RequestGroup)
	assert.Equal(t, "regional", holds[0].RequestGroupID)
	// A deletable regional hold is editable even though the backend says
	// otherwise.
	assert.NotEmpty(t, holds[0].UpdateDetails)
}

func TestProfileCacheSeparatesArenaMembers(t *testing.T) {
	serverA := newSoapServer(t)
	defer serverA.Close()
	serverB := newSoapServer(t)
	defer serverB.Close()

	respondProfile := func(s *soapServer, email string) {
		s.respond("getPatronInformation", `<patronInformationResult>`+okStatus+`
			<patronInformation>
				<patronName>Maija Virtanen</patronName>
				<backendPatronId>12345</backendPatronId>
				<emailAddresses>
					<emailAddress><id>e1</id><address>`+email+`</address><isActive>yes</isActive></emailAddress>
				</emailAddresses>
			</patronInformation>
		</patronInformationResult>`)
		s.respond("authenticatePatron", `<authenticatePatronResult>`+okStatus+
			`<patronId>s-99</patronId></authenticatePatronResult>`)
	}
	respondProfile(serverA, "maija@member-a.example")
	respondProfile(serverB, "maija@member-b.example")

	shared := cache.New(100)
	newMember := func(member, url string) *Driver {
		d, err := New(Config{
			ArenaMember:     member,
			CatalogueURL:    url,
			PatronURL:       url,
			LoansURL:        url,
			PaymentsURL:     url,
			ReservationsURL: url,
			Language:        "en",
		}, nil, shared, nil)
		assert.Nil(t, err)
		return d
	}
	dA := newMember("member_a", serverA.URL)
	dB := newMember("member_b", serverB.URL)

	patronA, err := dA.PatronLogin("cardnumber", "pin")
	assert.Nil(t, err)
	profileA, err := dA.GetMyProfile(patronA)
	assert.Nil(t, err)
	assert.Equal(t, "maija@member-a.example", profileA.Email)

	// The second member must fetch its own record, never read the entry the
	// first member cached for the same card number.
	profileB, err := dB.GetMyProfile(testPatron())
	assert.Nil(t, err)
	assert.Equal(t, "maija@member-b.example", profileB.Email)
	assert.Equal(t, 1, len(serverB.requests["getPatronInformation"]))
}
