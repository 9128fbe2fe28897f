// Package axiell implements an ILS driver for Axiell Aurora backends over
// the Arena SOAP web services.
package axiell

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/indexdata/ilsdriver/cache"
	"github.com/indexdata/ilsdriver/ils"
	"github.com/indexdata/ilsdriver/soap"
)

// ExcludedLocations lists pickup exclusions for one hold type.
type ExcludedLocations struct {
	Organisations []string `yaml:"organisations"`
	Units         []string `yaml:"units"`
}

// HoldsConfig controls hold placement and pickup location handling.
type HoldsConfig struct {
	DefaultPickUpLocation  string `yaml:"defaultPickUpLocation"`
	DefaultRequestGroup    string `yaml:"defaultRequestGroup"`
	RegionalHold           bool   `yaml:"regionalHold"`
	RequestGroupsEnabled   bool   `yaml:"requestGroupsEnabled"`
	SingleReservationQueue bool   `yaml:"singleReservationQueue"`
	// DefaultRequiredDate is "days:months:years" added to today when the
	// hold request has no expiry.
	DefaultRequiredDate     string                       `yaml:"defaultRequiredDate"`
	PickUpLocationOrder     []string                     `yaml:"pickUpLocationOrder"`
	ExcludedPickUpLocations map[string]ExcludedLocations `yaml:"excludedPickUpLocations"`
	// LimitPickUpLocationChangeToCurrentOrganisation restricts normal hold
	// pickup changes to the organisation holding the reservation. Unset
	// defaults to the opposite of SingleReservationQueue.
	LimitPickUpLocationChangeToCurrentOrganisation *bool `yaml:"limitPickUpLocationChangeToCurrentOrganisation"`
}

// OnlinePaymentConfig controls fine payability.
type OnlinePaymentConfig struct {
	Enabled    bool  `yaml:"enabled"`
	MinimumFee int64 `yaml:"minimumFee"`
	// ExactBalanceRequired rejects payments that do not match the payable
	// balance; it defaults to true when the section is enabled.
	ExactBalanceRequired *bool `yaml:"exactBalanceRequired"`
	// NonPayable lists blocked fine descriptions, literally or as
	// /regexp/ entries.
	NonPayable []string `yaml:"nonPayable"`
	// PayableFineDateThreshold is the oldest payable fine date
	// (YYYY-MM-DD). Unset means five years back.
	PayableFineDateThreshold string `yaml:"payableFineDateThreshold"`
}

// Config is the static configuration of one Axiell driver instance.
type Config struct {
	ArenaMember string `yaml:"arenaMember"`

	CatalogueURL    string `yaml:"catalogueURL"`
	PatronURL       string `yaml:"patronURL"`
	LoansURL        string `yaml:"loansURL"`
	PaymentsURL     string `yaml:"paymentsURL"`
	ReservationsURL string `yaml:"reservationsURL"`
	// Aurora-only service endpoints; operations needing them report as
	// unsupported when empty.
	LoansAuroraURL  string `yaml:"loansAuroraURL"`
	PatronAuroraURL string `yaml:"patronAuroraURL"`

	Language string `yaml:"language"`

	Holds    HoldsConfig `yaml:"holds"`
	Holdings struct {
		OrganisationOrder []string `yaml:"organisationOrder"`
		BranchOrder       []string `yaml:"branchOrder"`
	} `yaml:"holdings"`
	Loans struct {
		RenewalLimit int `yaml:"renewalLimit"`
	} `yaml:"loans"`
	OnlinePayment OnlinePaymentConfig `yaml:"onlinePayment"`

	// MessagingMethod selects how messaging settings are exposed:
	// "database", "driver" or "none".
	MessagingMethod  string              `yaml:"messagingMethod"`
	MessagingFilters map[string][]string `yaml:"messagingFilters"`

	ChangePasswordEnabled bool `yaml:"changePasswordEnabled"`
	// EncodeEmailPlusSign works around a backend bug converting a bare
	// plus sign in email addresses to a space. Unset means enabled.
	EncodeEmailPlusSign        *bool `yaml:"encodeEmailPlusSign"`
	UpdateAddressNeedsApproval *bool `yaml:"updateAddressNeedsApproval"`

	MaxResponseSize int64 `yaml:"maxResponseSize"`
}

const patronCacheTTL = 10 * time.Minute

// Driver talks to one Axiell backend on behalf of one arena member.
type Driver struct {
	cfg    Config
	client *http.Client
	cache  cache.Cache
	logger *slog.Logger
	sorter *ils.HoldingsSorter

	catalogue    *soap.Client
	patron       *soap.Client
	loans        *soap.Client
	loansAurora  *soap.Client
	payments     *soap.Client
	reservations *soap.Client
	patronAurora *soap.Client
}

// New validates cfg and builds a driver. client may be nil for
// http.DefaultClient.
func New(cfg Config, client *http.Client, c cache.Cache, logger *slog.Logger) (*Driver, error) {
	if cfg.ArenaMember == "" {
		return nil, &ils.ConfigError{Field: "arenaMember", Reason: "must be set"}
	}
	required := []struct {
		field string
		value string
	}{
		{"catalogueURL", cfg.CatalogueURL},
		{"patronURL", cfg.PatronURL},
		{"loansURL", cfg.LoansURL},
		{"paymentsURL", cfg.PaymentsURL},
		{"reservationsURL", cfg.ReservationsURL},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, &ils.ConfigError{Field: r.field, Reason: "must be set"}
		}
	}
	if cfg.Holds.DefaultPickUpLocation == "0" || cfg.Holds.DefaultPickUpLocation == "user-selected" {
		cfg.Holds.DefaultPickUpLocation = ""
	}
	if cfg.Holds.DefaultRequestGroup == "user-selected" {
		cfg.Holds.DefaultRequestGroup = ""
	}
	if client == nil {
		client = http.DefaultClient
	}
	if c == nil {
		c = cache.New(1000)
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Driver{
		cfg:    cfg,
		client: client,
		cache:  c,
		logger: logger.With("driver", "axiell", "arenaMember", cfg.ArenaMember),
		sorter: ils.NewHoldingsSorter(cfg.Language,
			cfg.Holdings.OrganisationOrder, cfg.Holdings.BranchOrder),
	}
	d.catalogue = d.endpoint(cfg.CatalogueURL)
	d.patron = d.endpoint(cfg.PatronURL)
	d.loans = d.endpoint(cfg.LoansURL)
	d.payments = d.endpoint(cfg.PaymentsURL)
	d.reservations = d.endpoint(cfg.ReservationsURL)
	if cfg.LoansAuroraURL != "" {
		d.loansAurora = d.endpoint(cfg.LoansAuroraURL)
	}
	if cfg.PatronAuroraURL != "" {
		d.patronAurora = d.endpoint(cfg.PatronAuroraURL)
	}
	return d, nil
}

func (d *Driver) endpoint(url string) *soap.Client {
	return &soap.Client{URL: url, MaxResponseSize: d.cfg.MaxResponseSize}
}

// language returns the backend interface language, limited to what the
// backend accepts.
func (d *Driver) language() string {
	switch d.cfg.Language {
	case "en", "sv", "fi":
		return d.cfg.Language
	}
	return "en"
}

// call performs one SOAP operation and validates that the result carries a
// status. A missing status means the backend answered out of protocol,
// which it does when offline.
func (d *Driver) call(c *soap.Client, op string, req any, res awsResponse, id string) (*awsStatus, error) {
	d.logger.Debug("request", "op", op, "id", id)
	start := time.Now()
	err := c.Call(d.client, op, req, res)
	d.logger.Debug("request done", "op", op, "id", id, "duration", time.Since(start))
	if err != nil {
		d.logger.Error("request failed", "op", op, "id", id, "error", err)
		return nil, &ils.TransportError{Op: op, Err: err}
	}
	st := res.status()
	if st.Type == "" {
		return nil, &ils.OfflineError{Op: op, Detail: "response carries no status"}
	}
	return st, nil
}

// offlineMessages are backend system errors that mean the ILS itself is
// down rather than the operation being denied.
var offlineMessages = map[string]bool{
	"BackendError":        true,
	"LocalServiceTimeout": true,
	"DatabaseError":       true,
}

// handleError turns a non-ok status into a message key, or an OfflineError
// when the backend reports a system failure.
func (d *Driver) handleError(op string, st *awsStatus, id string) (string, error) {
	message := st.Message
	if message == "" {
		message = st.Type
	}
	if offlineMessages[message] {
		d.logger.Error("backend offline", "op", op, "id", id, "error", message)
		return "", &ils.OfflineError{Op: op, Detail: message}
	}
	return mapStatus(message, op), nil
}

// SupportsMethod reports whether the named Driver operation works under the
// current configuration.
func (d *Driver) SupportsMethod(method string) bool {
	switch method {
	case "ChangePassword":
		return d.cfg.ChangePasswordEnabled
	case "GetMyTransactionHistory":
		return d.loansAurora != nil
	case "UpdateAddress", "UpdateMessagingSettings", "UpdateTransactionHistoryState":
		return d.patronAurora != nil
	case "GetOnlinePaymentDetails", "MarkFeesAsPaid":
		return d.cfg.OnlinePayment.Enabled
	case "PatronLogin", "GetMyProfile", "GetHolding", "GetStatuses",
		"GetMyTransactions", "RenewMyItems", "GetMyHolds", "PlaceHold",
		"CancelHolds", "UpdateHolds", "GetMyFines", "GetPickUpLocations",
		"GetDefaultPickUpLocation", "GetRequestGroups",
		"GetDefaultRequestGroup", "UpdateEmail", "UpdatePhone":
		return true
	}
	return false
}

// patronCacheKey carries the arena member so institutions sharing a cache
// never read each other's entries.
func (d *Driver) patronCacheKey(username string) string {
	return "axiell|" + d.cfg.ArenaMember + "|patron|" + username + "|" + d.language()
}

func (d *Driver) invalidatePatron(username string) {
	d.cache.Delete(d.patronCacheKey(username))
}

func yes(s string) bool {
	return s == "yes"
}
