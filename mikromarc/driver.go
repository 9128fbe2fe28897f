// Package mikromarc implements an ILS driver for Mikromarc backends over
// the OData REST API.
package mikromarc

import (
	"crypto/md5"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/indexdata/ilsdriver/cache"
	"github.com/indexdata/ilsdriver/httpclient"
	"github.com/indexdata/ilsdriver/ils"
)

// HoldsConfig controls hold placement and pickup location handling.
type HoldsConfig struct {
	DefaultPickUpLocation string `yaml:"defaultPickUpLocation"`
	DefaultRequestGroup   string `yaml:"defaultRequestGroup"`
	RequestGroupsEnabled  bool   `yaml:"requestGroupsEnabled"`
	// ExcludedPickUpLocations lists library unit ids never offered for
	// pickup.
	ExcludedPickUpLocations []string `yaml:"excludedPickUpLocations"`
	PickUpLocationOrder     []string `yaml:"pickUpLocationOrder"`
	// NotAllowedForHold overrides the default list of item statuses that
	// block holds.
	NotAllowedForHold []string `yaml:"notAllowedForHold"`
}

// OnlinePaymentConfig controls fine payability.
type OnlinePaymentConfig struct {
	Enabled    bool  `yaml:"enabled"`
	MinimumFee int64 `yaml:"minimumFee"`
	// ExactBalanceRequired rejects payments that do not match the payable
	// balance exactly.
	ExactBalanceRequired bool `yaml:"exactBalanceRequired"`
	// NonPayable lists blocked fee type codes.
	NonPayable []int `yaml:"nonPayable"`
}

// Config is the static configuration of one Mikromarc driver instance.
type Config struct {
	Host     string `yaml:"host"`
	Base     string `yaml:"base"`
	Unit     string `yaml:"unit"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	Language string `yaml:"language"`

	Holds    HoldsConfig `yaml:"holds"`
	Holdings struct {
		// OrganisationID overrides the organisation derived from the
		// library unit tree.
		OrganisationID    string   `yaml:"organisationId"`
		OrganisationOrder []string `yaml:"organisationOrder"`
	} `yaml:"holdings"`
	Loans struct {
		RenewalLimit int `yaml:"renewalLimit"`
	} `yaml:"loans"`
	OnlinePayment OnlinePaymentConfig `yaml:"onlinePayment"`

	// Messaging lists the selectable checkout notice formats and
	// notification channels, as "value:label" entries.
	Messaging struct {
		CheckoutNotice []string `yaml:"checkoutNotice"`
		Notifications  []string `yaml:"notifications"`
	} `yaml:"messaging"`

	ChangePasswordEnabled bool `yaml:"changePasswordEnabled"`
	// TransactionHistoryEnabled exposes the loan history operations and
	// the per-patron history opt-in.
	TransactionHistoryEnabled bool `yaml:"transactionHistoryEnabled"`

	MaxResponseSize int64 `yaml:"maxResponseSize"`
}

const (
	patronCacheTTL = 10 * time.Minute
	unitsCacheTTL  = time.Hour
)

// requestGroupScopes maps the public request group ids to the backend
// reservation scopes.
var requestGroupScopes = map[string]string{
	"normal":   "EntireUnitBranch",
	"regional": "CooperatingUnits",
}

// Driver talks to one Mikromarc backend on behalf of one library unit.
type Driver struct {
	cfg    Config
	client *http.Client
	cache  cache.Cache
	logger *slog.Logger
	sorter *ils.HoldingsSorter
	hc     *httpclient.HttpClient
}

// New validates cfg and builds a driver. client may be nil for
// http.DefaultClient.
func New(cfg Config, client *http.Client, c cache.Cache, logger *slog.Logger) (*Driver, error) {
	required := []struct {
		field string
		value string
	}{
		{"host", cfg.Host},
		{"base", cfg.Base},
		{"unit", cfg.Unit},
		{"username", cfg.Username},
		{"password", cfg.Password},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, &ils.ConfigError{Field: r.field, Reason: "must be set"}
		}
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
	hc := httpclient.NewClient().
		WithBasicAuth(cfg.Username, cfg.Password).
		WithHeaders("Accept", httpclient.ContentTypeApplicationJson)
	if cfg.MaxResponseSize > 0 {
		hc.WithMaxSize(cfg.MaxResponseSize)
	}
	return &Driver{
		cfg:    cfg,
		client: client,
		cache:  c,
		logger: logger.With("driver", "mikromarc", "unit", cfg.Unit),
		sorter: ils.NewHoldingsSorter(cfg.Language,
			cfg.Holdings.OrganisationOrder, nil),
		hc: hc,
	}, nil
}

// SupportsMethod reports whether the named Driver operation works under the
// current configuration.
func (d *Driver) SupportsMethod(method string) bool {
	switch method {
	case "ChangePassword":
		return d.cfg.ChangePasswordEnabled
	case "GetMyTransactionHistory", "UpdateTransactionHistoryState":
		return d.cfg.TransactionHistoryEnabled
	case "GetOnlinePaymentDetails", "MarkFeesAsPaid":
		return d.cfg.OnlinePayment.Enabled
	case "PatronLogin", "GetMyProfile", "GetHolding", "GetStatuses",
		"GetMyTransactions", "RenewMyItems", "GetMyHolds", "PlaceHold",
		"CancelHolds", "UpdateHolds", "GetMyFines", "GetPickUpLocations",
		"GetDefaultPickUpLocation", "GetRequestGroups",
		"GetDefaultRequestGroup", "UpdateEmail", "UpdatePhone",
		"UpdateAddress", "UpdateMessagingSettings":
		return true
	}
	return false
}

// patronCacheKey separates cached profiles by database, unit and
// credentials, so another institution on a shared cache or a password
// change can never read a stale entry.
func (d *Driver) patronCacheKey(patron *ils.Patron, action string) string {
	sum := md5.Sum([]byte(patron.Username + "|" + patron.Password))
	return "mikromarc|" + d.cfg.Base + "|" + d.cfg.Unit + "|" + action + "|" + hex.EncodeToString(sum[:])
}

func (d *Driver) invalidatePatron(patron *ils.Patron) {
	d.cache.Delete(d.patronCacheKey(patron, "profile"))
}

// errorKeys maps backend error codes to the message keys the caller
// displays.
var errorKeys = map[string]string{
	"BorrowerDefaulted":              "authentication_error_account_locked",
	"DuplicateReservationExists":     "hold_error_already_held",
	"NoItemsAvailableByTerm":         "hold_error_denied",
	"NoItemAvailable":                "hold_error_denied",
	"NoTermsPermitLoanOrReservation": "hold_error_not_holdable",
	"ReservedForOtherBorrower":       "renew_item_requested",
	"TermsDoNotAllowRenewal":         "hold_error_not_holdable",
}

// convertError turns a failed mutating call into a message key.
func convertError(oerr *odataError) string {
	message := "hold_error_fail"
	if oerr != nil {
		if oerr.Message != "" {
			message = oerr.Message
		} else if oerr.Code != "" {
			message = oerr.Code
		}
	}
	if mapped, ok := errorKeys[message]; ok {
		return mapped
	}
	return message
}

func intID(s string) int {
	id, _ := strconv.Atoi(s)
	return id
}
