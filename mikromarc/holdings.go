package mikromarc

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/indexdata/ilsdriver/dateutil"
	"github.com/indexdata/ilsdriver/ils"
)

// itemStatuses maps backend item statuses to display statuses. Unknown
// statuses read as no information.
var itemStatuses = map[string]string{
	"AvailableForLoan":                  "Available",
	"InCourseOfAcquisition":             "Ordered",
	"OnLoan":                            "Charged",
	"InProcess":                         "In Process",
	"Recalled":                          "Recall Request",
	"WaitingOnReservationShelf":         "On Holdshelf",
	"AwaitingReplacing":                 "In Repair",
	"InTransitBetweenLibraries":         "In Transit",
	"ClaimedReturnedOrNeverBorrowed":    "Claims Returned",
	"Lost":                              "Lost--Library Applied",
	"MissingBeingTraced":                "Lost--Library Applied",
	"AtBinding":                         "In Repair",
	"UnderRepair":                       "In Repair",
	"AwaitingTransfer":                  "In Transit",
	"MissingOverdue":                    "Overdue",
	"Withdrawn":                         "Withdrawn",
	"Discarded":                         "Withdrawn",
	"Other":                             "Not Available",
	"Unknown":                           "No information available",
	"OrderedFromAnotherLibrary":         "In Transit",
	"DeletedInMikromarc1":               "Withdrawn",
	"Reserved":                          "On Hold",
	"ReservedInTransitBetweenLibraries": "In Transit On Hold",
	"ToAcquisition":                     "In Process",
}

func itemStatusCode(status string) string {
	if mapped, ok := itemStatuses[status]; ok {
		return mapped
	}
	return "No information available"
}

// defaultNotAllowedForHold lists the item statuses that block holds unless
// overridden in configuration.
var defaultNotAllowedForHold = []string{
	"ClaimedReturnedOrNeverBorrowed", "Lost",
	"SuppliedReturnNotRequired", "MissingOverDue", "Withdrawn",
	"Discarded", "Other",
}

// issueNumberPattern detects shelf marks that actually carry issue
// numbering, e.g. "2018:4".
var issueNumberPattern = regexp.MustCompile(`^\d{4}:\d+$`)

type catalogueItem struct {
	ID                     int    `json:"Id"`
	BelongToUnitID         int    `json:"BelongToUnitId"`
	ItemStatus             string `json:"ItemStatus"`
	ReservationQueueLength int    `json:"ReservationQueueLength"`
	DueDate                string `json:"DueDate"`
	Shelf                  string `json:"Shelf"`
	Barcode                string `json:"Barcode"`
	PermitLoan             bool   `json:"PermitLoan"`
	LocationID             int    `json:"LocationId"`
}

// GetHolding returns the item-level holdings of one record, sorted by the
// configured organisation priority, with the aggregate summary pseudo-item
// appended last.
func (d *Driver) GetHolding(id string) ([]ils.Holding, error) {
	holdings, err := d.itemStatusesForBiblio(id)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return nil, nil
	}
	return append(holdings, d.holdingsSummary(holdings, id)), nil
}

// GetStatuses returns the item statuses for each record id, without
// summaries.
func (d *Driver) GetStatuses(ids []string) (map[string][]ils.Holding, error) {
	statuses := make(map[string][]ils.Holding, len(ids))
	for _, id := range ids {
		holdings, err := d.itemStatusesForBiblio(id)
		if err != nil {
			return nil, err
		}
		statuses[id] = holdings
	}
	return statuses, nil
}

// statusEntry pairs a holding with the parent unit id it sorts by.
type statusEntry struct {
	holding  ils.Holding
	parentID string
}

func (d *Driver) itemStatusesForBiblio(id string) ([]ils.Holding, error) {
	query := url.Values{"$filter": {"MarcRecordId eq " + id}}
	result, err := getList[catalogueItem](d, "CatalogueItems",
		[]string{"odata", "CatalogueItems"}, query)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	notAllowed := d.cfg.Holds.NotAllowedForHold
	if len(notAllowed) == 0 {
		notAllowed = defaultNotAllowedForHold
	}

	var entries []statusEntry
	for _, item := range result {
		statusCode := itemStatusCode(item.ItemStatus)
		if statusCode == "Withdrawn" {
			continue
		}
		unit, err := d.libraryUnit(item.BelongToUnitID)
		if err != nil {
			return nil, err
		}
		if unit == nil {
			continue
		}

		callNumber := item.Shelf
		number := ""
		if issueNumberPattern.MatchString(callNumber) {
			number = callNumber
			callNumber = ""
		}

		holding := ils.Holding{
			ID:             id,
			ItemID:         strconv.Itoa(item.ID),
			HoldingsID:     unit.Organisation,
			OrganisationID: unit.Organisation,
			BranchID:       strconv.Itoa(unit.Branch),
			Location:       unit.Name,
			Availability:   item.ItemStatus == "AvailableForLoan",
			Status:         statusCode,
			CallNumber:     callNumber,
			DueDate:        dateutil.FormatOData(item.DueDate),
			Barcode:        item.Barcode,
			Number:         number,
			Info: ils.AvailabilityInfo{
				DisplayText:  statusCode,
				Reservations: item.ReservationQueueLength,
			},
		}
		if item.LocationID != 0 {
			department, err := d.department(item.LocationID)
			if err != nil {
				return nil, err
			}
			holding.Department = department
		}
		if !contains(notAllowed, item.ItemStatus) && item.PermitLoan {
			holding.Holdable = true
		} else {
			holding.Status = "On Reference Desk"
			holding.Info.DisplayText = "On Reference Desk"
		}
		entries = append(entries, statusEntry{
			holding:  holding,
			parentID: strconv.Itoa(unit.Parent),
		})
	}

	d.sortStatuses(entries)
	holdings := make([]ils.Holding, 0, len(entries))
	for _, entry := range entries {
		holdings = append(holdings, entry.holding)
	}
	return holdings, nil
}

// sortStatuses orders entries by the parent unit's rank in the configured
// organisation order, ranked before unranked, ties by location label.
func (d *Driver) sortStatuses(entries []statusEntry) {
	rank := make(map[string]int, len(d.cfg.Holdings.OrganisationOrder))
	for i, id := range d.cfg.Holdings.OrganisationOrder {
		rank[id] = i
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ri, oki := rank[entries[i].parentID]
		rj, okj := rank[entries[j].parentID]
		switch {
		case oki && okj:
			if ri != rj {
				return ri < rj
			}
		case oki:
			return true
		case okj:
			return false
		}
		return strings.Compare(entries[i].holding.Location, entries[j].holding.Location) < 0
	})
}

func (d *Driver) holdingsSummary(holdings []ils.Holding, id string) ils.Holding {
	summary := ils.Holding{
		ID:        id,
		Location:  ils.SummaryLocation,
		TitleHold: true,
		Summary:   true,
	}
	locations := map[string]bool{}
	for _, holding := range holdings {
		if holding.Availability {
			summary.Available++
		}
		summary.Ordered += holding.Info.Ordered
		summary.Reservations = holding.Info.Reservations
		locations[holding.Location] = true
		if holding.Holdable {
			summary.Holdable = true
		}
		if holding.Number != "" {
			// Issue-level items force copy-level holds.
			summary.TitleHold = false
		}
		summary.Total++
	}
	summary.Locations = len(locations)
	return summary
}

func contains(list []string, s string) bool {
	for _, entry := range list {
		if entry == s {
			return true
		}
	}
	return false
}
