package axiell

import (
	"github.com/indexdata/ilsdriver/dateutil"
	"github.com/indexdata/ilsdriver/ils"
)

// GetHolding returns the item-level holdings of one record, sorted by the
// configured organisation and branch priority, with the aggregate summary
// pseudo-item appended last.
func (d *Driver) GetHolding(id string) ([]ils.Holding, error) {
	const op = "GetHoldings"
	req := getHoldingsRequest{Request: getHoldingsParams{
		ArenaMember: d.cfg.ArenaMember,
		ID:          id,
		Language:    d.language(),
	}}
	var res getHoldingsResponse
	st, err := d.call(d.catalogue, op, req, &res, id)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, id); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if res.Result.CatalogueRecord == nil {
		return nil, nil
	}

	composites := res.Result.CatalogueRecord.CompositeHoldings
	if len(composites) == 0 {
		return nil, nil
	}

	var result []ils.Holding
	if composites[0].Type == "year" {
		for _, yearHolding := range composites {
			year := yearHolding.Value
			for _, editionHolding := range yearHolding.CompositeHoldings {
				info := &ils.JournalInfo{
					Year:    year,
					Edition: editionHolding.Value,
				}
				result = append(result,
					d.parseHoldings(editionHolding.CompositeHoldings, id, info)...)
			}
		}
	} else {
		result = d.parseHoldings(composites, id, nil)
	}

	if len(result) == 0 {
		return result, nil
	}
	d.sorter.Sort(result)
	result = append(result, d.holdingsSummary(result, id))
	return result, nil
}

// GetStatuses returns the holdings for each record id.
func (d *Driver) GetStatuses(ids []string) (map[string][]ils.Holding, error) {
	statuses := make(map[string][]ils.Holding, len(ids))
	for _, id := range ids {
		holdings, err := d.GetHolding(id)
		if err != nil {
			return nil, err
		}
		statuses[id] = holdings
	}
	return statuses, nil
}

func (d *Driver) parseHoldings(organisations []compositeHolding, id string, journal *ils.JournalInfo) []ils.Holding {
	if len(organisations) == 0 || organisations[0].Status == "noHolding" ||
		organisations[0].Type != "organisation" {
		return nil
	}

	var result []ils.Holding
	for _, organisation := range organisations {
		group := organisation.Value
		for _, branch := range organisation.CompositeHoldings {
			if branch.Type != "branch" {
				continue
			}
			holdable := branch.ReservationButtonStatus == "reservationOk"
			for _, department := range branch.Holdings.Holding {
				dueDate := ""
				if department.FirstLoanDueDate != "" {
					dueDate = dateutil.FormatAxiell(department.FirstLoanDueDate)
				}
				departmentName := department.Department
				if department.Location != "" {
					departmentName += ", " + department.Location
				}

				var journalInfo *ils.JournalInfo
				if journal != nil {
					// Journals group and label by issue instead of by
					// organisation.
					switch {
					case journal.Year != "" && journal.Edition != "":
						if len(journal.Edition) >= len(journal.Year) &&
							journal.Edition[:len(journal.Year)] == journal.Year {
							group = journal.Edition
						} else {
							group = journal.Year + ", " + journal.Edition
						}
					default:
						group = journal.Year + journal.Edition
					}
					journalInfo = &ils.JournalInfo{
						Year:     journal.Year,
						Edition:  journal.Edition,
						Location: organisation.Value,
					}
				}

				status := department.Status
				available := status == "availableForLoan" || status == "returnedToday"
				if status == "nonAvailableForLoan" && department.NofReference != 0 {
					status = "onRefDesk"
					available = true
				}
				if mapped, ok := itemStatuses[status]; ok {
					status = mapped
				} else {
					d.logger.Debug("unhandled item status", "status", status, "id", id)
				}

				requests := 0
				if !d.cfg.Holds.SingleReservationQueue {
					requests = branch.NofReservations
				}

				result = append(result, ils.Holding{
					ID:             id,
					Barcode:        id,
					ItemID:         branch.Reservable,
					HoldingsID:     group,
					OrganisationID: organisation.ID,
					BranchID:       branch.ID,
					Branch:         branch.Value,
					Department:     departmentName,
					Location:       group,
					Status:         status,
					Availability:   available,
					DueDate:        dueDate,
					CallNumber:     department.ShelfMark,
					Holdable:       holdable,
					RequestsPlaced: requests,
					Journal:        journalInfo,
					Info: ils.AvailabilityInfo{
						Available:    department.NofAvailableForLoan,
						Ordered:      department.NofOrdered,
						Total:        department.NofTotal,
						Reservations: branch.NofReservations,
						DisplayText:  status,
					},
				})
			}
		}
	}
	return result
}

// holdingsSummary aggregates the parsed holdings into the trailing summary
// pseudo-item. Ordered items are excluded from the total since they are not
// yet part of the collection.
func (d *Driver) holdingsSummary(holdings []ils.Holding, id string) ils.Holding {
	var available, total, ordered, reservations int
	journal := holdings[0].Journal != nil
	locations := map[string]bool{}
	isHoldable := false
	for _, item := range holdings {
		if item.Availability {
			available++
		}
		if item.Info.Total != nil {
			total += *item.Info.Total
		} else {
			total++
		}
		ordered += item.Info.Ordered
		if d.cfg.Holds.SingleReservationQueue && item.Info.Reservations > reservations {
			reservations = item.Info.Reservations
		}
		locations[item.Location] = true
		if !journal && item.Holdable {
			isHoldable = true
		}
	}
	return ils.Holding{
		ID:           id,
		Location:     ils.SummaryLocation,
		Available:    available,
		Ordered:      ordered,
		Total:        total - ordered,
		Reservations: reservations,
		Locations:    len(locations),
		Holdable:     isHoldable,
		Summary:      true,
	}
}
