package mikromarc

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/indexdata/ilsdriver/dateutil"
	"github.com/indexdata/ilsdriver/ils"
)

type borrowerReservation struct {
	ID                   int    `json:"Id"`
	MarcRecordID         int    `json:"MarcRecordId"`
	MarcRecordTitle      string `json:"MarcRecordTitle"`
	ServiceCode          string `json:"ServiceCode"`
	ResActiveToday       bool   `json:"ResActiveToday"`
	ResPausedTo          string `json:"ResPausedTo"`
	ResValidUntil        string `json:"ResValidUntil"`
	ResHeldUntil         string `json:"ResHeldUntil"`
	ResTime              string `json:"ResTime"`
	NumberInQueue        int    `json:"NumberInQueue"`
	Scope                string `json:"Scope"`
	DeliverAtLocalUnitID int    `json:"DeliverAtLocalUnitId"`
}

// GetMyHolds returns the patron's reservations. CancelDetails and
// UpdateDetails carry "requestId|validUntil" tokens; both are empty once
// the hold is on the shelf or being picked.
func (d *Driver) GetMyHolds(patron *ils.Patron) ([]ils.Hold, error) {
	query := url.Values{
		"$filter":  {"BorrowerId eq " + patron.ID},
		"$orderby": {"DeliverAtLocalUnitId"},
	}
	result, err := getList[borrowerReservation](d, "BorrowerReservations",
		[]string{"odata", "BorrowerReservations"}, query)
	if err != nil {
		return nil, err
	}

	holds := make([]ils.Hold, 0, len(result))
	for _, entry := range result {
		available := entry.ServiceCode == "ReservationArrived" ||
			entry.ServiceCode == "ReservationNoticeSent"
		inProcess := entry.ServiceCode == "Picked"
		frozen := !entry.ResActiveToday && !available && !inProcess

		frozenThrough := ""
		if frozen && entry.ResPausedTo != "" && entry.ResPausedTo != entry.ResValidUntil {
			frozenThrough = dateutil.FormatOData(entry.ResPausedTo)
		}

		requestID := strconv.Itoa(entry.ID)
		details := ""
		if !available && !inProcess {
			details = requestID + "|" + entry.ResValidUntil
		}

		position := strconv.Itoa(entry.NumberInQueue)
		if inProcess {
			position = "hold_in_process"
		}

		requestGroup := ""
		if d.cfg.Holds.RequestGroupsEnabled && entry.Scope != "" {
			requestGroup = "mikromarc_" + requestGroupKey(entry.Scope)
		}

		holds = append(holds, ils.Hold{
			ID:             strconv.Itoa(entry.MarcRecordID),
			ItemID:         requestID,
			RequestID:      requestID,
			Title:          entry.MarcRecordTitle,
			Location:       d.unitNameOrEmpty(entry.DeliverAtLocalUnitID),
			Create:         dateutil.FormatOData(entry.ResTime),
			Expire:         dateutil.FormatOData(entry.ResValidUntil),
			LastPickupDate: dateutil.FormatOData(entry.ResHeldUntil),
			Position:       position,
			Available:      available,
			Frozen:         frozen,
			FrozenThrough:  frozenThrough,
			RequestGroup:   requestGroup,
			CancelDetails:  details,
			UpdateDetails:  details,
		})
	}
	return holds, nil
}

func (d *Driver) unitNameOrEmpty(id int) string {
	name, err := d.libraryUnitName(id)
	if err != nil {
		d.logger.Warn("library unit lookup failed", "unit", id, "error", err)
		return ""
	}
	return name
}

// requestGroupKey maps a backend reservation scope back to its public
// request group id, passing unknown scopes through.
func requestGroupKey(scope string) string {
	for key, value := range requestGroupScopes {
		if value == scope {
			return key
		}
	}
	return scope
}

// PlaceHold places a title-level hold. A start date in the future is
// implemented by suspending the fresh reservation until the previous day.
func (d *Driver) PlaceHold(req *ils.HoldRequest) (*ils.Result, error) {
	pickUpLocation := req.PickUpLocation
	if pickUpLocation == "" {
		pickUpLocation = d.cfg.Holds.DefaultPickUpLocation
	}
	groupID := req.RequestGroupID
	if groupID == "" {
		groupID = "regional"
	}
	scope, ok := requestGroupScopes[groupID]
	if !ok {
		return nil, &ils.ConfigError{Field: "requestGroupId", Reason: "unknown request group " + groupID}
	}

	valid, err := d.pickUpLocationIsValid(pickUpLocation, req)
	if err != nil {
		return nil, err
	}
	if !valid {
		return &ils.Result{Success: false, SysMessage: "hold_invalid_pickup"}, nil
	}

	body := map[string]any{
		"BorrowerId":      intID(req.Patron.ID),
		"MarcId":          intID(req.RecordID),
		"DeliverAtUnitId": intID(pickUpLocation),
		"Scope":           scope,
	}
	code, raw, oerr, err := d.send("Default.Create", http.MethodPost,
		[]string{"odata", "BorrowerReservations", "Default.Create"}, body)
	if err != nil {
		return nil, err
	}
	if code >= 300 {
		return &ils.Result{Success: false, SysMessage: convertError(oerr)}, nil
	}

	if req.StartDate != 0 {
		var created borrowerReservation
		_ = json.Unmarshal(raw, &created)
		suspend := map[string]any{
			"ResPausedFrom": time.Now().Format(dateutil.DisplayLayout),
			"ResPausedTo": time.Unix(req.StartDate, 0).
				AddDate(0, 0, -1).Format(dateutil.DisplayLayout),
		}
		code, _, _, err := d.send("BorrowerReservations", http.MethodPatch,
			[]string{"odata", "BorrowerReservations(" + strconv.Itoa(created.ID) + ")"}, suspend)
		if err != nil {
			return nil, err
		}
		if code >= 300 {
			// The hold exists; only the deferred start failed.
			return &ils.Result{Success: true, WarningMessage: "hold_error_update_failed"}, nil
		}
	}
	return &ils.Result{Success: true}, nil
}

func (d *Driver) pickUpLocationIsValid(pickUpLocation string, req *ils.HoldRequest) (bool, error) {
	locations, err := d.GetPickUpLocations(req.Patron, req)
	if err != nil {
		return false, err
	}
	for _, location := range locations {
		if location.ID == pickUpLocation {
			return true, nil
		}
	}
	return false, nil
}

// CancelHolds deletes each reservation in turn. Count reports the number of
// successful cancellations.
func (d *Driver) CancelHolds(patron *ils.Patron, cancelIDs []string) (*ils.BatchResult, error) {
	result := &ils.BatchResult{Items: make(map[string]ils.ItemResult, len(cancelIDs))}
	for _, token := range cancelIDs {
		requestID, _, _ := strings.Cut(token, "|")
		code, _, _, err := d.send("BorrowerReservations", http.MethodDelete,
			[]string{"odata", "BorrowerReservations(" + requestID + ")"}, nil)
		if err != nil {
			return nil, err
		}
		if code != http.StatusNoContent {
			result.Items[requestID] = ils.ItemResult{
				ItemID:  requestID,
				Success: false,
				Status:  "hold_cancel_fail",
			}
			continue
		}
		result.Items[requestID] = ils.ItemResult{
			ItemID:  requestID,
			Success: true,
			Status:  "hold_cancel_success",
		}
		result.Count++
	}
	return result, nil
}

// UpdateHolds applies the update to each reservation. Freezing suspends
// from today through the frozen-through date, or through the reservation's
// own expiry when none is given; unfreezing clears both pause dates.
func (d *Driver) UpdateHolds(patron *ils.Patron, updateIDs []string, update ils.HoldUpdate) (map[string]ils.Result, error) {
	results := make(map[string]ils.Result, len(updateIDs))
	for _, token := range updateIDs {
		requestID, validUntil, _ := strings.Cut(token, "|")
		fields := map[string]any{}

		if update.Frozen != nil {
			if *update.Frozen {
				fields["ResPausedFrom"] = time.Now().Format(dateutil.DisplayLayout)
				if update.FrozenThrough != 0 {
					fields["ResPausedTo"] = time.Unix(update.FrozenThrough, 0).
						Format(dateutil.DisplayLayout)
				} else {
					fields["ResPausedTo"] = validUntil
				}
			} else {
				fields["ResPausedFrom"] = nil
				fields["ResPausedTo"] = nil
			}
		}
		if update.PickUpLocation != "" {
			fields["DeliverAtLocalUnitId"] = intID(update.PickUpLocation)
		}

		code, _, oerr, err := d.send("BorrowerReservations", http.MethodPatch,
			[]string{"odata", "BorrowerReservations(" + requestID + ")"}, fields)
		if err != nil {
			return nil, err
		}
		if code >= 300 {
			results[requestID] = ils.Result{Success: false, Status: convertError(oerr)}
			continue
		}
		results[requestID] = ils.Result{Success: true}
	}
	return results, nil
}

// GetPickUpLocations lists the pickup-capable library units: departments
// and excluded units are left out, the rest order by the configured
// priority and then by name.
func (d *Driver) GetPickUpLocations(patron *ils.Patron, req *ils.HoldRequest) ([]ils.Location, error) {
	units, err := d.libraryUnits()
	if err != nil {
		return nil, err
	}
	locations := make([]ils.Location, 0, len(units))
	for id, unit := range units {
		if unit.Department || contains(d.cfg.Holds.ExcludedPickUpLocations, strconv.Itoa(id)) {
			continue
		}
		locations = append(locations, ils.Location{
			ID:      strconv.Itoa(id),
			Display: unit.Name,
		})
	}
	d.sorter.SortPickUpLocations(locations, d.cfg.Holds.PickUpLocationOrder)
	return locations, nil
}

func (d *Driver) GetDefaultPickUpLocation(patron *ils.Patron) (string, error) {
	return d.cfg.Holds.DefaultPickUpLocation, nil
}

func (d *Driver) GetRequestGroups(recordID string, patron *ils.Patron) ([]ils.RequestGroup, error) {
	return []ils.RequestGroup{
		{ID: "normal", Name: "mikromarc_normal"},
		{ID: "regional", Name: "mikromarc_regional"},
	}, nil
}

func (d *Driver) GetDefaultRequestGroup(patron *ils.Patron) (string, error) {
	return d.cfg.Holds.DefaultRequestGroup, nil
}
