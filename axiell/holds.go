package axiell

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/indexdata/ilsdriver/dateutil"
	"github.com/indexdata/ilsdriver/ils"
)

// GetMyHolds returns the patron's reservations sorted by title. The
// CancelDetails and UpdateDetails tokens encode everything a later cancel
// or update call needs.
func (d *Driver) GetMyHolds(patron *ils.Patron) ([]ils.Hold, error) {
	const op = "getReservations"
	req := getReservationsRequest{Param: patronAuthParams{
		ArenaMember: d.cfg.ArenaMember,
		User:        patron.Username,
		Password:    patron.Password,
		Language:    d.language(),
	}}
	var res getReservationsResponse
	st, err := d.call(d.reservations, op, req, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, patron.Username); err != nil {
			return nil, err
		}
		return nil, nil
	}

	today := time.Now().Format(dateutil.DisplayLayout)
	holds := make([]ils.Hold, 0, len(res.Result.Reservations.Reservation))
	for _, r := range res.Result.Reservations.Reservation {
		expireDate := r.ValidToDate
		if r.ReservationStatus == "fetchable" {
			expireDate = r.PickUpExpireDate
		}
		title := r.CatalogueRecord.Title
		if r.Note != "" {
			title += " (" + r.Note + ")"
		}

		details := strings.Join([]string{
			r.ID, r.ValidFromDate, r.ValidToDate, r.PickUpBranchID}, "|")
		updateDetails := ""
		cancelDetails := ""
		// Regional holds report isEditable "no" even when they are
		// editable, so fall back to isDeletable for them.
		if yes(r.IsEditable) || (r.ReservationType == "regional" && yes(r.IsDeletable)) {
			updateDetails = details
		}
		if yes(r.IsDeletable) {
			cancelDetails = details
		}

		frozen := r.ValidFromDate > today
		frozenThrough := ""
		if frozen && r.ValidFromDate != r.ValidToDate {
			if from, err := dateutil.ParseAxiell(r.ValidFromDate); err == nil {
				frozenThrough = from.AddDate(0, 0, -1).Format(dateutil.DisplayLayout)
			}
		}

		position := r.QueueNo
		if position == "" {
			position = "-"
		}

		hold := ils.Hold{
			ID:            r.CatalogueRecord.ID,
			RequestID:     r.ID,
			Title:         title,
			Type:          r.ReservationStatus,
			Location:      r.PickUpBranchID,
			PickupNumber:  r.PickUpNo,
			Create:        dateutil.FormatAxiell(r.CreateDate),
			Expire:        dateutil.FormatAxiell(expireDate),
			Position:      position,
			Available:     r.ReservationStatus == "fetchable",
			InTransit:     r.ReservationStatus == "inTransit",
			Frozen:        frozen,
			FrozenThrough: frozenThrough,
			Organisation:  r.OrganisationID,
			CancelDetails: cancelDetails,
			UpdateDetails: updateDetails,
			Volume:        r.CatalogueRecord.Volume,
			PubYear:       r.CatalogueRecord.PublicationYear,
		}
		if d.cfg.Holds.RequestGroupsEnabled && r.ReservationType != "" {
			hold.RequestGroup = "axiell_" + r.ReservationType
			hold.RequestGroupID = r.ReservationType
		}
		holds = append(holds, hold)
	}

	sort.SliceStable(holds, func(i, j int) bool {
		return holds[i].Title < holds[j].Title
	})
	return holds, nil
}

// holdType resolves the reservation type for a hold request.
func (d *Driver) holdType(requestGroupID string) string {
	if d.cfg.Holds.RequestGroupsEnabled && requestGroupID != "" {
		return requestGroupID
	}
	if d.cfg.Holds.RegionalHold {
		return "regional"
	}
	return "normal"
}

// defaultRequiredByDate applies the configured "days:months:years" offset
// to today.
func (d *Driver) defaultRequiredByDate() time.Time {
	days, months, years := 0, 1, 0
	if d.cfg.Holds.DefaultRequiredDate != "" {
		parts := strings.Split(d.cfg.Holds.DefaultRequiredDate, ":")
		if len(parts) == 3 {
			days, _ = strconv.Atoi(parts[0])
			months, _ = strconv.Atoi(parts[1])
			years, _ = strconv.Atoi(parts[2])
		}
	}
	return time.Now().AddDate(years, months, days)
}

// PlaceHold places a reservation on an item or on the whole record.
func (d *Driver) PlaceHold(holdReq *ils.HoldRequest) (*ils.Result, error) {
	entityID := holdReq.RecordID
	source := "catalogueRecordDetail"
	if holdReq.ItemID != "" {
		entityID = holdReq.ItemID
		source = "holdings"
	}

	validFromDate := time.Now().Format(dateutil.DisplayLayout)
	if holdReq.StartDate > 0 {
		validFromDate = time.Unix(holdReq.StartDate, 0).Format(dateutil.DisplayLayout)
	}
	validToDate := d.defaultRequiredByDate().Format(dateutil.DisplayLayout)
	if holdReq.RequiredBy > 0 {
		validToDate = time.Unix(holdReq.RequiredBy, 0).Format(dateutil.DisplayLayout)
	}

	organisation, branch, ok := strings.Cut(holdReq.PickUpLocation, ".")
	if !ok {
		return nil, &ils.ConfigError{Field: "pickUpLocation", Reason: "must be organisation.branch"}
	}

	const op = "addReservation"
	req := addReservationRequest{Param: addReservationParam{
		ArenaMember:         d.cfg.ArenaMember,
		User:                holdReq.Patron.Username,
		Password:            holdReq.Patron.Password,
		Language:            "en",
		ReservationEntities: entityID,
		ReservationSource:   source,
		ReservationType:     d.holdType(holdReq.RequestGroupID),
		OrganisationID:      organisation,
		PickUpBranchID:      branch,
		ValidFromDate:       validFromDate,
		ValidToDate:         validToDate,
	}}
	var res addReservationResponse
	st, err := d.call(d.reservations, op, req, &res, holdReq.Patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		msg, err := d.handleError(op, st, holdReq.Patron.Username)
		if err != nil {
			return nil, err
		}
		return &ils.Result{Success: false, SysMessage: msg}, nil
	}
	return &ils.Result{Success: true}, nil
}

// CancelHolds cancels each reservation independently; a failed cancel does
// not stop the remaining ones.
func (d *Driver) CancelHolds(patron *ils.Patron, cancelIDs []string) (*ils.BatchResult, error) {
	const op = "removeReservation"
	result := &ils.BatchResult{Items: map[string]ils.ItemResult{}}
	for _, details := range cancelIDs {
		id, _, _ := strings.Cut(details, "|")
		req := removeReservationRequest{Param: removeReservationParam{
			ArenaMember: d.cfg.ArenaMember,
			User:        patron.Username,
			Password:    patron.Password,
			Language:    "en",
			ID:          id,
		}}
		var res removeReservationResponse
		st, err := d.call(d.reservations, op, req, &res, patron.Username)
		if err != nil {
			return nil, err
		}
		if st.Type != "ok" {
			if _, err := d.handleError(op, st, patron.Username); err != nil {
				return nil, err
			}
			result.Items[id] = ils.ItemResult{
				ItemID:     id,
				Success:    false,
				Status:     "hold_cancel_fail",
				SysMessage: statusDetail(st),
			}
		} else {
			result.Items[id] = ils.ItemResult{
				ItemID:  id,
				Success: true,
				Status:  "hold_cancel_success",
			}
		}
		result.Count++
	}
	return result, nil
}

// UpdateHolds applies the requested changes to each reservation token
// independently.
func (d *Driver) UpdateHolds(patron *ils.Patron, updateIDs []string, update ils.HoldUpdate) (map[string]ils.Result, error) {
	const op = "changeReservation"
	results := map[string]ils.Result{}
	for _, details := range updateIDs {
		parts := strings.Split(details, "|")
		if len(parts) != 4 {
			results[details] = ils.Result{Success: false, Status: "hold_error_update_failed"}
			continue
		}
		requestID, validFromDate, validToDate, pickupBranch := parts[0], parts[1], parts[2], parts[3]

		if update.RequiredBy > 0 {
			validToDate = time.Unix(update.RequiredBy, 0).Format(dateutil.DisplayLayout)
		}
		if update.Frozen != nil {
			if *update.Frozen {
				if update.FrozenThrough > 0 {
					validFromDate = time.Unix(update.FrozenThrough, 0).
						AddDate(0, 0, 1).Format(dateutil.DisplayLayout)
				} else {
					validFromDate = validToDate
				}
			} else {
				validFromDate = time.Now().Format(dateutil.DisplayLayout)
			}
		} else if validFromDate > validToDate {
			validFromDate = validToDate
		}
		if update.PickUpLocation != "" {
			if _, branch, ok := strings.Cut(update.PickUpLocation, "."); ok {
				pickupBranch = branch
			}
		}

		req := changeReservationRequest{Param: changeReservationParam{
			ArenaMember:    d.cfg.ArenaMember,
			User:           patron.Username,
			Password:       patron.Password,
			Language:       "en",
			ID:             requestID,
			PickUpBranchID: pickupBranch,
			ValidFromDate:  validFromDate,
			ValidToDate:    validToDate,
		}}
		var res changeReservationResponse
		st, err := d.call(d.reservations, op, req, &res, patron.Username)
		if err != nil {
			return nil, err
		}
		if st.Type != "ok" {
			msg, err := d.handleError(op, st, patron.Username)
			if err != nil {
				return nil, err
			}
			results[requestID] = ils.Result{Success: false, Status: msg}
		} else {
			results[requestID] = ils.Result{Success: true}
		}
	}
	return results, nil
}

// GetPickUpLocations lists the branches accepting the hold, ordered by the
// configured priority. When an item-level query returns nothing the lookup
// retries at the record level, which covers branches holding only ordered
// items.
func (d *Driver) GetPickUpLocations(patron *ils.Patron, holdReq *ils.HoldRequest) ([]ils.Location, error) {
	holdType := d.holdType(holdReq.RequestGroupID)
	entityID := holdReq.RecordID
	if holdReq.ItemID != "" {
		entityID = holdReq.ItemID
	}

	const op = "getReservationBranches"
	req := reservationBranchesRequest{Param: reservationBranchesParam{
		ArenaMember:         d.cfg.ArenaMember,
		User:                patron.Username,
		Password:            patron.Password,
		Language:            d.language(),
		Country:             "FI",
		ReservationEntities: entityID,
		ReservationType:     holdType,
	}}
	var res reservationBranchesResponse
	st, err := d.call(d.reservations, op, req, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, patron.Username); err != nil {
			return nil, err
		}
		return nil, nil
	}

	organisations := res.Result.Organisations.Organisation
	if len(organisations) == 0 {
		if holdReq.ItemID != "" {
			retry := *holdReq
			retry.ItemID = ""
			return d.GetPickUpLocations(patron, &retry)
		}
		return nil, nil
	}

	limitToCurrent := !d.cfg.Holds.SingleReservationQueue
	if v := d.cfg.Holds.LimitPickUpLocationChangeToCurrentOrganisation; v != nil {
		limitToCurrent = *v
	}

	excluded := d.cfg.Holds.ExcludedPickUpLocations[holdType]
	var locations []ils.Location
	for _, organisation := range organisations {
		if contains(excluded.Organisations, organisation.ID) {
			continue
		}
		// Regional holds may always move across organisations.
		if limitToCurrent && holdType != "regional" &&
			holdReq.Organisation != "" && organisation.Name != holdReq.Organisation {
			continue
		}
		for _, branch := range organisation.Branches.Branch {
			locationID := organisation.ID + "." + branch.ID
			if contains(excluded.Units, locationID) {
				continue
			}
			locations = append(locations, ils.Location{
				ID:      locationID,
				Display: branch.Name,
			})
		}
	}
	d.sorter.SortPickUpLocations(locations, d.cfg.Holds.PickUpLocationOrder)
	return locations, nil
}

// GetDefaultPickUpLocation returns the configured default, empty when the
// patron has to choose.
func (d *Driver) GetDefaultPickUpLocation(patron *ils.Patron) (string, error) {
	return d.cfg.Holds.DefaultPickUpLocation, nil
}

// GetRequestGroups lists the hold scopes when request groups are enabled.
func (d *Driver) GetRequestGroups(recordID string, patron *ils.Patron) ([]ils.RequestGroup, error) {
	if !d.cfg.Holds.RequestGroupsEnabled {
		return nil, nil
	}
	return []ils.RequestGroup{
		{ID: "normal", Name: "axiell_normal"},
		{ID: "regional", Name: "axiell_regional"},
	}, nil
}

func (d *Driver) GetDefaultRequestGroup(patron *ils.Patron) (string, error) {
	return d.cfg.Holds.DefaultRequestGroup, nil
}

func contains(list []string, s string) bool {
	for _, entry := range list {
		if entry == s {
			return true
		}
	}
	return false
}
