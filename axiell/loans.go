package axiell

import (
	"sort"
	"strings"
	"time"

	"github.com/indexdata/ilsdriver/dateutil"
	"github.com/indexdata/ilsdriver/ils"
)

// GetMyTransactions returns the patron's current loans sorted by due date.
func (d *Driver) GetMyTransactions(patron *ils.Patron) ([]ils.Loan, error) {
	const op = "GetLoans"
	req := getLoansRequest{Param: patronAuthParams{
		ArenaMember: d.cfg.ArenaMember,
		User:        patron.Username,
		Password:    patron.Password,
		Language:    d.language(),
	}}
	var res getLoansResponse
	st, err := d.call(d.loans, op, req, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, patron.Username); err != nil {
			return nil, err
		}
		return nil, nil
	}

	now := time.Now()
	loans := make([]ils.Loan, 0, len(res.Result.Loans.Loan))
	for _, entry := range res.Result.Loans.Loan {
		title := entry.CatalogueRecord.Title
		if entry.Note != "" {
			title += " (" + entry.Note + ")"
		}

		message := ""
		if entry.LoanStatus.Status != "" {
			message = mapStatus(entry.LoanStatus.Status, op)
		}

		item := ils.Loan{
			ID:        entry.CatalogueRecord.ID,
			ItemID:    entry.ID,
			Title:     title,
			DueDate:   entry.LoanDueDate,
			Renewable: entry.LoanStatus.IsRenewable == "yes",
			Message:   message,
		}
		switch {
		case permanentRenewalBlocks[entry.LoanStatus.Status]:
			// Renewal counters are meaningless for these.
		case d.cfg.Loans.RenewalLimit > 0:
			item.RenewalLimit = d.cfg.Loans.RenewalLimit
			item.RenewalCount = max(0, d.cfg.Loans.RenewalLimit-entry.RemainingRenewals)
			item.HasRenewals = true
		case entry.RemainingRenewals > 0:
			item.RenewLimit = entry.RemainingRenewals
			item.HasRenewals = true
		}

		if due, err := dateutil.ParseAxiell(entry.LoanDueDate); err == nil {
			item.DueStatus = ils.DueStatus(dateutil.DueStatus(due, now))
		}
		loans = append(loans, item)
	}

	sort.SliceStable(loans, func(i, j int) bool {
		return loans[i].DueDate < loans[j].DueDate
	})
	for i := range loans {
		loans[i].DueDate = dateutil.FormatAxiell(loans[i].DueDate)
	}
	return loans, nil
}

// GetMyTransactionHistory returns one page of the patron's loan history.
// Requires the aurora loans service.
func (d *Driver) GetMyTransactionHistory(patron *ils.Patron, params *ils.HistoryParams) (*ils.TransactionHistory, error) {
	if d.loansAurora == nil {
		return nil, &ils.ConfigError{Field: "loansAuroraURL", Reason: "required for loan history"}
	}
	sortField, sortDir := historySort(params)
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	start := 0
	if params.Page > 1 {
		start = (params.Page - 1) * pageSize
	}

	const op = "GetLoanHistory"
	req := loanHistoryRequest{Param: loanHistoryParam{
		ArenaMember:   d.cfg.ArenaMember,
		Language:      d.language(),
		PatronID:      patron.PatronID,
		Start:         start,
		Count:         pageSize,
		SortField:     sortField,
		SortDirection: sortDir,
	}}
	var res loanHistoryResponse
	st, err := d.call(d.loansAurora, op, req, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, patron.Username); err != nil {
			return nil, err
		}
		return &ils.TransactionHistory{}, nil
	}

	history := &ils.TransactionHistory{
		Count: res.Result.LoanHistoryItems.TotalCount,
	}
	for _, item := range res.Result.LoanHistoryItems.LoanHistoryItem {
		title := item.CatalogueRecord.Title
		if item.Note != "" {
			title += " (" + item.Note + ")"
		}
		returnDate := ""
		if item.CheckInDate != "" {
			returnDate = dateutil.FormatAxiell(item.CheckInDate)
		}
		history.Transactions = append(history.Transactions, ils.HistoryLoan{
			ID:              item.CatalogueRecord.ID,
			Title:           title,
			CheckoutDate:    dateutil.FormatAxiell(item.CheckOutDate),
			ReturnDate:      returnDate,
			PublicationYear: item.CatalogueRecord.PublicationYear,
			Volume:          item.CatalogueRecord.Volume,
		})
	}
	return history, nil
}

func historySort(params *ils.HistoryParams) (field, direction string) {
	field, direction = "CHECK_OUT_DATE", "DESCENDING"
	if params == nil || params.Sort == "" {
		return field, direction
	}
	parts := strings.SplitN(params.Sort, " ", 2)
	field = parts[0]
	if len(parts) > 1 {
		direction = parts[1]
	}
	return field, direction
}

// RenewMyItems renews the given loans in one backend call and reports the
// outcome per loan.
func (d *Driver) RenewMyItems(patron *ils.Patron, renewIDs []string) (*ils.BatchResult, error) {
	const op = "RenewLoans"
	req := renewLoansRequest{Param: renewLoansParam{
		ArenaMember: d.cfg.ArenaMember,
		User:        patron.Username,
		Password:    patron.Password,
		Language:    "en",
		Loans:       renewIDs,
	}}
	var res renewLoansResponse
	st, err := d.call(d.loans, op, req, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, patron.Username); err != nil {
			return nil, err
		}
	}

	result := &ils.BatchResult{Items: map[string]ils.ItemResult{}}
	for _, entry := range res.Result.Loans.Loan {
		status := entry.LoanStatus.Status
		success := status == "isRenewedToday"
		display := "Renewal failed"
		if success {
			display = "Loan renewed"
			result.Count++
		}
		result.Items[entry.ID] = ils.ItemResult{
			ItemID:     entry.ID,
			Success:    success,
			Status:     display,
			SysMessage: mapStatus(status, op),
			NewDate:    dateutil.FormatAxiell(entry.LoanDueDate),
		}
	}
	return result, nil
}
