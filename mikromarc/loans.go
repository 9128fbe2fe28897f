package mikromarc

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/indexdata/ilsdriver/dateutil"
	"github.com/indexdata/ilsdriver/ils"
)

type borrowerLoan struct {
	ID              int    `json:"Id"`
	ItemID          int    `json:"ItemId"`
	MarcRecordID    int    `json:"MarcRecordId"`
	MarcRecordTitle string `json:"MarcRecordTitle"`
	DueTime         string `json:"DueTime"`
	RenewalCount    int    `json:"RenewalCount"`
	Notes           string `json:"Notes"`
	ServiceCode     string `json:"ServiceCode"`
}

// GetMyTransactions returns the patron's current loans. Renewability is
// accounted against the configured renewal limit.
func (d *Driver) GetMyTransactions(patron *ils.Patron) ([]ils.Loan, error) {
	query := url.Values{"$filter": {"BorrowerId eq " + patron.ID}}
	result, err := getList[borrowerLoan](d, "BorrowerLoans",
		[]string{"odata", "BorrowerLoans"}, query)
	if err != nil {
		return nil, err
	}

	renewLimit := d.cfg.Loans.RenewalLimit
	now := time.Now()

	loans := make([]ils.Loan, 0, len(result))
	for _, entry := range result {
		due, dueErr := dateutil.ParseOData(entry.DueTime)
		if dueErr == nil && len(entry.DueTime) == 10 {
			due = dateutil.EndOfDay(due)
		}
		var dueStatus ils.DueStatus
		var dueDate string
		if dueErr == nil {
			dueDate = due.Format(dateutil.DisplayLayout)
			switch {
			case now.After(due):
				dueStatus = ils.DueStatusOverdue
			case due.Sub(now) < 24*time.Hour:
				dueStatus = ils.DueStatusDue
			}
		}
		loans = append(loans, ils.Loan{
			ID:           strconv.Itoa(entry.MarcRecordID),
			CheckoutID:   strconv.Itoa(entry.ID),
			ItemID:       strconv.Itoa(entry.ItemID),
			Title:        entry.MarcRecordTitle,
			DueDate:      dueDate,
			DueStatus:    dueStatus,
			RenewalCount: entry.RenewalCount,
			RenewalLimit: renewLimit,
			Renewable:    renewLimit-entry.RenewalCount > 0,
			Message:      entry.Notes,
		})
	}
	return loans, nil
}

// RenewMyItems renews each checkout id in turn. Failures never abort the
// batch; backend denials above plain conflicts are surfaced as blocks.
func (d *Driver) RenewMyItems(patron *ils.Patron, renewIDs []string) (*ils.BatchResult, error) {
	result := &ils.BatchResult{Items: make(map[string]ils.ItemResult, len(renewIDs))}
	for _, id := range renewIDs {
		code, raw, oerr, err := d.send("Default.RenewLoan", http.MethodPost,
			[]string{"odata", "BorrowerLoans(" + id + ")", "Default.RenewLoan"}, nil)
		if err != nil {
			return nil, err
		}
		var loan borrowerLoan
		if code == http.StatusOK {
			_ = json.Unmarshal(raw, &loan)
		}
		if code != http.StatusOK || loan.ServiceCode != "LoanRenewed" {
			message := convertError(oerr)
			result.Items[id] = ils.ItemResult{
				ItemID:     id,
				Success:    false,
				SysMessage: message,
			}
			if code > http.StatusNoContent && !contains(result.Blocks, message) {
				result.Blocks = append(result.Blocks, message)
			}
			continue
		}
		result.Items[id] = ils.ItemResult{
			ItemID:  id,
			Success: true,
			NewDate: dateutil.FormatOData(loan.DueTime),
		}
		result.Count++
	}
	return result, nil
}

type borrowerServiceHistory struct {
	ServiceID       int    `json:"ServiceId"`
	ServiceCode     string `json:"ServiceCode"`
	ServiceTime     string `json:"ServiceTime"`
	MarcRecordID    int    `json:"MarcRecordId"`
	MarcRecordTitle string `json:"MarcRecordTitle"`
}

// serviceCodeDates maps history event codes to the loan date they fill.
var serviceCodeDates = map[string]string{
	"Returned":    "return",
	"OnLoan":      "checkout",
	"LoanRenewed": "checkout",
}

type historyEntry struct {
	loan     ils.HistoryLoan
	checkout time.Time
	returned time.Time
}

// GetMyTransactionHistory returns the patron's past loans, grouped by
// service id and sorted per the requested order. Patrons who have not
// opted in to history storage get an empty page.
func (d *Driver) GetMyTransactionHistory(patron *ils.Patron, params *ils.HistoryParams) (*ils.TransactionHistory, error) {
	profile, err := d.fetchProfile(patron)
	if err != nil {
		return nil, err
	}
	if !profile.LoanHistory {
		return &ils.TransactionHistory{Transactions: []ils.HistoryLoan{}}, nil
	}

	query := url.Values{"$filter": {"BorrowerId eq " + patron.ID}}
	result, err := getList[borrowerServiceHistory](d, "BorrowerServiceHistories",
		[]string{"odata", "BorrowerServiceHistories"}, query)
	if err != nil {
		return nil, err
	}

	grouped := map[int]*historyEntry{}
	var order []int
	for _, event := range result {
		dateField, ok := serviceCodeDates[event.ServiceCode]
		if !ok {
			continue
		}
		entry := grouped[event.ServiceID]
		if entry == nil {
			entry = &historyEntry{loan: ils.HistoryLoan{
				ID:    strconv.Itoa(event.MarcRecordID),
				Title: event.MarcRecordTitle,
			}}
			grouped[event.ServiceID] = entry
			order = append(order, event.ServiceID)
		}
		when, whenErr := dateutil.ParseOData(event.ServiceTime)
		if whenErr != nil {
			continue
		}
		if dateField == "return" {
			entry.returned = when
			entry.loan.ReturnDate = when.Format(dateutil.DisplayLayout)
		} else {
			entry.checkout = when
			entry.loan.CheckoutDate = when.Format(dateutil.DisplayLayout)
		}
	}

	entries := make([]*historyEntry, 0, len(grouped))
	for _, id := range order {
		entries = append(entries, grouped[id])
	}
	d.sortHistory(entries, params)

	transactions := make([]ils.HistoryLoan, 0, len(entries))
	for _, entry := range entries {
		transactions = append(transactions, entry.loan)
	}
	return &ils.TransactionHistory{
		Count:        len(transactions),
		Transactions: transactions,
	}, nil
}

func (d *Driver) sortHistory(entries []*historyEntry, params *ils.HistoryParams) {
	field, direction := "checkout", "asc"
	if params != nil && params.Sort != "" {
		parts := strings.Fields(params.Sort)
		field = parts[0]
		if len(parts) > 1 {
			direction = parts[1]
		}
	}
	asc := direction == "asc"
	sort.SliceStable(entries, func(i, j int) bool {
		res := 0
		switch field {
		case "checkout":
			res = compareTimes(entries[i].checkout, entries[j].checkout)
		case "return":
			res = compareTimes(entries[i].returned, entries[j].returned)
		}
		if res == 0 {
			res = d.sorter.Compare(entries[i].loan.Title, entries[j].loan.Title)
		}
		if asc {
			return res < 0
		}
		return res > 0
	})
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
