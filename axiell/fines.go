package axiell

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/indexdata/ilsdriver/dateutil"
	"github.com/indexdata/ilsdriver/ils"
)

// debtsFromDate predates any real debt; the backend requires a lower bound.
const debtsFromDate = "1699-12-31"

var amountPattern = regexp.MustCompile(`([\d.,-]+)`)

// parseAmount extracts an amount in minor currency units from a localized
// formatted string like "3,50 EUR".
func parseAmount(formatted string) int64 {
	m := amountPattern.FindString(formatted)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(v * 100))
}

// payableThreshold returns the oldest debt date still payable online.
func (d *Driver) payableThreshold() time.Time {
	if s := d.cfg.OnlinePayment.PayableFineDateThreshold; s != "" {
		if t, err := time.Parse(dateutil.DisplayLayout, s); err == nil {
			return t
		}
	}
	return time.Now().AddDate(-5, 0, 0)
}

// blockedDescription checks the description against the configured
// non-payable list; entries wrapped in slashes are regular expressions.
func (d *Driver) blockedDescription(description string) bool {
	for _, entry := range d.cfg.OnlinePayment.NonPayable {
		if len(entry) > 2 && strings.HasPrefix(entry, "/") && strings.HasSuffix(entry, "/") {
			re, err := regexp.Compile(entry[1 : len(entry)-1])
			if err != nil {
				d.logger.Warn("bad non-payable pattern", "pattern", entry, "error", err)
				continue
			}
			if re.MatchString(description) {
				return true
			}
		} else if entry == description {
			return true
		}
	}
	return false
}

// GetMyFines returns the patron's debts, newest first.
func (d *Driver) GetMyFines(patron *ils.Patron) ([]ils.Fine, error) {
	debts, err := d.getDebts(patron)
	if err != nil {
		return nil, err
	}

	threshold := d.payableThreshold()
	fines := make([]ils.Fine, 0, len(debts))
	for _, debt := range debts {
		amount := parseAmount(debt.DebtAmountFormatted)
		description := debt.DebtType + " - " + debt.DebtNote
		payable := d.cfg.OnlinePayment.Enabled && amount > 0
		if payable {
			if date, err := dateutil.ParseAxiell(debt.DebtDate); err != nil || date.Before(threshold) {
				payable = false
			}
		}
		if payable && d.blockedDescription(description) {
			payable = false
		}
		fines = append(fines, ils.Fine{
			ID:            debt.ID,
			Amount:        amount,
			Balance:       amount,
			Description:   description,
			CreateDate:    debt.DebtDate,
			PayableOnline: payable,
			Organisation:  debt.Organisation,
		})
	}

	sort.SliceStable(fines, func(i, j int) bool {
		return fines[i].CreateDate > fines[j].CreateDate
	})
	for i := range fines {
		fines[i].CreateDate = dateutil.FormatAxiell(fines[i].CreateDate)
	}
	return fines, nil
}

func (d *Driver) getDebts(patron *ils.Patron) ([]debt, error) {
	const op = "GetDebts"
	req := getDebtsRequest{Param: getDebtsParam{
		ArenaMember: d.cfg.ArenaMember,
		User:        patron.Username,
		Password:    patron.Password,
		Language:    d.language(),
		FromDate:    debtsFromDate,
		ToDate:      time.Now().Unix(),
	}}
	var res getDebtsResponse
	st, err := d.call(d.payments, op, req, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		if _, err := d.handleError(op, st, patron.Username); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return res.Result.Debts.Debt, nil
}

// GetOnlinePaymentDetails reports the payable balance, or the reason no
// payment is possible.
func (d *Driver) GetOnlinePaymentDetails(patron *ils.Patron, fines []ils.Fine) (*ils.PaymentDetails, error) {
	var amount int64
	for _, fine := range fines {
		if fine.PayableOnline {
			amount += fine.Balance
		}
	}
	if amount == 0 {
		return &ils.PaymentDetails{Payable: false}, nil
	}
	if amount < d.cfg.OnlinePayment.MinimumFee {
		return &ils.PaymentDetails{
			Payable: false,
			Amount:  amount,
			Reason:  "online_payment_minimum_fee",
		}, nil
	}
	return &ils.PaymentDetails{Payable: true, Amount: amount}, nil
}

// MarkFeesAsPaid registers an online payment. The payable balance is
// refetched first so that a fine paid at the desk in the meantime cannot be
// double-paid; a mismatch with the requested amount fails the payment
// unless exact balance matching is disabled.
func (d *Driver) MarkFeesAsPaid(patron *ils.Patron, payment ils.Payment, fineIDs []string) (*ils.Result, error) {
	fines, err := d.GetMyFines(patron)
	if err != nil {
		return nil, err
	}
	var payable int64
	var payableIDs []string
	for _, fine := range fines {
		if !fine.PayableOnline {
			continue
		}
		if len(fineIDs) > 0 && !contains(fineIDs, fine.ID) {
			continue
		}
		payable += fine.Balance
		payableIDs = append(payableIDs, fine.ID)
	}

	exact := true
	if v := d.cfg.OnlinePayment.ExactBalanceRequired; v != nil {
		exact = *v
	}
	if exact && payable != payment.Amount {
		d.logger.Warn("payable balance changed since payment was initiated",
			"id", patron.Username, "payable", payable, "amount", payment.Amount)
		return &ils.Result{Success: false, Status: "fines_updated"}, nil
	}

	const op = "AddPayment"
	req := addPaymentRequest{Param: addPaymentParam{
		ArenaMember:       d.cfg.ArenaMember,
		OrderID:           payment.TransactionNumber,
		TransactionNumber: payment.TransactionID,
		PaymentAmount:     payment.Amount,
	}}
	req.Param.Debts.ID = strings.Join(payableIDs, ",")
	var res addPaymentResponse
	st, err := d.call(d.payments, op, req, &res, patron.Username)
	if err != nil {
		return nil, err
	}
	if st.Type != "ok" {
		msg, err := d.handleError(op, st, patron.Username)
		if err != nil {
			return nil, err
		}
		return &ils.Result{Success: false, SysMessage: msg}, nil
	}
	d.invalidatePatron(patron.Username)
	return &ils.Result{Success: true}, nil
}
