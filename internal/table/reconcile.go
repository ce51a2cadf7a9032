package table

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-e2e/internal/domain"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
	"github.com/segyhp/loan-e2e/pkg/utils"
)

// column renders one cell of the actual data. Amount columns compare as
// decimals, everything else as text.
type column[T any] struct {
	amount bool
	render func(T) string
}

func amount[T any](f func(T) decimal.Decimal) column[T] {
	return column[T]{amount: true, render: func(v T) string { return f(v).String() }}
}

func text[T any](f func(T) string) column[T] {
	return column[T]{render: f}
}

var scheduleColumns = map[string]column[domain.SchedulePeriod]{
	"Nr": text(func(p domain.SchedulePeriod) string {
		if p.IsDisbursement() {
			return ""
		}
		return strconv.Itoa(*p.Period)
	}),
	"Days": text(func(p domain.SchedulePeriod) string {
		if p.IsDisbursement() {
			return ""
		}
		return strconv.Itoa(periodDays(p))
	}),
	"Date":            text(func(p domain.SchedulePeriod) string { return utils.FormatLocalDate(p.DueDate) }),
	"Paid date":       text(func(p domain.SchedulePeriod) string { return utils.FormatLocalDate(p.ObligationsMetOnDate) }),
	"Balance of loan": amount(func(p domain.SchedulePeriod) decimal.Decimal { return p.PrincipalLoanBalanceOutstanding }),
	"Principal due":   amount(func(p domain.SchedulePeriod) decimal.Decimal { return p.PrincipalDue }),
	"Interest":        amount(func(p domain.SchedulePeriod) decimal.Decimal { return p.InterestDue }),
	"Fees":            amount(func(p domain.SchedulePeriod) decimal.Decimal { return p.FeeChargesDue }),
	"Penalties":       amount(func(p domain.SchedulePeriod) decimal.Decimal { return p.PenaltyChargesDue }),
	"Due":             amount(func(p domain.SchedulePeriod) decimal.Decimal { return p.TotalDueForPeriod }),
	"Paid":            amount(func(p domain.SchedulePeriod) decimal.Decimal { return p.TotalPaidForPeriod }),
	"In advance":      amount(func(p domain.SchedulePeriod) decimal.Decimal { return p.TotalPaidInAdvanceForPeriod }),
	"Late":            amount(func(p domain.SchedulePeriod) decimal.Decimal { return p.TotalPaidLateForPeriod }),
	"Outstanding":     amount(func(p domain.SchedulePeriod) decimal.Decimal { return p.TotalOutstandingForPeriod }),
}

var totalsColumns = map[string]column[domain.RepaymentSchedule]{
	"Principal due": amount(func(s domain.RepaymentSchedule) decimal.Decimal { return s.TotalPrincipalExpected }),
	"Interest":      amount(func(s domain.RepaymentSchedule) decimal.Decimal { return s.TotalInterestCharged }),
	"Fees":          amount(func(s domain.RepaymentSchedule) decimal.Decimal { return s.TotalFeeChargesCharged }),
	"Penalties":     amount(func(s domain.RepaymentSchedule) decimal.Decimal { return s.TotalPenaltyChargesCharged }),
	"Due":           amount(func(s domain.RepaymentSchedule) decimal.Decimal { return s.TotalRepaymentExpected }),
	"Paid":          amount(func(s domain.RepaymentSchedule) decimal.Decimal { return s.TotalRepayment }),
	"In advance":    amount(func(s domain.RepaymentSchedule) decimal.Decimal { return s.TotalPaidInAdvance }),
	"Late":          amount(func(s domain.RepaymentSchedule) decimal.Decimal { return s.TotalPaidLate }),
	"Outstanding":   amount(func(s domain.RepaymentSchedule) decimal.Decimal { return s.TotalOutstanding }),
}

var transactionColumns = map[string]column[domain.LoanTransaction]{
	"Transaction date": text(func(tx domain.LoanTransaction) string { return utils.FormatLocalDate(tx.Date) }),
	"Transaction Type": text(func(tx domain.LoanTransaction) string { return tx.Type.Value }),
	"Amount":           amount(func(tx domain.LoanTransaction) decimal.Decimal { return tx.Amount }),
	"Principal":        amount(func(tx domain.LoanTransaction) decimal.Decimal { return tx.PrincipalPortion }),
	"Interest":         amount(func(tx domain.LoanTransaction) decimal.Decimal { return tx.InterestPortion }),
	"Fees":             amount(func(tx domain.LoanTransaction) decimal.Decimal { return tx.FeeChargesPortion }),
	"Penalties":        amount(func(tx domain.LoanTransaction) decimal.Decimal { return tx.PenaltyChargesPortion }),
	"Loan Balance":     amount(func(tx domain.LoanTransaction) decimal.Decimal { return tx.OutstandingLoanBalance }),
	"Reverted":         text(func(tx domain.LoanTransaction) string { return strconv.FormatBool(tx.ManuallyReversed) }),
}

var interestPauseColumns = map[string]column[domain.InterestPause]{
	"Start date": text(func(p domain.InterestPause) string { return utils.FormatLocalDate(p.StartDate) }),
	"End date":   text(func(p domain.InterestPause) string { return utils.FormatLocalDate(p.EndDate) }),
}

// ReconcileSchedule compares the expected schedule row by row. Only the
// columns present in the expected header are checked.
func ReconcileSchedule(expected *Table, periods []domain.SchedulePeriod) error {
	return reconcileOrdered("repayment schedule", expected, periods, scheduleColumns)
}

// ReconcileTotals compares the single totals row of a schedule
func ReconcileTotals(expected *Table, schedule domain.RepaymentSchedule) error {
	if len(expected.Rows) != 1 {
		return apperrors.WrapInvalidTable(fmt.Sprintf("totals table needs exactly one row, has %d", len(expected.Rows)))
	}
	return reconcileOrdered("repayment schedule totals", expected, []domain.RepaymentSchedule{schedule}, totalsColumns)
}

// ReconcileTransactions checks every expected row matches a distinct actual
// transaction, in any order, and that no transaction is left over
func ReconcileTransactions(expected *Table, transactions []domain.LoanTransaction) error {
	return reconcileUnordered("loan transactions", expected, transactions, transactionColumns)
}

// ReconcileInterestPauses checks the loan's pause periods, in any order
func ReconcileInterestPauses(expected *Table, pauses []domain.InterestPause) error {
	return reconcileUnordered("interest pauses", expected, pauses, interestPauseColumns)
}

func checkHeader[T any](expected *Table, columns map[string]column[T]) error {
	for _, h := range expected.Header {
		if _, ok := columns[h]; !ok {
			return apperrors.WrapInvalidTable(fmt.Sprintf("unknown column %q", h))
		}
	}
	return nil
}

func render[T any](header []string, items []T, columns map[string]column[T]) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := make([]string, len(header))
		for i, h := range header {
			row[i] = columns[h].render(item)
		}
		rows = append(rows, row)
	}
	return rows
}

func cellMatches[T any](col column[T], expected, actual string) bool {
	if col.amount {
		return utils.SameAmount(expected, actual)
	}
	return expected == actual
}

func reconcileOrdered[T any](what string, expected *Table, items []T, columns map[string]column[T]) error {
	if err := checkHeader(expected, columns); err != nil {
		return err
	}
	actual := render(expected.Header, items, columns)

	var problems []string
	if len(expected.Rows) != len(actual) {
		problems = append(problems, fmt.Sprintf("expected %d rows, got %d", len(expected.Rows), len(actual)))
	}
	for r := 0; r < len(expected.Rows) && r < len(actual); r++ {
		for c, h := range expected.Header {
			want, got := expected.Rows[r][c], actual[r][c]
			if !cellMatches(columns[h], want, got) {
				problems = append(problems, fmt.Sprintf("row %d, %s: expected %q, got %q", r+1, h, want, got))
			}
		}
	}

	if len(problems) > 0 {
		problems = append(problems, "actual:\n"+Format(expected.Header, actual))
		return apperrors.WrapTableMismatch(what, problems)
	}
	return nil
}

func reconcileUnordered[T any](what string, expected *Table, items []T, columns map[string]column[T]) error {
	if err := checkHeader(expected, columns); err != nil {
		return err
	}
	actual := render(expected.Header, items, columns)
	used := make([]bool, len(actual))

	var problems []string
	for r, want := range expected.Rows {
		found := false
		for a, got := range actual {
			if used[a] || !rowMatches(expected.Header, columns, want, got) {
				continue
			}
			used[a] = true
			found = true
			break
		}
		if !found {
			problems = append(problems, fmt.Sprintf("row %d not found: %v", r+1, want))
		}
	}
	for a, got := range actual {
		if !used[a] {
			problems = append(problems, fmt.Sprintf("unexpected row: %v", got))
		}
	}

	if len(problems) > 0 {
		problems = append(problems, "actual:\n"+Format(expected.Header, actual))
		return apperrors.WrapTableMismatch(what, problems)
	}
	return nil
}

func rowMatches[T any](header []string, columns map[string]column[T], want, got []string) bool {
	for c, h := range header {
		if !cellMatches(columns[h], want[c], got[c]) {
			return false
		}
	}
	return true
}

// periodDays falls back to the period's dates when the platform leaves
// daysInPeriod out, as it does for some down-payment periods
func periodDays(p domain.SchedulePeriod) int {
	if p.DaysInPeriod != 0 {
		return p.DaysInPeriod
	}
	from, okFrom := utils.LocalDate(p.FromDate)
	due, okDue := utils.LocalDate(p.DueDate)
	if !okFrom || !okDue {
		return 0
	}
	return utils.DaysBetween(from, due)
}
