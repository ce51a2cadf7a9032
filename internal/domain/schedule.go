package domain

import (
	"github.com/shopspring/decimal"
)

// RepaymentSchedule is the generated schedule of a loan
type RepaymentSchedule struct {
	Currency                   *Currency        `json:"currency"`
	LoanTermInDays             int              `json:"loanTermInDays"`
	TotalPrincipalDisbursed    decimal.Decimal  `json:"totalPrincipalDisbursed"`
	TotalPrincipalExpected     decimal.Decimal  `json:"totalPrincipalExpected"`
	TotalInterestCharged       decimal.Decimal  `json:"totalInterestCharged"`
	TotalFeeChargesCharged     decimal.Decimal  `json:"totalFeeChargesCharged"`
	TotalPenaltyChargesCharged decimal.Decimal  `json:"totalPenaltyChargesCharged"`
	TotalRepaymentExpected     decimal.Decimal  `json:"totalRepaymentExpected"`
	TotalPaidInAdvance         decimal.Decimal  `json:"totalPaidInAdvance"`
	TotalPaidLate              decimal.Decimal  `json:"totalPaidLate"`
	TotalOutstanding           decimal.Decimal  `json:"totalOutstanding"`
	TotalRepayment             decimal.Decimal  `json:"totalRepayment"`
	Periods                    []SchedulePeriod `json:"periods"`
}

type Currency struct {
	Code          string `json:"code"`
	DecimalPlaces int    `json:"decimalPlaces"`
}

// SchedulePeriod is one row of the schedule. The disbursement row has no
// period number.
type SchedulePeriod struct {
	Period                          *int            `json:"period"`
	FromDate                        []int           `json:"fromDate"`
	DueDate                         []int           `json:"dueDate"`
	ObligationsMetOnDate            []int           `json:"obligationsMetOnDate"`
	Complete                        bool            `json:"complete"`
	DaysInPeriod                    int             `json:"daysInPeriod"`
	PrincipalDisbursed              decimal.Decimal `json:"principalDisbursed"`
	PrincipalLoanBalanceOutstanding decimal.Decimal `json:"principalLoanBalanceOutstanding"`
	PrincipalDue                    decimal.Decimal `json:"principalDue"`
	InterestDue                     decimal.Decimal `json:"interestDue"`
	FeeChargesDue                   decimal.Decimal `json:"feeChargesDue"`
	PenaltyChargesDue               decimal.Decimal `json:"penaltyChargesDue"`
	TotalDueForPeriod               decimal.Decimal `json:"totalDueForPeriod"`
	TotalPaidForPeriod              decimal.Decimal `json:"totalPaidForPeriod"`
	TotalPaidInAdvanceForPeriod     decimal.Decimal `json:"totalPaidInAdvanceForPeriod"`
	TotalPaidLateForPeriod          decimal.Decimal `json:"totalPaidLateForPeriod"`
	TotalOutstandingForPeriod       decimal.Decimal `json:"totalOutstandingForPeriod"`
	DownPaymentPeriod               bool            `json:"downPaymentPeriod"`
}

// IsDisbursement reports the leading disbursement row
func (p SchedulePeriod) IsDisbursement() bool {
	return p.Period == nil
}

// TransactionType is the type object of a loan transaction
type TransactionType struct {
	ID    int    `json:"id"`
	Code  string `json:"code"`
	Value string `json:"value"`
}

// LoanTransaction is one entry of the loan's transaction list
type LoanTransaction struct {
	ID                     int64           `json:"id"`
	ExternalID             string          `json:"externalId"`
	Type                   TransactionType `json:"type"`
	Date                   []int           `json:"date"`
	Amount                 decimal.Decimal `json:"amount"`
	PrincipalPortion       decimal.Decimal `json:"principalPortion"`
	InterestPortion        decimal.Decimal `json:"interestPortion"`
	FeeChargesPortion      decimal.Decimal `json:"feeChargesPortion"`
	PenaltyChargesPortion  decimal.Decimal `json:"penaltyChargesPortion"`
	OutstandingLoanBalance decimal.Decimal `json:"outstandingLoanBalance"`
	ManuallyReversed       bool            `json:"manuallyReversed"`
}

// PostLoansLoanIDTransactionsRequest is a repayment-style transaction command
type PostLoansLoanIDTransactionsRequest struct {
	TransactionDate   string          `json:"transactionDate" validate:"required"`
	TransactionAmount decimal.Decimal `json:"transactionAmount" validate:"gt=0"`
	PaymentTypeID     int64           `json:"paymentTypeId,omitempty"`
	Note              string          `json:"note,omitempty"`
	ExternalID        string          `json:"externalId,omitempty"`
	DateFormat        string          `json:"dateFormat" validate:"required"`
	Locale            string          `json:"locale" validate:"required"`
}

// ReAgeRequest moves the outstanding balance onto a new installment plan
type ReAgeRequest struct {
	FrequencyNumber      int    `json:"frequencyNumber" validate:"gt=0"`
	FrequencyType        string `json:"frequencyType" validate:"oneof=DAYS WEEKS MONTHS"`
	StartDate            string `json:"startDate" validate:"required"`
	NumberOfInstallments int    `json:"numberOfInstallments" validate:"gt=0"`
	Note                 string `json:"note,omitempty"`
	ExternalID           string `json:"externalId,omitempty"`
	DateFormat           string `json:"dateFormat" validate:"required"`
	Locale               string `json:"locale" validate:"required"`
}

// ReAmortizeRequest spreads the overdue amount over the remaining installments
type ReAmortizeRequest struct {
	Note       string `json:"note,omitempty"`
	ExternalID string `json:"externalId,omitempty"`
}
