package domain

import (
	"github.com/shopspring/decimal"
)

// Loan status codes as reported in status.code
const (
	LoanStatusSubmitted  = "loanStatusType.submitted.and.pending.approval"
	LoanStatusApproved   = "loanStatusType.approved"
	LoanStatusActive     = "loanStatusType.active"
	LoanStatusClosed     = "loanStatusType.closed.obligations.met"
	LoanStatusOverpaid   = "loanStatusType.overpaid"
	LoanStatusWrittenOff = "loanStatusType.closed.written.off"
	LoanStatusRejected   = "loanStatusType.rejected"
)

// LoanStatusCodes maps the status names used in feature files to status codes
var LoanStatusCodes = map[string]string{
	"SUBMITTED_AND_PENDING_APPROVAL": LoanStatusSubmitted,
	"APPROVED":                       LoanStatusApproved,
	"ACTIVE":                         LoanStatusActive,
	"CLOSED_OBLIGATIONS_MET":         LoanStatusClosed,
	"OVERPAID":                       LoanStatusOverpaid,
	"CLOSED_WRITTEN_OFF":             LoanStatusWrittenOff,
	"REJECTED":                       LoanStatusRejected,
}

// Enum values the loan submission expects
const (
	FrequencyDays   = 0
	FrequencyWeeks  = 1
	FrequencyMonths = 2

	AmortizationEqualInstallments = 1
	InterestTypeDecliningBalance  = 0
	InterestCalcSameAsRepayment   = 1

	DefaultProcessingStrategy = "advanced-payment-allocation-strategy"
)

// FrequencyTypes maps feature-file names to the platform's period frequency enum
var FrequencyTypes = map[string]int{
	"DAYS":   FrequencyDays,
	"WEEKS":  FrequencyWeeks,
	"MONTHS": FrequencyMonths,
}

// PostLoansRequest submits a new loan application
type PostLoansRequest struct {
	ClientID                          int64           `json:"clientId" validate:"required,gt=0"`
	ProductID                         int64           `json:"productId" validate:"required,gt=0"`
	Principal                         decimal.Decimal `json:"principal" validate:"gt=0"`
	LoanTermFrequency                 int             `json:"loanTermFrequency" validate:"gt=0"`
	LoanTermFrequencyType             int             `json:"loanTermFrequencyType" validate:"gte=0,lte=3"`
	NumberOfRepayments                int             `json:"numberOfRepayments" validate:"gt=0"`
	RepaymentEvery                    int             `json:"repaymentEvery" validate:"gt=0"`
	RepaymentFrequencyType            int             `json:"repaymentFrequencyType" validate:"gte=0,lte=3"`
	InterestRatePerPeriod             decimal.Decimal `json:"interestRatePerPeriod"`
	AmortizationType                  int             `json:"amortizationType"`
	InterestType                      int             `json:"interestType"`
	InterestCalculationPeriodType     int             `json:"interestCalculationPeriodType"`
	TransactionProcessingStrategyCode string          `json:"transactionProcessingStrategyCode" validate:"required"`
	ExpectedDisbursementDate          string          `json:"expectedDisbursementDate" validate:"required"`
	SubmittedOnDate                   string          `json:"submittedOnDate" validate:"required"`
	LoanType                          string          `json:"loanType" validate:"required"`
	DateFormat                        string          `json:"dateFormat" validate:"required"`
	Locale                            string          `json:"locale" validate:"required"`
	ExternalID                        string          `json:"externalId,omitempty"`
}

// PostLoansLoanIDRequest carries the approve/disburse/undo command bodies
type PostLoansLoanIDRequest struct {
	ApprovedOnDate           string           `json:"approvedOnDate,omitempty"`
	ApprovedLoanAmount       *decimal.Decimal `json:"approvedLoanAmount,omitempty"`
	ExpectedDisbursementDate string           `json:"expectedDisbursementDate,omitempty"`
	ActualDisbursementDate   string           `json:"actualDisbursementDate,omitempty"`
	TransactionAmount        *decimal.Decimal `json:"transactionAmount,omitempty"`
	Note                     string           `json:"note,omitempty"`
	DateFormat               string           `json:"dateFormat,omitempty"`
	Locale                   string           `json:"locale,omitempty"`
}

// CommandResponse is the platform's generic answer to a write command
type CommandResponse struct {
	OfficeID           int64          `json:"officeId"`
	ClientID           int64          `json:"clientId"`
	LoanID             int64          `json:"loanId"`
	ResourceID         int64          `json:"resourceId"`
	SubResourceID      int64          `json:"subResourceId"`
	ResourceExternalID string         `json:"resourceExternalId"`
	Changes            map[string]any `json:"changes"`
}

// LoanStatus is the status object embedded in loan details
type LoanStatus struct {
	ID                   int    `json:"id"`
	Code                 string `json:"code"`
	Value                string `json:"value"`
	Active               bool   `json:"active"`
	ClosedObligationsMet bool   `json:"closedObligationsMet"`
	Overpaid             bool   `json:"overpaid"`
}

// LoanSummary holds the running totals of a loan
type LoanSummary struct {
	PrincipalDisbursed        decimal.Decimal `json:"principalDisbursed"`
	PrincipalOutstanding      decimal.Decimal `json:"principalOutstanding"`
	InterestOutstanding       decimal.Decimal `json:"interestOutstanding"`
	FeeChargesOutstanding     decimal.Decimal `json:"feeChargesOutstanding"`
	PenaltyChargesOutstanding decimal.Decimal `json:"penaltyChargesOutstanding"`
	TotalOutstanding          decimal.Decimal `json:"totalOutstanding"`
	TotalOverdue              decimal.Decimal `json:"totalOverdue"`
}

// LoanDetails is the GET /loans/{id} payload with schedule and transactions
type LoanDetails struct {
	ID                int64              `json:"id"`
	AccountNo         string             `json:"accountNo"`
	ExternalID        string             `json:"externalId"`
	ClientID          int64              `json:"clientId"`
	LoanProductID     int64              `json:"loanProductId"`
	LoanProductName   string             `json:"loanProductName"`
	Principal         decimal.Decimal    `json:"principal"`
	Status            LoanStatus         `json:"status"`
	Summary           *LoanSummary       `json:"summary"`
	RepaymentSchedule *RepaymentSchedule `json:"repaymentSchedule"`
	Transactions      []LoanTransaction  `json:"transactions"`
	Charges           []LoanCharge       `json:"charges"`
}

// StatusName returns the feature-file name of the loan's status, or its code
func (l *LoanDetails) StatusName() string {
	for name, code := range LoanStatusCodes {
		if code == l.Status.Code {
			return name
		}
	}
	return l.Status.Code
}

// TotalOutstanding is zero for loans without a summary yet
func (l *LoanDetails) TotalOutstanding() decimal.Decimal {
	if l.Summary == nil {
		return decimal.Zero
	}
	return l.Summary.TotalOutstanding
}

// LoanProduct is one entry of GET /loanproducts
type LoanProduct struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}
