package domain

// Business date types
const (
	BusinessDateType = "BUSINESS_DATE"
	COBDateType      = "COB_DATE"
)

// Job names for inline execution
const (
	JobLoanCOB = "LOAN_COB"
)

// BusinessDateRequest moves the platform's business date
type BusinessDateRequest struct {
	Type       string `json:"type" validate:"oneof=BUSINESS_DATE COB_DATE"`
	Date       string `json:"date" validate:"required"`
	DateFormat string `json:"dateFormat" validate:"required"`
	Locale     string `json:"locale" validate:"required"`
}

// BusinessDate is the answer of GET /businessdate/{type}
type BusinessDate struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Date        []int  `json:"date"`
}

// InlineJobRequest runs a job synchronously for a set of loans
type InlineJobRequest struct {
	LoanIDs []LoanIDRef `json:"loanIds" validate:"required,min=1,dive"`
}

type LoanIDRef struct {
	LoanID int64 `json:"loanId" validate:"gt=0"`
}

// InterestPauseRequest pauses interest accrual for a date range
type InterestPauseRequest struct {
	StartDate  string `json:"startDate" validate:"required"`
	EndDate    string `json:"endDate" validate:"required"`
	DateFormat string `json:"dateFormat" validate:"required"`
	Locale     string `json:"locale" validate:"required"`
}

// InterestPause is one pause period attached to a loan
type InterestPause struct {
	ID        int64 `json:"id"`
	StartDate []int `json:"startDate"`
	EndDate   []int `json:"endDate"`
}

// ExternalEventConfigurationRequest toggles external event types
type ExternalEventConfigurationRequest struct {
	ExternalEventConfigurations map[string]bool `json:"externalEventConfigurations" validate:"required,min=1"`
}
