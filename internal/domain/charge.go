package domain

import (
	"github.com/shopspring/decimal"
)

// AddLoanChargeRequest attaches a charge definition to a loan
type AddLoanChargeRequest struct {
	ChargeID   int64           `json:"chargeId" validate:"required,gt=0"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0"`
	DueDate    string          `json:"dueDate,omitempty"`
	ExternalID string          `json:"externalId,omitempty"`
	DateFormat string          `json:"dateFormat" validate:"required"`
	Locale     string          `json:"locale" validate:"required"`
}

// LoanCharge is a charge as listed on the loan
type LoanCharge struct {
	ID                int64           `json:"id"`
	ChargeID          int64           `json:"chargeId"`
	Name              string          `json:"name"`
	DueDate           []int           `json:"dueDate"`
	Amount            decimal.Decimal `json:"amount"`
	AmountPaid        decimal.Decimal `json:"amountPaid"`
	AmountWaived      decimal.Decimal `json:"amountWaived"`
	AmountOutstanding decimal.Decimal `json:"amountOutstanding"`
	Penalty           bool            `json:"penalty"`
	Paid              bool            `json:"paid"`
	Waived            bool            `json:"waived"`
}
