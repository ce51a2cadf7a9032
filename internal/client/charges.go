package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/segyhp/loan-e2e/internal/domain"
)

// AddLoanCharge attaches a charge to a loan
func (c *Client) AddLoanCharge(ctx context.Context, loanID int64, request *domain.AddLoanChargeRequest) (*domain.CommandResponse, error) {
	if err := c.validate("loan charge", request); err != nil {
		return nil, err
	}
	var out domain.CommandResponse
	if err := c.do(ctx, http.MethodPost, loanPath(loanID, "/charges"), nil, request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaiveLoanCharge waives a charge previously added to the loan
func (c *Client) WaiveLoanCharge(ctx context.Context, loanID, loanChargeID int64) (*domain.CommandResponse, error) {
	var out domain.CommandResponse
	path := loanPath(loanID, fmt.Sprintf("/charges/%d", loanChargeID))
	if err := c.do(ctx, http.MethodPost, path, command("waive"), struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
