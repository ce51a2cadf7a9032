package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/segyhp/loan-e2e/internal/domain"
)

// CreateInterestPause pauses interest accrual on the loan
func (c *Client) CreateInterestPause(ctx context.Context, loanID int64, request *domain.InterestPauseRequest) (*domain.CommandResponse, error) {
	if err := c.validate("interest pause", request); err != nil {
		return nil, err
	}
	var out domain.CommandResponse
	if err := c.do(ctx, http.MethodPost, loanPath(loanID, "/interest-pauses"), nil, request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListInterestPauses(ctx context.Context, loanID int64) ([]domain.InterestPause, error) {
	var out []domain.InterestPause
	if err := c.do(ctx, http.MethodGet, loanPath(loanID, "/interest-pauses"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteInterestPause(ctx context.Context, loanID, pauseID int64) error {
	return c.do(ctx, http.MethodDelete, loanPath(loanID, fmt.Sprintf("/interest-pauses/%d", pauseID)), nil, nil, nil)
}

// SetBusinessDate moves the platform's business (or COB) date
func (c *Client) SetBusinessDate(ctx context.Context, request *domain.BusinessDateRequest) error {
	if err := c.validate("business date", request); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/businessdate", nil, request, nil)
}

func (c *Client) GetBusinessDate(ctx context.Context, dateType string) (*domain.BusinessDate, error) {
	var out domain.BusinessDate
	if err := c.do(ctx, http.MethodGet, "/businessdate/"+dateType, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunInlineCOB runs close-of-business synchronously for the given loans
func (c *Client) RunInlineCOB(ctx context.Context, loanIDs ...int64) error {
	request := &domain.InlineJobRequest{}
	for _, id := range loanIDs {
		request.LoanIDs = append(request.LoanIDs, domain.LoanIDRef{LoanID: id})
	}
	if err := c.validate("inline COB", request); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/jobs/"+domain.JobLoanCOB+"/inline", nil, request, nil)
}

// ConfigureExternalEvents enables or disables external event types
func (c *Client) ConfigureExternalEvents(ctx context.Context, request *domain.ExternalEventConfigurationRequest) error {
	if err := c.validate("external event configuration", request); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, "/externalevents/configuration", nil, request, nil)
}
