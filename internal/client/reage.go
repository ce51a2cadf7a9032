package client

import (
	"context"

	"github.com/segyhp/loan-e2e/internal/domain"
)

// ReAge re-ages the loan's outstanding balance onto a new schedule
func (c *Client) ReAge(ctx context.Context, loanID int64, request *domain.ReAgeRequest) (*domain.CommandResponse, error) {
	if err := c.validate("re-age", request); err != nil {
		return nil, err
	}
	return c.transactionCommand(ctx, loanID, "reAge", request)
}

func (c *Client) UndoReAge(ctx context.Context, loanID int64) (*domain.CommandResponse, error) {
	return c.transactionCommand(ctx, loanID, "undoReAge", struct{}{})
}

// ReAmortize spreads overdue amounts over the remaining installments
func (c *Client) ReAmortize(ctx context.Context, loanID int64, request *domain.ReAmortizeRequest) (*domain.CommandResponse, error) {
	return c.transactionCommand(ctx, loanID, "reAmortize", request)
}

func (c *Client) UndoReAmortize(ctx context.Context, loanID int64) (*domain.CommandResponse, error) {
	return c.transactionCommand(ctx, loanID, "undoReAmortize", struct{}{})
}
