package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/segyhp/loan-e2e/internal/domain"
)

// loanAssociations are fetched with every loan retrieval
const loanAssociations = "repaymentSchedule,transactions,charges"

// CreateLoan submits a loan application
func (c *Client) CreateLoan(ctx context.Context, request *domain.PostLoansRequest) (*domain.CommandResponse, error) {
	if err := c.validate("loan submission", request); err != nil {
		return nil, err
	}
	var out domain.CommandResponse
	if err := c.do(ctx, http.MethodPost, "/loans", nil, request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveLoan(ctx context.Context, loanID int64, request *domain.PostLoansLoanIDRequest) (*domain.CommandResponse, error) {
	return c.loanCommand(ctx, loanID, "approve", request)
}

func (c *Client) DisburseLoan(ctx context.Context, loanID int64, request *domain.PostLoansLoanIDRequest) (*domain.CommandResponse, error) {
	return c.loanCommand(ctx, loanID, "disburse", request)
}

func (c *Client) UndoApproval(ctx context.Context, loanID int64) (*domain.CommandResponse, error) {
	return c.loanCommand(ctx, loanID, "undoapproval", &domain.PostLoansLoanIDRequest{})
}

func (c *Client) UndoDisbursal(ctx context.Context, loanID int64) (*domain.CommandResponse, error) {
	return c.loanCommand(ctx, loanID, "undodisbursal", &domain.PostLoansLoanIDRequest{})
}

func (c *Client) loanCommand(ctx context.Context, loanID int64, name string, request *domain.PostLoansLoanIDRequest) (*domain.CommandResponse, error) {
	var out domain.CommandResponse
	if err := c.do(ctx, http.MethodPost, loanPath(loanID, ""), command(name), request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetrieveLoan fetches a loan together with its schedule, transactions and charges
func (c *Client) RetrieveLoan(ctx context.Context, loanID int64) (*domain.LoanDetails, error) {
	query := url.Values{"associations": []string{loanAssociations}}
	var out domain.LoanDetails
	if err := c.do(ctx, http.MethodGet, loanPath(loanID, ""), query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MakeRepayment posts a repayment transaction
func (c *Client) MakeRepayment(ctx context.Context, loanID int64, request *domain.PostLoansLoanIDTransactionsRequest) (*domain.CommandResponse, error) {
	if err := c.validate("repayment", request); err != nil {
		return nil, err
	}
	return c.transactionCommand(ctx, loanID, "repayment", request)
}

func (c *Client) transactionCommand(ctx context.Context, loanID int64, name string, request any) (*domain.CommandResponse, error) {
	var out domain.CommandResponse
	if err := c.do(ctx, http.MethodPost, loanPath(loanID, "/transactions"), command(name), request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLoanProducts returns every configured loan product
func (c *Client) ListLoanProducts(ctx context.Context) ([]domain.LoanProduct, error) {
	var out []domain.LoanProduct
	if err := c.do(ctx, http.MethodGet, "/loanproducts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
