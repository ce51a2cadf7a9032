package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/config"
	"github.com/segyhp/loan-e2e/internal/domain"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
	"github.com/segyhp/loan-e2e/pkg/response"
)

// API is the slice of the platform's REST surface the steps drive
type API interface {
	CreateClient(ctx context.Context, request *domain.CreateClientRequest) (*domain.CommandResponse, error)

	CreateLoan(ctx context.Context, request *domain.PostLoansRequest) (*domain.CommandResponse, error)
	ApproveLoan(ctx context.Context, loanID int64, request *domain.PostLoansLoanIDRequest) (*domain.CommandResponse, error)
	DisburseLoan(ctx context.Context, loanID int64, request *domain.PostLoansLoanIDRequest) (*domain.CommandResponse, error)
	UndoApproval(ctx context.Context, loanID int64) (*domain.CommandResponse, error)
	UndoDisbursal(ctx context.Context, loanID int64) (*domain.CommandResponse, error)
	RetrieveLoan(ctx context.Context, loanID int64) (*domain.LoanDetails, error)
	MakeRepayment(ctx context.Context, loanID int64, request *domain.PostLoansLoanIDTransactionsRequest) (*domain.CommandResponse, error)
	ListLoanProducts(ctx context.Context) ([]domain.LoanProduct, error)

	AddLoanCharge(ctx context.Context, loanID int64, request *domain.AddLoanChargeRequest) (*domain.CommandResponse, error)
	WaiveLoanCharge(ctx context.Context, loanID, loanChargeID int64) (*domain.CommandResponse, error)

	ReAge(ctx context.Context, loanID int64, request *domain.ReAgeRequest) (*domain.CommandResponse, error)
	UndoReAge(ctx context.Context, loanID int64) (*domain.CommandResponse, error)
	ReAmortize(ctx context.Context, loanID int64, request *domain.ReAmortizeRequest) (*domain.CommandResponse, error)
	UndoReAmortize(ctx context.Context, loanID int64) (*domain.CommandResponse, error)

	CreateInterestPause(ctx context.Context, loanID int64, request *domain.InterestPauseRequest) (*domain.CommandResponse, error)
	ListInterestPauses(ctx context.Context, loanID int64) ([]domain.InterestPause, error)
	DeleteInterestPause(ctx context.Context, loanID, pauseID int64) error

	SetBusinessDate(ctx context.Context, request *domain.BusinessDateRequest) error
	GetBusinessDate(ctx context.Context, dateType string) (*domain.BusinessDate, error)
	RunInlineCOB(ctx context.Context, loanIDs ...int64) error
	ConfigureExternalEvents(ctx context.Context, request *domain.ExternalEventConfigurationRequest) error
	Ping(ctx context.Context) error
}

// Client talks to the platform over HTTP with basic auth and a tenant header
type Client struct {
	baseURL      string
	tenantHeader string
	tenantID     string
	username     string
	password     string

	http      *http.Client
	validator *validator.Validate
	logger    *zap.Logger
}

var _ API = (*Client)(nil)

// New creates a platform client from config
func New(cfg config.PlatformConfig, timeout time.Duration, logger *zap.Logger) *Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: timeout}, logger)
}

// NewWithHTTPClient lets tests supply their own transport
func NewWithHTTPClient(cfg config.PlatformConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		tenantHeader: cfg.TenantHeader,
		tenantID:     cfg.TenantID,
		username:     cfg.Username,
		password:     cfg.Password,
		http:         httpClient,
		validator:    newValidator(),
		logger:       logger,
	}
}

// newValidator validates request DTOs; decimals are checked as floats
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// validate runs struct validation before anything goes on the wire
func (c *Client) validate(name string, request any) error {
	if err := c.validator.Struct(request); err != nil {
		return apperrors.WrapInvalidRequest(name, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tenantHeader != "" {
		req.Header.Set(c.tenantHeader, c.tenantID)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.logger.Debug("platform call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	return response.Decode(resp, out)
}

func command(name string) url.Values {
	return url.Values{"command": []string{name}}
}

func loanPath(loanID int64, suffix string) string {
	return fmt.Sprintf("/loans/%d%s", loanID, suffix)
}

// CreateClient registers a new client
func (c *Client) CreateClient(ctx context.Context, request *domain.CreateClientRequest) (*domain.CommandResponse, error) {
	if err := c.validate("client creation", request); err != nil {
		return nil, err
	}
	var out domain.CommandResponse
	if err := c.do(ctx, http.MethodPost, "/clients", nil, request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks the platform answers authenticated requests
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/offices/%d", domain.HeadOfficeID), nil, nil, nil)
}
