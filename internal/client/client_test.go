package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-e2e/internal/config"
	"github.com/segyhp/loan-e2e/internal/domain"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
	"github.com/segyhp/loan-e2e/pkg/utils"
)

type fakePlatform struct {
	server       *httptest.Server
	lastBody     map[string]any
	lastQuery    map[string]string
	productCalls atomic.Int32
	loanCalls    atomic.Int32
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	f := &fakePlatform{}

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || user != "mifos" || pass != "password" || r.Header.Get("Fineract-Platform-TenantId") != "default" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"developerMessage":"Invalid authentication details were passed in api request.","userMessageGlobalisationCode":"error.msg.not.authenticated"}`))
				return
			}
			f.lastQuery = map[string]string{}
			for k := range r.URL.Query() {
				f.lastQuery[k] = r.URL.Query().Get(k)
			}
			f.lastBody = nil
			if r.ContentLength > 0 {
				_ = json.NewDecoder(r.Body).Decode(&f.lastBody)
			}
			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/loans", func(w http.ResponseWriter, r *http.Request) {
		f.loanCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"loanId": 17, "resourceId": 17, "clientId": 3, "officeId": 1})
	}).Methods(http.MethodPost)

	router.HandleFunc("/loans/{loanId}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"loanId": 17, "resourceId": 17})
	}).Methods(http.MethodPost)

	router.HandleFunc("/loans/{loanId}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["loanId"] == "404" {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"developerMessage":             "The requested resource is not available.",
				"userMessageGlobalisationCode": "error.msg.resource.not.found",
				"errors": []map[string]any{{
					"developerMessage":             "Loan with identifier 404 does not exist",
					"userMessageGlobalisationCode": "error.msg.loan.id.invalid",
				}},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":     17,
			"status": map[string]any{"id": 300, "code": domain.LoanStatusActive, "value": "Active", "active": true},
			"summary": map[string]any{"totalOutstanding": 750.5},
			"repaymentSchedule": map[string]any{
				"totalOutstanding": 750.5,
				"periods": []map[string]any{
					{"dueDate": []int{2024, 1, 1}, "principalDisbursed": 1000, "principalLoanBalanceOutstanding": 1000},
					{"period": 1, "fromDate": []int{2024, 1, 1}, "dueDate": []int{2024, 2, 1}, "daysInPeriod": 31, "principalDue": 250, "totalDueForPeriod": 250},
				},
			},
			"transactions": []map[string]any{
				{"id": 5, "type": map[string]any{"code": "loanTransactionType.disbursement", "value": "Disbursement"}, "date": []int{2024, 1, 1}, "amount": 1000},
			},
		})
	}).Methods(http.MethodGet)

	router.HandleFunc("/loans/{loanId}/transactions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"loanId": 17, "resourceId": 99})
	}).Methods(http.MethodPost)

	router.HandleFunc("/loanproducts", func(w http.ResponseWriter, r *http.Request) {
		f.productCalls.Add(1)
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "LP1", "shortName": "LP1"},
			{"id": 4, "name": "LP2 advanced payment allocation", "shortName": "LP2A"},
		})
	}).Methods(http.MethodGet)

	router.HandleFunc("/jobs/{job}/inline", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}).Methods(http.MethodPost)

	router.HandleFunc("/loans/{loanId}/interest-pauses/{pauseId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(f *fakePlatform) *Client {
	return New(config.PlatformConfig{
		BaseURL:      f.server.URL + "/",
		TenantHeader: "Fineract-Platform-TenantId",
		TenantID:     "default",
		Username:     "mifos",
		Password:     "password",
	}, 5*time.Second, nil)
}

func validLoanRequest() *domain.PostLoansRequest {
	return &domain.PostLoansRequest{
		ClientID:                          3,
		ProductID:                         1,
		Principal:                         decimal.NewFromInt(1000),
		LoanTermFrequency:                 4,
		LoanTermFrequencyType:             domain.FrequencyMonths,
		NumberOfRepayments:                4,
		RepaymentEvery:                    1,
		RepaymentFrequencyType:            domain.FrequencyMonths,
		TransactionProcessingStrategyCode: domain.DefaultProcessingStrategy,
		ExpectedDisbursementDate:          "01 January 2024",
		SubmittedOnDate:                   "01 January 2024",
		LoanType:                          "individual",
		DateFormat:                        utils.DateFormat,
		Locale:                            utils.Locale,
	}
}

func TestClient_CreateLoan(t *testing.T) {
	f := newFakePlatform(t)
	c := newTestClient(f)

	resp, err := c.CreateLoan(context.Background(), validLoanRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(17), resp.LoanID)
	assert.Equal(t, "1000", f.lastBody["principal"])
	assert.Equal(t, utils.DateFormat, f.lastBody["dateFormat"])
}

func TestClient_CreateLoan_InvalidRequestNeverSent(t *testing.T) {
	f := newFakePlatform(t)
	c := newTestClient(f)

	request := validLoanRequest()
	request.Principal = decimal.Zero
	request.ClientID = 0

	_, err := c.CreateLoan(context.Background(), request)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest))
	assert.Contains(t, err.Error(), "loan submission")
	assert.Equal(t, int32(0), f.loanCalls.Load())
}

func TestClient_ApproveLoan_SendsCommand(t *testing.T) {
	f := newFakePlatform(t)
	c := newTestClient(f)

	_, err := c.ApproveLoan(context.Background(), 17, &domain.PostLoansLoanIDRequest{
		ApprovedOnDate: "01 January 2024",
		DateFormat:     utils.DateFormat,
		Locale:         utils.Locale,
	})

	require.NoError(t, err)
	assert.Equal(t, "approve", f.lastQuery["command"])
	assert.Equal(t, "01 January 2024", f.lastBody["approvedOnDate"])
}

func TestClient_RetrieveLoan(t *testing.T) {
	f := newFakePlatform(t)
	c := newTestClient(f)

	loan, err := c.RetrieveLoan(context.Background(), 17)

	require.NoError(t, err)
	assert.Equal(t, loanAssociations, f.lastQuery["associations"])
	assert.Equal(t, "ACTIVE", loan.StatusName())
	assert.True(t, decimal.RequireFromString("750.5").Equal(loan.TotalOutstanding()))
	require.Len(t, loan.RepaymentSchedule.Periods, 2)
	assert.True(t, loan.RepaymentSchedule.Periods[0].IsDisbursement())
	assert.Equal(t, 1, *loan.RepaymentSchedule.Periods[1].Period)
	assert.Equal(t, "Disbursement", loan.Transactions[0].Type.Value)
}

func TestClient_RetrieveLoan_NotFound(t *testing.T) {
	f := newFakePlatform(t)
	c := newTestClient(f)

	_, err := c.RetrieveLoan(context.Background(), 404)

	apiErr, ok := apperrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.True(t, apiErr.HasCode("error.msg.loan.id.invalid"))
}

func TestClient_BadCredentials(t *testing.T) {
	f := newFakePlatform(t)
	c := New(config.PlatformConfig{BaseURL: f.server.URL, TenantHeader: "Fineract-Platform-TenantId", TenantID: "default", Username: "mifos", Password: "wrong"}, time.Second, nil)

	_, err := c.ListLoanProducts(context.Background())

	apiErr, ok := apperrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_ReAgeValidation(t *testing.T) {
	f := newFakePlatform(t)
	c := newTestClient(f)

	_, err := c.ReAge(context.Background(), 17, &domain.ReAgeRequest{
		FrequencyNumber:      1,
		FrequencyType:        "FORTNIGHTS",
		StartDate:            "01 March 2024",
		NumberOfInstallments: 3,
		DateFormat:           utils.DateFormat,
		Locale:               utils.Locale,
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest))

	resp, err := c.ReAge(context.Background(), 17, &domain.ReAgeRequest{
		FrequencyNumber:      1,
		FrequencyType:        "MONTHS",
		StartDate:            "01 March 2024",
		NumberOfInstallments: 3,
		DateFormat:           utils.DateFormat,
		Locale:               utils.Locale,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), resp.ResourceID)
	assert.Equal(t, "reAge", f.lastQuery["command"])
}

func TestClient_RunInlineCOB(t *testing.T) {
	f := newFakePlatform(t)
	c := newTestClient(f)

	require.NoError(t, c.RunInlineCOB(context.Background(), 17, 18))
	ids, ok := f.lastBody["loanIds"].([]any)
	require.True(t, ok)
	assert.Len(t, ids, 2)

	err := c.RunInlineCOB(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest))
}

func TestClient_DeleteInterestPause(t *testing.T) {
	f := newFakePlatform(t)
	c := newTestClient(f)

	assert.NoError(t, c.DeleteInterestPause(context.Background(), 17, 2))
}

func TestProductResolver(t *testing.T) {
	f := newFakePlatform(t)
	resolver := NewProductResolver(newTestClient(f))
	ctx := context.Background()

	id, err := resolver.Resolve(ctx, "lp2a")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)

	id, err = resolver.Resolve(ctx, "LP1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, int32(1), f.productCalls.Load())

	// a miss on a cached listing refetches once
	_, err = resolver.Resolve(ctx, "LP9")
	assert.True(t, errors.Is(err, apperrors.ErrUnknownProduct))
	assert.Equal(t, int32(2), f.productCalls.Load())

	_, _ = resolver.Resolve(ctx, "LP1")
	assert.Equal(t, int32(2), f.productCalls.Load())
}
