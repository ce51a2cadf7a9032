package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarnessError_Unwrap(t *testing.T) {
	err := fmt.Errorf("step failed: %w", WrapEventNotFound("LoanReAgeBusinessEvent", 42, []string{"LoanApprovedBusinessEvent"}))

	assert.True(t, errors.Is(err, ErrEventNotFound))

	var herr *HarnessError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, ErrCodeEventNotFound, herr.Code)
	assert.Contains(t, herr.Error(), "aggregate 42")
	assert.Contains(t, herr.Error(), "LoanApprovedBusinessEvent")
}

func TestWrapInvalidRequest(t *testing.T) {
	cause := errors.New("principal is required")
	err := WrapInvalidRequest("loan submission", cause)

	assert.True(t, errors.Is(err, ErrInvalidRequest))
	assert.True(t, errors.Is(err, cause))
}

func TestAPIError(t *testing.T) {
	apiErr := &APIError{
		Method:             "POST",
		Path:               "/loans/7/transactions",
		StatusCode:         403,
		DeveloperMessage:   "Request was understood but caused a domain rule violation.",
		GlobalisationCode:  "validation.msg.domain.rule.violation",
		Errors: []APIErrorArg{{
			DeveloperMessage:  "Loan reaging can only be done on loans with status ACTIVE",
			GlobalisationCode: "error.msg.loan.reage.supported.only.for.active.loans",
		}},
	}
	wrapped := fmt.Errorf("re-age: %w", apiErr)

	got, ok := AsAPIError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 403, got.StatusCode)
	assert.True(t, got.HasCode("error.msg.loan.reage.supported.only.for.active.loans"))
	assert.False(t, got.HasCode("error.msg.unknown"))
	assert.Contains(t, got.Error(), "only be done on loans with status ACTIVE")

	_, ok = AsAPIError(errors.New("plain"))
	assert.False(t, ok)
}
