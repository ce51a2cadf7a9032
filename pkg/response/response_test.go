package response

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    &http.Request{Method: http.MethodPost, URL: &url.URL{Path: "/loans"}},
	}
}

func TestDecode_Success(t *testing.T) {
	var out struct {
		LoanID     int64 `json:"loanId"`
		ResourceID int64 `json:"resourceId"`
	}
	err := Decode(newResponse(http.StatusOK, `{"loanId":12,"resourceId":12}`), &out)

	require.NoError(t, err)
	assert.Equal(t, int64(12), out.LoanID)
}

func TestDecode_EmptySuccessBody(t *testing.T) {
	var out map[string]any
	assert.NoError(t, Decode(newResponse(http.StatusOK, ""), &out))
	assert.NoError(t, Decode(newResponse(http.StatusNoContent, ""), nil))
}

func TestDecode_PlatformError(t *testing.T) {
	body := `{
		"developerMessage": "The request caused a data integrity issue to be fired by the database.",
		"httpStatusCode": "403",
		"userMessageGlobalisationCode": "validation.msg.domain.rule.violation",
		"errors": [{"developerMessage": "Transaction date cannot be in the future", "userMessageGlobalisationCode": "error.msg.loan.transaction.cannot.be.a.future.date", "parameterName": "transactionDate"}]
	}`

	err := Decode(newResponse(http.StatusForbidden, body), nil)

	apiErr, ok := apperrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "/loans", apiErr.Path)
	assert.True(t, apiErr.HasCode("error.msg.loan.transaction.cannot.be.a.future.date"))
	assert.Equal(t, "transactionDate", apiErr.Errors[0].ParameterName)
}

func TestDecode_NonJSONError(t *testing.T) {
	err := Decode(newResponse(http.StatusBadGateway, "upstream down"), nil)

	apiErr, ok := apperrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "upstream down", apiErr.DeveloperMessage)

	err = Decode(newResponse(http.StatusInternalServerError, ""), nil)
	apiErr, _ = apperrors.AsAPIError(err)
	assert.Equal(t, "Internal Server Error", apiErr.DeveloperMessage)
}
