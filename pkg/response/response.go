package response

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

// maxErrorBody caps how much of a failed response body is read
const maxErrorBody = 1 << 20

// IsSuccess reports a 2xx status code
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// Decode reads a platform response. 2xx bodies are decoded into out (which may
// be nil to discard the body); anything else becomes an *errors.APIError.
func Decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if !IsSuccess(resp.StatusCode) {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s response: %w", resp.Request.Method, resp.Request.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &apperrors.APIError{StatusCode: resp.StatusCode}
	if resp.Request != nil {
		apiErr.Method = resp.Request.Method
		apiErr.Path = resp.Request.URL.Path
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		apiErr.DeveloperMessage = fmt.Sprintf("unreadable error body: %v", err)
		return apiErr
	}

	if len(body) > 0 && json.Unmarshal(body, apiErr) != nil {
		apiErr.DeveloperMessage = string(body)
	}
	if apiErr.DeveloperMessage == "" {
		apiErr.DeveloperMessage = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
