package scenario

import (
	"sort"
	"sync"

	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

// Well-known keys shared between step groups
const (
	KeyBusinessDate           = "businessDate"
	KeyClientCreateResponse   = "clientCreateResponse"
	KeyLoanCreateResponse     = "loanCreateResponse"
	KeyLoanApproveResponse    = "loanApproveResponse"
	KeyLoanDisburseResponse   = "loanDisburseResponse"
	KeyLoanRepaymentResponse  = "loanRepaymentResponse"
	KeyLoanReAgeResponse      = "loanReAgeResponse"
	KeyLoanReAmortizeResponse = "loanReAmortizeResponse"
	KeyLoanChargeResponse     = "loanChargeResponse"
	KeyInterestPauseResponse  = "interestPauseResponse"
	KeyLoanDetails            = "loanDetails"
	KeyLastError              = "lastError"
)

// Context is the mutable key/value state one scenario's steps share
type Context struct {
	mu     sync.RWMutex
	values map[string]any
}

func New() *Context {
	return &Context{values: make(map[string]any)}
}

func (c *Context) Put(key string, value any) {
	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
}

func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *Context) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *Context) Delete(key string) {
	c.mu.Lock()
	delete(c.values, key)
	c.mu.Unlock()
}

// Reset drops every value; called before each scenario
func (c *Context) Reset() {
	c.mu.Lock()
	c.values = make(map[string]any)
	c.mu.Unlock()
}

// Keys lists the stored keys in sorted order
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Must returns the value under key as T
func Must[T any](c *Context, key string) (T, error) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, apperrors.WrapKeyNotFound(key)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, apperrors.WrapKeyType(key, zero, v)
	}
	return typed, nil
}
