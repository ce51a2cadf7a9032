package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

var errNotYet = errors.New("no matching event yet")

// Assertion waits for events to show up in the store
type Assertion struct {
	store          *Store
	timeout        time.Duration
	interval       time.Duration
	negativeWindow time.Duration

	mu       sync.RWMutex
	disabled map[string]bool
}

func NewAssertion(store *Store, timeout, interval, negativeWindow time.Duration) *Assertion {
	return &Assertion{
		store:          store,
		timeout:        timeout,
		interval:       interval,
		negativeWindow: negativeWindow,
		disabled:       make(map[string]bool),
	}
}

// SetEnabled records whether the platform publishes eventType. Assertions on
// disabled types pass without waiting.
func (a *Assertion) SetEnabled(eventType string, enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if enabled {
		delete(a.disabled, eventType)
	} else {
		a.disabled[eventType] = true
	}
}

func (a *Assertion) Enabled(eventType string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return !a.disabled[eventType]
}

// AssertEventRaised waits until eventType is seen for the aggregate and
// returns the latest match
func (a *Assertion) AssertEventRaised(ctx context.Context, eventType string, aggregateID int64) (*Match, error) {
	return a.AssertEventRaisedWhere(ctx, Filter{Type: eventType, AggregateRootID: aggregateID})
}

// AssertEventRaisedWhere waits for an event matching the filter
func (a *Assertion) AssertEventRaisedWhere(ctx context.Context, f Filter) (*Match, error) {
	if !a.Enabled(f.Type) {
		return &Match{Skipped: true, Event: Event{Type: f.Type, AggregateRootID: f.AggregateRootID}}, nil
	}

	e, err := backoff.Retry(ctx, func() (Event, error) {
		found := a.store.Find(f)
		if len(found) == 0 {
			return Event{}, errNotYet
		}
		return found[len(found)-1], nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(a.interval)),
		backoff.WithMaxElapsedTime(a.timeout),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.WrapEventNotFound(f.Type, f.AggregateRootID, a.store.TypesFor(f.AggregateRootID))
	}
	return &Match{Event: e}, nil
}

// AssertEventNotRaised watches the store for the negative window and fails
// as soon as a matching event appears
func (a *Assertion) AssertEventNotRaised(ctx context.Context, eventType string, aggregateID int64) error {
	f := Filter{Type: eventType, AggregateRootID: aggregateID}
	deadline := time.NewTimer(a.negativeWindow)
	defer deadline.Stop()
	tick := time.NewTicker(a.interval)
	defer tick.Stop()

	for {
		if len(a.store.Find(f)) > 0 {
			return apperrors.WrapUnexpectedEvent(eventType, aggregateID)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			if len(a.store.Find(f)) > 0 {
				return apperrors.WrapUnexpectedEvent(eventType, aggregateID)
			}
			return nil
		case <-tick.C:
		}
	}
}

// Match is an event found by an assertion
type Match struct {
	Event   Event
	Skipped bool
}

// Data reads a gjson path from the event payload
func (m *Match) Data(path string) gjson.Result {
	return gjson.GetBytes(m.Event.Data, path)
}

// ExtractingData narrows the match to one payload value
func (m *Match) ExtractingData(path string) *Extracted {
	x := &Extracted{match: m, path: path}
	if !m.Skipped {
		x.value = m.Data(path)
	}
	return x
}

// ExtractingBusinessDate narrows the match to its business date
func (m *Match) ExtractingBusinessDate() *Extracted {
	return &Extracted{
		match: m,
		path:  "businessDate",
		value: gjson.Result{Type: gjson.String, Str: m.Event.BusinessDate, Raw: `"` + m.Event.BusinessDate + `"`},
	}
}

// Extracted is a single value pulled out of a matched event
type Extracted struct {
	match *Match
	path  string
	value gjson.Result
}

func (x *Extracted) Value() gjson.Result {
	return x.value
}

// Exists fails if the path is absent from the payload
func (x *Extracted) Exists() error {
	if x.match.Skipped || x.value.Exists() {
		return nil
	}
	return apperrors.WrapEventDataMismatch(x.match.Event.Type, x.path, "a value", "nothing")
}

// IsEqualTo compares the value's string form
func (x *Extracted) IsEqualTo(expected string) error {
	if x.match.Skipped {
		return nil
	}
	if !x.value.Exists() || x.value.String() != expected {
		return apperrors.WrapEventDataMismatch(x.match.Event.Type, x.path, expected, describe(x.value))
	}
	return nil
}

// IsDecimal compares numerically, so 10 equals 10.00
func (x *Extracted) IsDecimal(expected decimal.Decimal) error {
	if x.match.Skipped {
		return nil
	}
	actual, err := decimal.NewFromString(x.value.String())
	if !x.value.Exists() || err != nil || !actual.Equal(expected) {
		return apperrors.WrapEventDataMismatch(x.match.Event.Type, x.path, expected, describe(x.value))
	}
	return nil
}

// IsTrue / IsFalse require a JSON boolean; the string "true" does not pass
func (x *Extracted) IsTrue() error {
	return x.isBool(gjson.True)
}

func (x *Extracted) IsFalse() error {
	return x.isBool(gjson.False)
}

func (x *Extracted) isBool(expected gjson.Type) error {
	if x.match.Skipped || x.value.Type == expected {
		return nil
	}
	return apperrors.WrapEventDataMismatch(x.match.Event.Type, x.path, expected, describe(x.value))
}

func describe(v gjson.Result) string {
	if !v.Exists() {
		return "<missing>"
	}
	return v.String()
}
