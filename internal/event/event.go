package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is one external business event captured from the platform
type Event struct {
	ID              int64           `json:"id"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	CreatedAt       time.Time       `json:"createdAt"`
	BusinessDate    string          `json:"businessDate"`
	AggregateRootID int64           `json:"aggregateRootId"`
	TenantID        string          `json:"tenantId"`
	Data            json.RawMessage `json:"data"`
}

// Decode parses a JSON event envelope
func Decode(raw []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("decode event: missing type")
	}
	return e, nil
}

// Filter selects events by type and aggregate. Zero fields match anything.
type Filter struct {
	Type            string
	AggregateRootID int64
	Match           func(Event) bool
}

func (f Filter) Matches(e Event) bool {
	if f.Type != "" && f.Type != e.Type {
		return false
	}
	if f.AggregateRootID != 0 && f.AggregateRootID != e.AggregateRootID {
		return false
	}
	if f.Match != nil && !f.Match(e) {
		return false
	}
	return true
}
