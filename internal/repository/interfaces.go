package repository

import (
	"context"

	"github.com/segyhp/loan-e2e/internal/event"
)

// EventRepository reads the platform's external event table
type EventRepository interface {
	event.Reader

	// CountFor counts stored events of a type for an aggregate
	CountFor(ctx context.Context, eventType string, aggregateRootID int64) (int, error)
}

// LoanLockRepository reads the locks COB places on loan accounts
type LoanLockRepository interface {
	// GetLock returns nil when the loan is not locked
	GetLock(ctx context.Context, loanID int64) (*LoanLock, error)
}
