package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// LoanLock is a row of m_loan_account_locks
type LoanLock struct {
	LoanID       int64          `db:"loan_id"`
	LockOwner    string         `db:"lock_owner"`
	LockPlacedOn time.Time      `db:"lock_placed_on"`
	Error        sql.NullString `db:"error"`
}

type loanLockRepository struct {
	db *sqlx.DB
}

func NewLoanLockRepository(db *sqlx.DB) LoanLockRepository {
	return &loanLockRepository{db: db}
}

func (r *loanLockRepository) GetLock(ctx context.Context, loanID int64) (*LoanLock, error) {
	query := `
		SELECT loan_id, lock_owner, lock_placed_on, error
		FROM m_loan_account_locks
		WHERE loan_id = $1
	`

	var lock LoanLock
	err := r.db.GetContext(ctx, &lock, query, loanID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lock, nil
}
