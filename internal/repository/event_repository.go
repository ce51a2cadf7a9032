package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/loan-e2e/internal/event"
	"github.com/segyhp/loan-e2e/pkg/utils"
)

// externalEventRow is a row of m_external_event. The platform is expected to
// run with JSON event serialization, so data holds the JSON payload.
type externalEventRow struct {
	ID              int64         `db:"id"`
	Type            string        `db:"type"`
	Category        string        `db:"category"`
	Data            []byte        `db:"data"`
	CreatedAt       time.Time     `db:"created_at"`
	BusinessDate    time.Time     `db:"business_date"`
	AggregateRootID sql.NullInt64 `db:"aggregate_root_id"`
}

func (r externalEventRow) toEvent() event.Event {
	return event.Event{
		ID:              r.ID,
		Type:            r.Type,
		Category:        r.Category,
		CreatedAt:       r.CreatedAt,
		BusinessDate:    r.BusinessDate.Format(utils.ISODateOnly),
		AggregateRootID: r.AggregateRootID.Int64,
		Data:            r.Data,
	}
}

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) MaxID(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(MAX(id), 0) FROM m_external_event`

	var id int64
	if err := r.db.GetContext(ctx, &id, query); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *eventRepository) ListAfter(ctx context.Context, afterID int64, limit int) ([]event.Event, error) {
	query := `
		SELECT id, type, category, data, created_at, business_date, aggregate_root_id
		FROM m_external_event
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`

	var rows []externalEventRow
	if err := r.db.SelectContext(ctx, &rows, query, afterID, limit); err != nil {
		return nil, err
	}

	events := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toEvent())
	}
	return events, nil
}

func (r *eventRepository) CountFor(ctx context.Context, eventType string, aggregateRootID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM m_external_event
		WHERE type = $1 AND aggregate_root_id = $2
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, eventType, aggregateRootID); err != nil {
		return 0, err
	}
	return count, nil
}
