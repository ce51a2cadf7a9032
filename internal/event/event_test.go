package event

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/domain"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

func loanEvent(id int64, eventType string, loanID int64, data string) Event {
	return Event{
		ID:              id,
		Type:            eventType,
		Category:        domain.EventCategoryLoan,
		BusinessDate:    "2024-03-01",
		AggregateRootID: loanID,
		Data:            json.RawMessage(data),
	}
}

func newTestAssertion(store *Store) *Assertion {
	return NewAssertion(store, 300*time.Millisecond, 10*time.Millisecond, 100*time.Millisecond)
}

func TestDecode(t *testing.T) {
	e, err := Decode([]byte(`{"id":3,"type":"LoanReAgeBusinessEvent","category":"Loan","businessDate":"2024-03-01","aggregateRootId":17,"data":{"loanId":17}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.EventLoanReAge, e.Type)
	assert.Equal(t, int64(17), e.AggregateRootID)

	_, err = Decode([]byte(`{"id":3}`))
	assert.Error(t, err)
	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestStore_FindAndTypes(t *testing.T) {
	store := NewStore()
	store.Add(loanEvent(1, domain.EventLoanApproved, 17, `{}`))
	store.Add(loanEvent(2, domain.EventLoanDisbursal, 17, `{}`))
	store.Add(loanEvent(3, domain.EventLoanApproved, 18, `{}`))
	store.Add(loanEvent(4, domain.EventLoanApproved, 17, `{}`))

	found := store.Find(Filter{Type: domain.EventLoanApproved, AggregateRootID: 17})
	require.Len(t, found, 2)
	assert.Equal(t, int64(4), found[1].ID)

	assert.Equal(t, []string{domain.EventLoanApproved, domain.EventLoanDisbursal}, store.TypesFor(17))
	assert.Len(t, store.Find(Filter{}), 4)

	store.Reset()
	assert.Equal(t, 0, store.Len())
}

func TestAssertion_RaisedLater(t *testing.T) {
	store := NewStore()
	a := newTestAssertion(store)

	go func() {
		time.Sleep(50 * time.Millisecond)
		store.Add(loanEvent(1, domain.EventLoanReAge, 17, `{"loanId":17,"reAgeTransaction":{"amount":750.50,"reversed":false}}`))
	}()

	match, err := a.AssertEventRaised(context.Background(), domain.EventLoanReAge, 17)
	require.NoError(t, err)

	assert.NoError(t, match.ExtractingData("reAgeTransaction.amount").IsDecimal(decimal.RequireFromString("750.5")))
	assert.NoError(t, match.ExtractingData("reAgeTransaction.reversed").IsFalse())
	assert.True(t, errors.Is(match.ExtractingData("reAgeTransaction.reversed").IsTrue(), apperrors.ErrEventDataMismatch))
	assert.True(t, errors.Is(match.ExtractingData("loanId").IsFalse(), apperrors.ErrEventDataMismatch))
	assert.NoError(t, match.ExtractingData("loanId").IsEqualTo("17"))
	assert.NoError(t, match.ExtractingBusinessDate().IsEqualTo("2024-03-01"))

	err = match.ExtractingData("reAgeTransaction.amount").IsDecimal(decimal.NewFromInt(700))
	assert.True(t, errors.Is(err, apperrors.ErrEventDataMismatch))

	err = match.ExtractingData("missing.path").Exists()
	assert.True(t, errors.Is(err, apperrors.ErrEventDataMismatch))
	assert.Contains(t, match.ExtractingData("missing.path").IsEqualTo("x").Error(), "<missing>")
}

func TestAssertion_NotFoundListsSeenTypes(t *testing.T) {
	store := NewStore()
	store.Add(loanEvent(1, domain.EventLoanApproved, 17, `{}`))
	a := newTestAssertion(store)

	_, err := a.AssertEventRaised(context.Background(), domain.EventLoanReAge, 17)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrEventNotFound))
	assert.Contains(t, err.Error(), domain.EventLoanApproved)
}

func TestAssertion_Where(t *testing.T) {
	store := NewStore()
	store.Add(loanEvent(1, domain.EventLoanRepayment, 17, `{"id":100,"amount":250}`))
	store.Add(loanEvent(2, domain.EventLoanRepayment, 17, `{"id":101,"amount":300}`))
	a := newTestAssertion(store)

	match, err := a.AssertEventRaisedWhere(context.Background(), Filter{
		Type:            domain.EventLoanRepayment,
		AggregateRootID: 17,
		Match: func(e Event) bool {
			return (&Match{Event: e}).Data("id").Int() == 100
		},
	})
	require.NoError(t, err)
	assert.NoError(t, match.ExtractingData("amount").IsDecimal(decimal.NewFromInt(250)))
}

func TestAssertion_Disabled(t *testing.T) {
	a := newTestAssertion(NewStore())
	a.SetEnabled(domain.EventLoanReAge, false)

	start := time.Now()
	match, err := a.AssertEventRaised(context.Background(), domain.EventLoanReAge, 17)

	require.NoError(t, err)
	assert.True(t, match.Skipped)
	assert.NoError(t, match.ExtractingData("anything").IsEqualTo("whatever"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	a.SetEnabled(domain.EventLoanReAge, true)
	assert.True(t, a.Enabled(domain.EventLoanReAge))
}

func TestAssertion_NotRaised(t *testing.T) {
	store := NewStore()
	a := newTestAssertion(store)

	assert.NoError(t, a.AssertEventNotRaised(context.Background(), domain.EventLoanReAge, 17))

	go func() {
		time.Sleep(20 * time.Millisecond)
		store.Add(loanEvent(1, domain.EventLoanReAge, 17, `{}`))
	}()
	err := a.AssertEventNotRaised(context.Background(), domain.EventLoanReAge, 17)
	assert.True(t, errors.Is(err, apperrors.ErrUnexpectedEvent))
}

func TestAssertion_ContextCancelled(t *testing.T) {
	a := NewAssertion(NewStore(), time.Minute, 10*time.Millisecond, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := a.AssertEventRaised(ctx, domain.EventLoanReAge, 17)
	assert.Error(t, err)
	assert.Error(t, a.AssertEventNotRaised(ctx, domain.EventLoanReAge, 17))
}

type fakeStreamReader struct {
	mu      sync.Mutex
	tail    []redis.XMessage
	batches [][]redis.XStream
	lastIDs []string
}

func (f *fakeStreamReader) XRevRangeN(_ context.Context, _, _, _ string, _ int64) *redis.XMessageSliceCmd {
	return redis.NewXMessageSliceCmdResult(f.tail, nil)
}

func (f *fakeStreamReader) XRead(ctx context.Context, a *redis.XReadArgs) *redis.XStreamSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastIDs = append(f.lastIDs, a.Streams[1])
	if len(f.batches) == 0 {
		select {
		case <-ctx.Done():
			return redis.NewXStreamSliceCmdResult(nil, ctx.Err())
		case <-time.After(5 * time.Millisecond):
			return redis.NewXStreamSliceCmdResult(nil, redis.Nil)
		}
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return redis.NewXStreamSliceCmdResult(batch, nil)
}

func (f *fakeStreamReader) push(batch []redis.XStream) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
}

func (f *fakeStreamReader) seenIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lastIDs...)
}

func TestRedisSource(t *testing.T) {
	reader := &fakeStreamReader{batches: [][]redis.XStream{{{
		Stream: "external-events",
		Messages: []redis.XMessage{
			{ID: "1-0", Values: map[string]interface{}{"event": `{"id":1,"type":"LoanApprovedBusinessEvent","aggregateRootId":17}`}},
			{ID: "2-0", Values: map[string]interface{}{"other": "x"}},
			{ID: "3-0", Values: map[string]interface{}{"event": `{broken`}},
			{ID: "4-0", Values: map[string]interface{}{"event": `{"id":2,"type":"LoanDisbursalBusinessEvent","aggregateRootId":17}`}},
		},
	}}}}
	store := NewStore()
	stop, err := Collect(context.Background(), NewRedisSource(reader, "external-events", zap.NewNop()), store, zap.NewNop())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return store.Len() == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(reader.seenIDs()) > 1 }, time.Second, 5*time.Millisecond)
	stop()

	ids := reader.seenIDs()
	assert.Equal(t, "0-0", ids[0])
	assert.Equal(t, "4-0", ids[1])
	assert.Equal(t, domain.EventLoanDisbursal, store.All()[1].Type)
}

func TestRedisSource_EntryAddedBetweenIdleReads(t *testing.T) {
	reader := &fakeStreamReader{tail: []redis.XMessage{{ID: "7-0"}}}
	store := NewStore()
	stop, err := Collect(context.Background(), NewRedisSource(reader, "external-events", zap.NewNop()), store, zap.NewNop())
	require.NoError(t, err)
	defer stop()

	require.Eventually(t, func() bool { return len(reader.seenIDs()) >= 2 }, time.Second, time.Millisecond)
	reader.push([]redis.XStream{{
		Stream: "external-events",
		Messages: []redis.XMessage{
			{ID: "8-0", Values: map[string]interface{}{"event": `{"id":8,"type":"LoanReAgeBusinessEvent","aggregateRootId":17}`}},
		},
	}})

	require.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, domain.EventLoanReAge, store.All()[0].Type)
	for _, id := range reader.seenIDs() {
		assert.NotEqual(t, "$", id)
	}
	assert.Equal(t, "7-0", reader.seenIDs()[0])
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }
func (failingSource) Start(context.Context) error { return errors.New("connection refused") }
func (failingSource) Run(context.Context, Sink) error { return nil }

func TestCollect_StartFails(t *testing.T) {
	stop, err := Collect(context.Background(), failingSource{}, NewStore(), zap.NewNop())

	assert.Nil(t, stop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start failing")
}

type fakeReader struct {
	mu     sync.Mutex
	maxID  int64
	rows   []Event
	afters []int64
}

func (f *fakeReader) MaxID(context.Context) (int64, error) {
	return f.maxID, nil
}

func (f *fakeReader) insert(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, e)
	slices.SortFunc(f.rows, func(a, b Event) int { return cmp.Compare(a.ID, b.ID) })
}

func (f *fakeReader) ListAfter(_ context.Context, afterID int64, limit int) ([]Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.afters = append(f.afters, afterID)
	var out []Event
	for _, e := range f.rows {
		if e.ID > afterID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestOutboxSource(t *testing.T) {
	reader := &fakeReader{
		maxID: 10,
		rows: []Event{
			loanEvent(9, domain.EventLoanCreated, 17, `{}`),
			loanEvent(11, domain.EventLoanApproved, 17, `{}`),
			loanEvent(12, domain.EventLoanDisbursal, 17, `{}`),
			loanEvent(13, domain.EventLoanBalanceChanged, 17, `{}`),
		},
	}
	src := NewOutboxSource(reader, 5*time.Millisecond, zap.NewNop())
	src.batchSize = 2
	store := NewStore()

	stop, err := Collect(context.Background(), src, store, zap.NewNop())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return store.Len() == 3 }, time.Second, 5*time.Millisecond)
	stop()

	all := store.All()
	assert.Equal(t, int64(11), all[0].ID)
	assert.Equal(t, int64(13), all[2].ID)
	assert.Empty(t, store.Find(Filter{Type: domain.EventLoanCreated}))
}

func TestOutboxSource_LateCommittedRow(t *testing.T) {
	reader := &fakeReader{
		maxID: 10,
		rows: []Event{
			loanEvent(11, domain.EventLoanApproved, 17, `{}`),
			loanEvent(13, domain.EventLoanDisbursal, 17, `{}`),
		},
	}
	store := NewStore()

	stop, err := Collect(context.Background(), NewOutboxSource(reader, 5*time.Millisecond, zap.NewNop()), store, zap.NewNop())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return store.Len() == 2 }, time.Second, 5*time.Millisecond)

	// id 12 was allocated before 13 but committed after it
	reader.insert(loanEvent(12, domain.EventLoanBalanceChanged, 17, `{}`))
	require.Eventually(t, func() bool { return store.Len() == 3 }, time.Second, 5*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	stop()

	assert.Equal(t, 3, store.Len())
	assert.Len(t, store.Find(Filter{Type: domain.EventLoanApproved}), 1)
	assert.Equal(t, int64(12), store.All()[2].ID)
}
