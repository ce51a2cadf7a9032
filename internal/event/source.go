package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Sink receives decoded events from a source
type Sink func(Event)

// Source feeds platform events into the harness. Start fixes the position
// reading begins from; Run then delivers everything after it until ctx is
// cancelled.
type Source interface {
	Name() string
	Start(ctx context.Context) error
	Run(ctx context.Context, sink Sink) error
}

// Collect fixes the source's start position, then runs it in the background
// appending to store. Events raised after Collect returns are delivered.
// The returned stop function cancels the source and waits for it to return.
func Collect(ctx context.Context, src Source, store *Store, logger *zap.Logger) (stop func(), err error) {
	if err := src.Start(ctx); err != nil {
		return nil, fmt.Errorf("start %s: %w", src.Name(), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		logger.Info("event source started", zap.String("source", src.Name()))
		if err := src.Run(ctx, store.Add); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("event source stopped", zap.String("source", src.Name()), zap.Error(err))
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

// StreamReader is the part of *redis.Client the stream source needs
type StreamReader interface {
	XRead(ctx context.Context, a *redis.XReadArgs) *redis.XStreamSliceCmd
	XRevRangeN(ctx context.Context, stream, start, stop string, count int64) *redis.XMessageSliceCmd
}

// RedisSource tails a Redis stream the platform's event bridge writes to.
// Each entry carries the JSON envelope in its "event" field.
type RedisSource struct {
	client StreamReader
	stream string
	block  time.Duration
	retry  time.Duration
	logger *zap.Logger

	lastID string
}

const (
	streamEventField = "event"
	// streamOrigin reads a stream from its first entry
	streamOrigin = "0-0"
)

func NewRedisSource(client StreamReader, stream string, logger *zap.Logger) *RedisSource {
	return &RedisSource{
		client: client,
		stream: stream,
		block:  time.Second,
		retry:  500 * time.Millisecond,
		logger: logger,
	}
}

func (s *RedisSource) Name() string {
	return "redis:" + s.stream
}

// Start pins the cursor to the newest entry so that entries added later,
// including between two idle reads, are all delivered
func (s *RedisSource) Start(ctx context.Context) error {
	latest, err := s.client.XRevRangeN(ctx, s.stream, "+", "-", 1).Result()
	if err != nil {
		return err
	}
	s.lastID = streamOrigin
	if len(latest) > 0 {
		s.lastID = latest[0].ID
	}
	s.logger.Debug("stream position fixed", zap.String("stream", s.stream), zap.String("id", s.lastID))
	return nil
}

// Run reads entries after the position fixed by Start
func (s *RedisSource) Run(ctx context.Context, sink Sink) error {
	lastID := s.lastID
	if lastID == "" {
		lastID = streamOrigin
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		streams, err := s.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{s.stream, lastID},
			Count:   100,
			Block:   s.block,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("stream read failed", zap.String("stream", s.stream), zap.Error(err))
			if !sleep(ctx, s.retry) {
				return ctx.Err()
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				raw, ok := msg.Values[streamEventField].(string)
				if !ok {
					s.logger.Warn("stream entry without event field", zap.String("id", msg.ID))
					continue
				}
				e, err := Decode([]byte(raw))
				if err != nil {
					s.logger.Warn("undecodable stream entry", zap.String("id", msg.ID), zap.Error(err))
					continue
				}
				sink(e)
			}
		}
	}
}

// Reader pages through the platform's external event table
type Reader interface {
	MaxID(ctx context.Context) (int64, error)
	ListAfter(ctx context.Context, afterID int64, limit int) ([]Event, error)
}

// OutboxSource polls the external event table by increasing id. Ids are
// assigned before commit, so each poll re-reads a trailing window below the
// highest id seen and skips rows it already delivered.
type OutboxSource struct {
	reader       Reader
	pollInterval time.Duration
	batchSize    int
	lookback     int64
	logger       *zap.Logger

	startID int64
	lastID  int64
	seen    map[int64]struct{}
}

func NewOutboxSource(reader Reader, pollInterval time.Duration, logger *zap.Logger) *OutboxSource {
	return &OutboxSource{
		reader:       reader,
		pollInterval: pollInterval,
		batchSize:    200,
		lookback:     50,
		logger:       logger,
	}
}

func (s *OutboxSource) Name() string {
	return "outbox"
}

// Start records the current max id; rows at or below it are never delivered
func (s *OutboxSource) Start(ctx context.Context) error {
	maxID, err := s.reader.MaxID(ctx)
	if err != nil {
		return err
	}
	s.startID = maxID
	s.lastID = maxID
	s.seen = make(map[int64]struct{})
	return nil
}

// Run polls for rows after the position fixed by Start
func (s *OutboxSource) Run(ctx context.Context, sink Sink) error {
	if s.seen == nil {
		s.seen = make(map[int64]struct{})
	}

	t := time.NewTicker(s.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.drain(ctx, sink)
		}
	}
}

func (s *OutboxSource) drain(ctx context.Context, sink Sink) {
	cursor := max(s.lastID-s.lookback, s.startID)
	for {
		events, err := s.reader.ListAfter(ctx, cursor, s.batchSize)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("outbox poll failed", zap.Int64("after", cursor), zap.Error(err))
			}
			return
		}
		for _, e := range events {
			cursor = e.ID
			if _, dup := s.seen[e.ID]; dup {
				continue
			}
			s.seen[e.ID] = struct{}{}
			s.lastID = max(s.lastID, e.ID)
			sink(e)
		}
		if len(events) < s.batchSize {
			break
		}
	}

	// ids below the window are never re-read
	for id := range s.seen {
		if id <= s.lastID-s.lookback {
			delete(s.seen, id)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
