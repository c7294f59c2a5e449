package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Event is one row of the analytics log.
type Event struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	Name      string
	Model     string
	Learner   string
	SessionID string
	Payload   map[string]any
	Synced    bool
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit        int       // max results (0 = unlimited)
	After        int64     // sequence > After
	Name         string    // exact event name
	From         time.Time // timestamp >= From
	UnsyncedOnly bool
	Newest       bool // newest first instead of oldest first
}

// NameCount is an event name with its number of occurrences.
type NameCount struct {
	Name  string
	Count int
}

// EventRepo is the append-only analytics log.
type EventRepo interface {
	// Append stores e and returns its sequence number.
	Append(ctx context.Context, e Event) (int64, error)

	// Query lists events matching opts.
	Query(ctx context.Context, opts QueryOpts) ([]Event, error)

	// MarkSynced flags events as delivered to the remote sink.
	MarkSynced(ctx context.Context, ids []int64) error

	// CountByName aggregates events by name, most frequent first.
	CountByName(ctx context.Context) ([]NameCount, error)
}

// sequenceCounter hands out the global monotonic sequence stored in its
// own one-row table. The mutex serializes within the process; the
// RETURNING clause makes the increment atomic in the database.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) Append(ctx context.Context, e Event) (int64, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return 0, err
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	var payload any
	if len(e.Payload) > 0 {
		b, err := json.Marshal(e.Payload)
		if err != nil {
			return 0, fmt.Errorf("marshal event payload: %w", err)
		}
		payload = string(b)
	}

	query, args := sqlite().Insert(eventsTable).
		Columns(colSequence, colTimestamp, colName, colModel, colLearner, colSession, colPayload, colSynced).
		Values(seqNum, e.Timestamp.UnixMilli(), e.Name, e.Model, e.Learner, e.SessionID, payload, false).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("save event: %w", err)
	}
	return seqNum, nil
}

func (r *eventRepo) Query(ctx context.Context, opts QueryOpts) ([]Event, error) {
	d := sqlite()
	sel := d.Select(colID, colSequence, colTimestamp, colName, colModel, colLearner, colSession, colPayload, colSynced).
		From(d.Table(eventsTable))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT(colSequence, opts.After))
	}
	if opts.Name != "" {
		preds = append(preds, entsql.EQ(colName, opts.Name))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE(colTimestamp, opts.From.UnixMilli()))
	}
	if opts.UnsyncedOnly {
		preds = append(preds, entsql.EQ(colSynced, false))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Newest {
		sel.OrderBy(entsql.Desc(colSequence))
	} else {
		sel.OrderBy(colSequence)
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e       Event
			ts      int64
			payload sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &ts, &e.Name, &e.Model, &e.Learner, &e.SessionID, &payload, &e.Synced); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		if payload.Valid && payload.String != "" {
			if err := json.Unmarshal([]byte(payload.String), &e.Payload); err != nil {
				return nil, fmt.Errorf("decode payload of event %d: %w", e.ID, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) MarkSynced(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query, qargs := sqlite().Update(eventsTable).
		Set(colSynced, true).
		Where(entsql.In(colID, args...)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, qargs...); err != nil {
		return fmt.Errorf("mark events synced: %w", err)
	}
	return nil
}

func (r *eventRepo) CountByName(ctx context.Context) ([]NameCount, error) {
	d := sqlite()
	query, args := d.Select(colName, entsql.As(entsql.Count("*"), "n")).
		From(d.Table(eventsTable)).
		GroupBy(colName).
		OrderBy(entsql.Desc("n"), colName).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	var out []NameCount
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}
