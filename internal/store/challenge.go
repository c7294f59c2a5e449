package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// ChallengeResult summarizes one challenge run.
type ChallengeResult struct {
	ID        int64
	Timestamp time.Time
	Model     string
	Learner   string
	SessionID string
	Policy    string
	Score     int
	Answered  int
	Correct   int
}

// ChallengeRepo stores challenge run summaries.
type ChallengeRepo interface {
	Save(ctx context.Context, r ChallengeResult) error

	// Best returns the highest-scoring run for model, or nil if none.
	Best(ctx context.Context, model string) (*ChallengeResult, error)

	// Recent returns the latest runs across all models.
	Recent(ctx context.Context, limit int) ([]ChallengeResult, error)
}

type challengeRepo struct {
	db *sql.DB
}

var challengeColumns = []string{
	colID, colTimestamp, colModel, colLearner, colSession, colPolicy, colScore, colAnswered, colCorrect,
}

func (r *challengeRepo) Save(ctx context.Context, c ChallengeResult) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	query, args := sqlite().Insert(challengesTable).
		Columns(colTimestamp, colModel, colLearner, colSession, colPolicy, colScore, colAnswered, colCorrect).
		Values(c.Timestamp.UnixMilli(), c.Model, c.Learner, c.SessionID, c.Policy, c.Score, c.Answered, c.Correct).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save challenge result: %w", err)
	}
	return nil
}

func (r *challengeRepo) Best(ctx context.Context, model string) (*ChallengeResult, error) {
	d := sqlite()
	query, args := d.Select(challengeColumns...).
		From(d.Table(challengesTable)).
		Where(entsql.EQ(colModel, model)).
		OrderBy(entsql.Desc(colScore), colTimestamp).
		Limit(1).
		Query()
	results, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

func (r *challengeRepo) Recent(ctx context.Context, limit int) ([]ChallengeResult, error) {
	d := sqlite()
	sel := d.Select(challengeColumns...).
		From(d.Table(challengesTable)).
		OrderBy(entsql.Desc(colTimestamp), entsql.Desc(colID))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	return r.query(ctx, query, args)
}

func (r *challengeRepo) query(ctx context.Context, query string, args []any) ([]ChallengeResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query challenge results: %w", err)
	}
	defer rows.Close()

	var out []ChallengeResult
	for rows.Next() {
		var (
			c  ChallengeResult
			ts int64
		)
		if err := rows.Scan(&c.ID, &ts, &c.Model, &c.Learner, &c.SessionID, &c.Policy, &c.Score, &c.Answered, &c.Correct); err != nil {
			return nil, fmt.Errorf("scan challenge result: %w", err)
		}
		c.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}
