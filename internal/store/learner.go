package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// LearnerRepo remembers who has played on this machine.
type LearnerRepo interface {
	// Touch records that name played now.
	Touch(ctx context.Context, name string) error

	// Last returns the most recently seen learner, or "" if none.
	Last(ctx context.Context) (string, error)
}

type learnerRepo struct {
	db *sql.DB
}

func (r *learnerRepo) Touch(ctx context.Context, name string) error {
	query, args := sqlite().Insert(learnersTable).
		Columns(colName, colLastSeen).
		Values(name, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns(colName),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("touch learner: %w", err)
	}
	return nil
}

func (r *learnerRepo) Last(ctx context.Context) (string, error) {
	d := sqlite()
	query, args := d.Select(colName).
		From(d.Table(learnersTable)).
		OrderBy(entsql.Desc(colLastSeen), entsql.Desc(colID)).
		Limit(1).
		Query()
	var name string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query last learner: %w", err)
	}
	return name, nil
}
