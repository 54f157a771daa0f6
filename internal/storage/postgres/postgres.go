package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FranksOps/namevet/internal/storage"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS candidates (
	id UUID PRIMARY KEY,
	run_id UUID NOT NULL,
	rank INTEGER NOT NULL,
	name TEXT NOT NULL,
	label TEXT NOT NULL,
	primary_status TEXT NOT NULL,
	score INTEGER NOT NULL,
	bucket TEXT NOT NULL,
	free_suffixes TEXT[] NOT NULL,
	similar_count INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS candidates_run ON candidates (run_id);
CREATE INDEX IF NOT EXISTS candidates_label ON candidates (label);
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	_, err = pool.Exec(ctx, schema)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, r *storage.Record) error {
	query := `
	INSERT INTO candidates (
		id, run_id, rank, name, label, primary_status, score, bucket, free_suffixes, similar_count, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	suffixes := r.FreeSuffixes
	if suffixes == nil {
		suffixes = []string{}
	}

	_, err := b.pool.Exec(ctx, query,
		r.ID,
		r.RunID,
		r.Rank,
		r.Name,
		r.Label,
		r.Primary,
		r.Score,
		r.Bucket,
		suffixes,
		r.SimilarCount,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: save %s: %w", r.Label, err)
	}

	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	query := `SELECT id, run_id, rank, name, label, primary_status, score, bucket, free_suffixes, similar_count, created_at FROM candidates WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.RunID != uuid.Nil {
		query += fmt.Sprintf(` AND run_id = $%d`, paramCount)
		args = append(args, filter.RunID)
		paramCount++
	}
	if label := filter.Label(); label != "" {
		query += fmt.Sprintf(` AND label = $%d`, paramCount)
		args = append(args, label)
		paramCount++
	}
	if filter.MinScore != nil {
		query += fmt.Sprintf(` AND score >= $%d`, paramCount)
		args = append(args, *filter.MinScore)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}

	query += ` ORDER BY created_at DESC, rank ASC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	results := []*storage.Record{}
	for rows.Next() {
		var r storage.Record
		err := rows.Scan(
			&r.ID, &r.RunID, &r.Rank, &r.Name, &r.Label, &r.Primary,
			&r.Score, &r.Bucket, &r.FreeSuffixes, &r.SimilarCount, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
