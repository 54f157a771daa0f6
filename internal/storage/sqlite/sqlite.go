package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/FranksOps/namevet/internal/storage"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS candidates (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	name TEXT NOT NULL,
	label TEXT NOT NULL,
	primary_status TEXT NOT NULL,
	score INTEGER NOT NULL,
	bucket TEXT NOT NULL,
	free_suffixes TEXT NOT NULL,
	similar_count INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS candidates_run ON candidates (run_id);
CREATE INDEX IF NOT EXISTS candidates_label ON candidates (label);
`

// New creates a new SQLite-backed storage.Backend.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, r *storage.Record) error {
	suffixesJSON, err := json.Marshal(r.FreeSuffixes)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	query := `
	INSERT INTO candidates (
		id, run_id, rank, name, label, primary_status, score, bucket, free_suffixes, similar_count, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = b.db.ExecContext(ctx, query,
		r.ID.String(),
		r.RunID.String(),
		r.Rank,
		r.Name,
		r.Label,
		r.Primary,
		r.Score,
		r.Bucket,
		string(suffixesJSON),
		r.SimilarCount,
		r.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save %s: %w", r.Label, err)
	}

	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	query := `SELECT id, run_id, rank, name, label, primary_status, score, bucket, free_suffixes, similar_count, created_at FROM candidates WHERE 1=1`
	args := []any{}

	if filter.RunID != uuid.Nil {
		query += ` AND run_id = ?`
		args = append(args, filter.RunID.String())
	}
	if label := filter.Label(); label != "" {
		query += ` AND label = ?`
		args = append(args, label)
	}
	if filter.MinScore != nil {
		query += ` AND score >= ?`
		args = append(args, *filter.MinScore)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since.UTC())
	}

	query += ` ORDER BY created_at DESC, rank ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	results := []*storage.Record{}
	for rows.Next() {
		var r storage.Record
		var suffixesJSON string

		err := rows.Scan(
			&r.ID, &r.RunID, &r.Rank, &r.Name, &r.Label, &r.Primary,
			&r.Score, &r.Bucket, &suffixesJSON, &r.SimilarCount, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}

		if err := json.Unmarshal([]byte(suffixesJSON), &r.FreeSuffixes); err != nil {
			return nil, fmt.Errorf("sqlite: free_suffixes: %w", err)
		}

		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
