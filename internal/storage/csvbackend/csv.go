package csvbackend

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FranksOps/namevet/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

// headers defines the CSV column order
var headers = []string{
	"id",
	"run_id",
	"rank",
	"name",
	"label",
	"primary",
	"score",
	"bucket",
	"free_suffixes",
	"similar_count",
	"created_at",
}

// New creates a new CSV-backed storage.Backend. A header row is written to
// new files.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("csvbackend: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("csvbackend: %w", err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(headers); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvbackend: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvbackend: %w", err)
		}
	}

	return &csvBackend{
		file: f,
	}, nil
}

func (b *csvBackend) Save(ctx context.Context, r *storage.Record) error {
	row := []string{
		r.ID.String(),
		r.RunID.String(),
		strconv.Itoa(r.Rank),
		r.Name,
		r.Label,
		r.Primary,
		strconv.Itoa(r.Score),
		r.Bucket,
		strings.Join(r.FreeSuffixes, " "),
		strconv.Itoa(r.SimilarCount),
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}

	w := csv.NewWriter(b.file)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}

	return nil
}

func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("csvbackend: %w", err)
	}
	defer func() {
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []*storage.Record{}, nil
		}
		return nil, fmt.Errorf("csvbackend: %w", err)
	}

	matched := []*storage.Record{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvbackend: %w", err)
		}

		rec, ok := parseRow(row)
		if !ok {
			continue // skip malformed rows
		}
		if filter.Match(rec) {
			matched = append(matched, rec)
		}
	}

	return filter.Window(matched), nil
}

func parseRow(row []string) (*storage.Record, bool) {
	if len(row) != len(headers) {
		return nil, false
	}
	id, err := uuid.Parse(row[0])
	if err != nil {
		return nil, false
	}
	runID, err := uuid.Parse(row[1])
	if err != nil {
		return nil, false
	}

	rank, _ := strconv.Atoi(row[2])
	score, _ := strconv.Atoi(row[6])
	similar, _ := strconv.Atoi(row[9])
	createdAt, _ := time.Parse(time.RFC3339Nano, row[10])

	return &storage.Record{
		ID:           id,
		RunID:        runID,
		Rank:         rank,
		Name:         row[3],
		Label:        row[4],
		Primary:      row[5],
		Score:        score,
		Bucket:       row[7],
		FreeSuffixes: strings.Fields(row[8]),
		SimilarCount: similar,
		CreatedAt:    createdAt,
	}, true
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
