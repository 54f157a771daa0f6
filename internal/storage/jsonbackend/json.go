// Package jsonbackend keeps candidate records as newline-delimited JSON, one
// record per line, appended in the order runs finish.
package jsonbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/FranksOps/namevet/internal/storage"
)

var _ storage.Backend = (*ndjsonStore)(nil)

type ndjsonStore struct {
	mu   sync.Mutex
	path string
	out  *os.File
	enc  *json.Encoder
}

// New opens (or creates) the NDJSON file at filePath for appending.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("jsonbackend: open %s: %w", filePath, err)
	}
	return &ndjsonStore{path: filePath, out: f, enc: json.NewEncoder(f)}, nil
}

// Save appends one line. Encoder.Encode terminates each value with '\n'.
func (s *ndjsonStore) Save(ctx context.Context, r *storage.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(r); err != nil {
		return fmt.Errorf("jsonbackend: save %s: %w", r.Label, err)
	}
	return nil
}

// Query streams the whole file through filter.Match and hands the survivors
// to filter.Window for ordering and paging.
func (s *ndjsonStore) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("jsonbackend: %w", err)
	}
	defer in.Close()

	dec := json.NewDecoder(in)
	matched := []*storage.Record{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r := new(storage.Record)
		err := dec.Decode(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("jsonbackend: decode: %w", err)
		}
		if filter.Match(r) {
			matched = append(matched, r)
		}
	}

	return filter.Window(matched), nil
}

func (s *ndjsonStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Close()
}
