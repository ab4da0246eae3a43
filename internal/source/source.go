// Package source reads labeled text datasets from external providers.
package source

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"emotion-prep-go/internal/types"
)

// ErrDataSource covers an unreachable source, a missing split and undecodable payloads.
var ErrDataSource = errors.New("data source error")

// Source exposes named splits of {text, label index} records and the shared vocabulary.
type Source interface {
	Splits(ctx context.Context) ([]string, error)
	Vocabulary(ctx context.Context) (types.Vocabulary, error)
	Records(ctx context.Context, split string) ([]types.Record, error)
}

// ProgressFunc is told how many rows of a split were fetched so far.
type ProgressFunc func(split string, fetched, total int)

func sourceErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDataSource, fmt.Sprintf(format, args...))
}

// MemorySource serves splits held in memory.
type MemorySource struct {
	Vocab types.Vocabulary
	Data  map[string][]types.Record
}

func (m *MemorySource) Splits(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(m.Data))
	for k := range m.Data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemorySource) Vocabulary(ctx context.Context) (types.Vocabulary, error) {
	return m.Vocab, nil
}

func (m *MemorySource) Records(ctx context.Context, split string) ([]types.Record, error) {
	recs, ok := m.Data[split]
	if !ok {
		return nil, sourceErr("split %q not found", split)
	}
	return append([]types.Record(nil), recs...), nil
}
