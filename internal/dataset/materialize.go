package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"emotion-prep-go/internal/source"
	"emotion-prep-go/internal/types"
)

// Column names of a materialized split.
const (
	TextColumn    = "text"
	EmotionColumn = "emotion"
)

// ErrVocabulary means a label index has no entry in the label vocabulary.
var ErrVocabulary = errors.New("label vocabulary error")

// Sink persists one materialized split.
type Sink interface {
	Write(split string, t *types.Table) error
}

// DirSink writes each split to <Dir>/<split>.<Format>.
type DirSink struct {
	Dir    string
	Format string // "csv" (default) or "xlsx"
}

func (d DirSink) Path(split string) string {
	ext := strings.TrimPrefix(strings.ToLower(d.Format), ".")
	if ext == "" {
		ext = "csv"
	}
	return filepath.Join(d.Dir, split+"."+ext)
}

func (d DirSink) Write(split string, t *types.Table) error {
	return WriteTable(d.Path(split), t)
}

// Resolve maps every record's label index to its name, producing a text,emotion table.
func Resolve(split string, recs []types.Record, vocab types.Vocabulary) (*types.Table, error) {
	t := types.NewTable(TextColumn, EmotionColumn)
	t.Rows = make([][]string, 0, len(recs))
	for i, r := range recs {
		name, ok := vocab.Name(r.Label)
		if !ok {
			return nil, fmt.Errorf("%w: split %q row %d: label index %d not in vocabulary of %d names",
				ErrVocabulary, split, i, r.Label, len(vocab))
		}
		t.Append(r.Text, name)
	}
	return t, nil
}

// Materialize reads the requested splits from src, resolves labels and hands each
// table to sink. Every split is resolved before anything is written, so a bad
// split leaves no output behind. A nil sink skips persistence.
func Materialize(ctx context.Context, src source.Source, splits []string, sink Sink) (map[string]*types.Table, error) {
	available, err := src.Splits(ctx)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(available))
	for _, s := range available {
		have[s] = true
	}
	for _, s := range splits {
		if !have[s] {
			return nil, fmt.Errorf("%w: split %q not found (available: %s)",
				source.ErrDataSource, s, strings.Join(available, ", "))
		}
	}

	vocab, err := src.Vocabulary(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*types.Table, len(splits))
	for _, s := range splits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := src.Records(ctx, s)
		if err != nil {
			return nil, err
		}
		t, err := Resolve(s, recs, vocab)
		if err != nil {
			return nil, err
		}
		out[s] = t
	}

	if sink != nil {
		for _, s := range splits {
			if err := sink.Write(s, out[s]); err != nil {
				return nil, fmt.Errorf("write split %q: %w", s, err)
			}
		}
	}
	return out, nil
}
