// Package pipeline normalizes text for emotion classification.
//
// Every text value goes through the same ordered steps: informal contraction
// fixes, full contraction expansion, lowercasing, whitespace normalization and
// punctuation normalization. Tables are then filtered silently; single strings
// fail loudly instead.
package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"emotion-prep-go/internal/types"
)

// Pipeline holds the immutable rule set and expander. It is safe for concurrent use.
type Pipeline struct {
	rules    []ContractionRule
	expander Expander
	steps    []Step
}

type Option func(*Pipeline)

// WithRules replaces the informal contraction rules. Order is preserved.
func WithRules(rules []ContractionRule) Option {
	return func(p *Pipeline) {
		p.rules = append([]ContractionRule(nil), rules...)
	}
}

// WithExpander swaps the full contraction expander.
func WithExpander(e Expander) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.expander = e
		}
	}
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		rules:    DefaultInformalRules(),
		expander: defaultExpander(),
	}
	for _, o := range opts {
		o(p)
	}
	p.steps = []Step{
		{Name: "fix_informal_contractions", Fn: p.FixInformalContractions},
		{Name: "expand_contractions", Fn: p.ExpandContractions},
		{Name: "lowercase", Fn: Lowercase},
		{Name: "normalize_whitespace", Fn: NormalizeWhitespace},
		{Name: "normalize_punctuation", Fn: NormalizePunctuation},
	}
	return p
}

var (
	sharedExpander     *LocalExpander
	sharedExpanderOnce sync.Once
)

func defaultExpander() Expander {
	sharedExpanderOnce.Do(func() { sharedExpander = NewLocalExpander() })
	return sharedExpander
}

// Rules returns a copy of the configured informal rules.
func (p *Pipeline) Rules() []ContractionRule {
	return append([]ContractionRule(nil), p.rules...)
}

// Steps returns the ordered text steps.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

func (p *Pipeline) FixInformalContractions(text string) string {
	for _, r := range p.rules {
		text = r.Apply(text)
	}
	return text
}

func (p *Pipeline) ExpandContractions(text string) string {
	return p.expander.Expand(text)
}

// Apply runs every step on text, in order.
func (p *Pipeline) Apply(text string) string {
	for _, s := range p.steps {
		text = s.Fn(text)
	}
	return text
}

// Length is the character count used by the bounds checks.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

// CleanText cleans a single string and validates it against b.
func (p *Pipeline) CleanText(text string, b types.Bounds) (string, error) {
	if err := b.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBounds, err)
	}
	cleaned := strings.TrimFunc(p.Apply(text), isSpace)
	if cleaned == "" {
		return "", ErrEmptyInput
	}
	if n := Length(cleaned); !b.Contains(n) {
		return "", &LengthOutOfRangeError{Length: n, Min: b.Min, Max: b.Max}
	}
	return cleaned, nil
}

// CleanTable cleans column in every row, drops invalid and out-of-bounds rows and
// returns a new table. Other columns pass through untouched and row order is kept.
func (p *Pipeline) CleanTable(t *types.Table, column string, b types.Bounds) (*types.Table, error) {
	return p.CleanTableParallel(t, column, b, 1)
}

// CleanTableParallel is CleanTable with the text steps spread over workers goroutines.
func (p *Pipeline) CleanTableParallel(t *types.Table, column string, b types.Bounds, workers int) (*types.Table, error) {
	idx, err := entry(t, column, b)
	if err != nil {
		return nil, err
	}
	out := t.Clone()
	p.applyColumn(out, idx, workers)
	out = DropInvalid(out, idx)
	return DropByLength(out, idx, b), nil
}

func entry(t *types.Table, column string, b types.Bounds) (int, error) {
	if err := b.Validate(); err != nil {
		return -1, fmt.Errorf("%w: %v", ErrInvalidBounds, err)
	}
	if t == nil {
		return -1, fmt.Errorf("%w: %q (no table)", ErrMissingColumn, column)
	}
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return -1, fmt.Errorf("%w: %q not in %v", ErrMissingColumn, column, t.Columns)
	}
	return idx, nil
}

func (p *Pipeline) applyColumn(t *types.Table, idx, workers int) {
	cell := func(i int) {
		row := t.Rows[i]
		if idx >= len(row) {
			padded := make([]string, idx+1)
			copy(padded, row)
			row = padded
			t.Rows[i] = row
		}
		row[idx] = p.Apply(row[idx])
	}
	if workers <= 1 || len(t.Rows) < 2 {
		for i := range t.Rows {
			cell(i)
		}
		return
	}
	if workers > len(t.Rows) {
		workers = len(t.Rows)
	}
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				cell(i)
			}
		}()
	}
	for i := range t.Rows {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// DropInvalid removes rows whose idx cell is empty or whitespace only.
func DropInvalid(t *types.Table, idx int) *types.Table {
	return filterRows(t, func(row []string) bool {
		return idx < len(row) && strings.TrimFunc(row[idx], isSpace) != ""
	})
}

// DropByLength removes rows whose idx cell length falls outside b.
func DropByLength(t *types.Table, idx int, b types.Bounds) *types.Table {
	return filterRows(t, func(row []string) bool {
		n := 0
		if idx < len(row) {
			n = Length(row[idx])
		}
		return b.Contains(n)
	})
}

func filterRows(t *types.Table, keep func([]string) bool) *types.Table {
	out := &types.Table{Columns: append([]string(nil), t.Columns...), Rows: make([][]string, 0, len(t.Rows))}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}
