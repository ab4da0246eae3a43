package dataset

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"emotion-prep-go/internal/logger"
	"emotion-prep-go/internal/types"
)

type DatasetSummary struct {
	Rows        int            `json:"rows"`
	LabelCounts map[string]int `json:"label_counts,omitempty"`
	MinLen      int            `json:"min_len"`
	MaxLen      int            `json:"max_len"`
	MeanLen     float64        `json:"mean_len"`
	Empty       int            `json:"empty"`
	Examples    []string       `json:"examples"`
}

// Summarize computes row, label and length statistics for a table. The label
// column is optional; the text column is not.
func Summarize(t *types.Table, textColumn, labelColumn string) (DatasetSummary, error) {
	log := logger.New().Component("dataset.summary").WithField("text_column", textColumn)
	if t.ColumnIndex(textColumn) < 0 {
		log.Error("text column missing")
		return DatasetSummary{}, fmt.Errorf("summarize: no column %q in %v", textColumn, t.Columns)
	}

	ds := DatasetSummary{Rows: t.Len(), LabelCounts: map[string]int{}}
	total := 0
	for i, text := range t.Column(textColumn) {
		n := utf8.RuneCountInString(text)
		if n == 0 {
			ds.Empty++
		}
		if i == 0 || n < ds.MinLen {
			ds.MinLen = n
		}
		if n > ds.MaxLen {
			ds.MaxLen = n
		}
		total += n
		if len(ds.Examples) < 3 && text != "" {
			ds.Examples = append(ds.Examples, text)
		}
	}
	if ds.Rows > 0 {
		ds.MeanLen = float64(total) / float64(ds.Rows)
	}
	for _, l := range t.Column(labelColumn) {
		ds.LabelCounts[l]++
	}

	log.WithFields(map[string]interface{}{
		"rows":     ds.Rows,
		"labels":   len(ds.LabelCounts),
		"min_len":  ds.MinLen,
		"max_len":  ds.MaxLen,
		"mean_len": fmt.Sprintf("%.1f", ds.MeanLen),
	}).Debug("dataset summarization complete")
	return ds, nil
}

// TopLabels returns label names ordered by descending count, then name.
func (d DatasetSummary) TopLabels() []string {
	out := make([]string, 0, len(d.LabelCounts))
	for k := range d.LabelCounts {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := d.LabelCounts[out[i]], d.LabelCounts[out[j]]
		if ci != cj {
			return ci > cj
		}
		return out[i] < out[j]
	})
	return out
}
