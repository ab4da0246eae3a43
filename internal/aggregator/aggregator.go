package aggregator

import "emotion-prep-go/internal/types"

// Report compares a table before and after cleaning.
type Report struct {
	Input        int            `json:"input"`
	Kept         int            `json:"kept"`
	Dropped      int            `json:"dropped"`
	DropRate     float64        `json:"drop_rate"`
	LabelsBefore map[string]int `json:"labels_before,omitempty"`
	LabelsAfter  map[string]int `json:"labels_after,omitempty"`
}

// Aggregate counts rows and, when labelColumn exists, per-label rows on both sides.
func Aggregate(before, after *types.Table, labelColumn string) Report {
	r := Report{Input: before.Len(), Kept: after.Len()}
	r.Dropped = r.Input - r.Kept
	if r.Input > 0 {
		r.DropRate = float64(r.Dropped) / float64(r.Input)
	}
	r.LabelsBefore = countLabels(before, labelColumn)
	r.LabelsAfter = countLabels(after, labelColumn)
	return r
}

func countLabels(t *types.Table, column string) map[string]int {
	if t.ColumnIndex(column) < 0 {
		return nil
	}
	counts := map[string]int{}
	for _, l := range t.Column(column) {
		counts[l]++
	}
	return counts
}

// DroppedByLabel is LabelsBefore minus LabelsAfter, per label.
func (r Report) DroppedByLabel() map[string]int {
	if r.LabelsBefore == nil {
		return nil
	}
	out := make(map[string]int, len(r.LabelsBefore))
	for k, v := range r.LabelsBefore {
		out[k] = v - r.LabelsAfter[k]
	}
	return out
}
