package actionable

import (
	"fmt"
	"sort"

	"emotion-prep-go/internal/aggregator"
	"emotion-prep-go/internal/types"
)

// Threshold is the drop share above which a card asks for action.
const Threshold = 0.35

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// Generate turns a cleaning report into cards, worst finding first. A clean run
// yields a single informational card.
func Generate(r aggregator.Report, b types.Bounds) []ActionCard {
	var cards []ActionCard

	dropped := r.DroppedByLabel()
	labels := make([]string, 0, len(dropped))
	for l := range dropped {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	worst := ""
	highest := 0.0
	for _, l := range labels {
		before := r.LabelsBefore[l]
		if before == 0 {
			continue
		}
		if r.LabelsAfter[l] == 0 {
			cards = append(cards, ActionCard{
				Insight: fmt.Sprintf("Label %q has no rows left (%d dropped)", l, before),
				Action:  "Inspect the source rows for this label or relax the length bounds",
				Impact:  "A classifier trained on this table cannot predict the label",
			})
			continue
		}
		if share := float64(dropped[l]) / float64(before); share > highest {
			highest = share
			worst = l
		}
	}
	if highest >= Threshold && worst != "" {
		cards = append(cards, ActionCard{
			Insight: fmt.Sprintf("High drop rate for %q (%.0f%%)", worst, highest*100),
			Action:  fmt.Sprintf("Review bounds %s against this label's text lengths", b),
			Impact:  "Label balance shifts between raw and cleaned data",
		})
	}
	if r.DropRate >= Threshold {
		cards = append(cards, ActionCard{
			Insight: fmt.Sprintf("%d of %d rows dropped (%.0f%%)", r.Dropped, r.Input, r.DropRate*100),
			Action:  fmt.Sprintf("Check the text column and bounds %s", b),
			Impact:  "Training set shrinks substantially",
		})
	}
	if len(cards) == 0 {
		return []ActionCard{{
			Insight: "No strong drop pattern detected",
			Action:  "None",
			Impact:  "Low immediate intervention",
		}}
	}
	return cards
}

// NeedsAction reports whether any card goes beyond the informational default.
func NeedsAction(cards []ActionCard) bool {
	return len(cards) > 0 && cards[0].Action != "None"
}
