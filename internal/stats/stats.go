// Package stats summarizes a review session's label distribution and
// inter-model agreement for the stats endpoint and the CLI summary table.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/multihop-ai/nli-review/internal/catalog"
	"github.com/multihop-ai/nli-review/pkg/models"
)

// LabelCount is one row of a label distribution.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Report summarizes the example set after labeling.
type Report struct {
	Total          int          `json:"total"`
	Labels         []LabelCount `json:"labels"`     // final-label distribution, descending
	Agreement      []LabelCount `json:"agreement"`  // tier distribution ("n/3"), descending tier
	AutoAssigned   int          `json:"auto_assigned"`
	ManualAssigned int          `json:"manual_assigned"`
	Overridden     int          `json:"overridden"` // manual overrides recorded this session

	// MeanAgree and StdDevAgree describe the winning-vote counts.
	MeanAgree   float64 `json:"mean_agree"`
	StdDevAgree float64 `json:"stddev_agree"`

	// LabelEntropy is the Shannon entropy (nats) of the final-label
	// distribution; 0 means every example resolved to the same label.
	LabelEntropy float64 `json:"label_entropy"`
}

// Summarize builds a report over catalog entries.
func Summarize(entries []catalog.Entry, overridden int) Report {
	r := Report{Total: len(entries), Overridden: overridden}
	if len(entries) == 0 {
		return r
	}

	labelCounts := map[string]int{}
	tierCounts := map[string]int{}
	agree := make([]float64, len(entries))
	for i, e := range entries {
		labelCounts[e.Derived.FinalLabel]++
		tierCounts[e.Derived.Agreement]++
		agree[i] = float64(e.Derived.NumAgree)
		if e.Derived.Assignment == models.AssignmentAuto {
			r.AutoAssigned++
		} else {
			r.ManualAssigned++
		}
	}

	r.Labels = sortedCounts(labelCounts)
	r.Agreement = sortedCounts(tierCounts)
	r.MeanAgree = stat.Mean(agree, nil)
	if len(agree) > 1 {
		// StdDev of a single sample is NaN, which JSON cannot carry
		r.StdDevAgree = stat.StdDev(agree, nil)
	}

	probs := make([]float64, 0, len(labelCounts))
	for _, lc := range r.Labels {
		probs = append(probs, float64(lc.Count)/float64(r.Total))
	}
	r.LabelEntropy = stat.Entropy(probs)

	return r
}

func sortedCounts(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, LabelCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
