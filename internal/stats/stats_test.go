package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multihop-ai/nli-review/internal/catalog"
	"github.com/multihop-ai/nli-review/internal/labeling"
	"github.com/multihop-ai/nli-review/pkg/models"
)

func entries(t *testing.T) []catalog.Entry {
	t.Helper()
	vote := func(i int, label string) models.VoteSource {
		return models.VoteSource{
			Field: fmt.Sprintf("runs/m%d/v_validated", i),
			Model: fmt.Sprintf("m%d", i),
			Label: label,
			Raw:   label,
		}
	}
	examples := []models.Example{
		{ID: "a_1", CleanID: "1", Votes: []models.VoteSource{
			vote(0, "entailment"), vote(1, "entailment"), vote(2, "entailment")}},
		{ID: "a_2", CleanID: "2", Votes: []models.VoteSource{
			vote(0, "entailment"), vote(1, "entailment"), vote(2, "neutral")}},
		{ID: "a_3", CleanID: "3", Label: "neutral", Votes: []models.VoteSource{
			vote(0, "entailment"), vote(1, "neutral"), vote(2, "contradiction")}},
	}
	cat := catalog.New(catalog.DefaultConfig(), labeling.NewService(labeling.DefaultConfig()), examples, nil)
	out, err := cat.Entries(catalog.ViewAll)
	require.NoError(t, err)
	return out
}

func TestSummarize(t *testing.T) {
	report := Summarize(entries(t), 1)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.AutoAssigned)
	assert.Equal(t, 1, report.ManualAssigned)
	assert.Equal(t, 1, report.Overridden)

	require.NotEmpty(t, report.Labels)
	assert.Equal(t, LabelCount{Label: "entailment", Count: 2}, report.Labels[0])
	assert.Equal(t, LabelCount{Label: "neutral", Count: 1}, report.Labels[1])

	// agreement counts: one 3/3, one 2/3, one 1/3
	tiers := map[string]int{}
	for _, lc := range report.Agreement {
		tiers[lc.Label] = lc.Count
	}
	assert.Equal(t, map[string]int{"3/3": 1, "2/3": 1, "1/3": 1}, tiers)

	assert.InDelta(t, 2.0, report.MeanAgree, 1e-9)
	assert.Greater(t, report.StdDevAgree, 0.0)
	assert.Greater(t, report.LabelEntropy, 0.0)
}

func TestSummarizeEmpty(t *testing.T) {
	report := Summarize(nil, 0)
	assert.Equal(t, 0, report.Total)
	assert.Zero(t, report.MeanAgree)
	assert.Zero(t, report.LabelEntropy)
	assert.Empty(t, report.Labels)
}

func TestSummarizeSingleExampleHasNoNaN(t *testing.T) {
	report := Summarize(entries(t)[:1], 0)
	assert.Equal(t, 1, report.Total)
	assert.Zero(t, report.StdDevAgree, "stddev of one sample must not be NaN")
	assert.Zero(t, report.LabelEntropy)
}
