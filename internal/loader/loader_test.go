package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanID(t *testing.T) {
	assert.Equal(t, "1739", CleanID("foo_bar_1739"))
	assert.Equal(t, "7", CleanID("x_7"))
	assert.Equal(t, "no-digits-here", CleanID("no-digits-here"))
	assert.Equal(t, "trailing_12a", CleanID("trailing_12a"))
	assert.Equal(t, "", CleanID(""))
}

func TestLoadBasic(t *testing.T) {
	doc := `[
		{
			"id": "dataset_dev_42",
			"premises": ["p one", "p two"],
			"hypothesis": "h",
			"label": "neutral",
			"runs/modelA/nli_validated": " Entailment ",
			"runs/modelB/nli_validated": "entailment",
			"runs/modelC/nli_validated": "neutral",
			"source": "wiki"
		}
	]`

	examples, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, examples, 1)

	ex := examples[0]
	assert.Equal(t, "dataset_dev_42", ex.ID)
	assert.Equal(t, "42", ex.CleanID)
	assert.Equal(t, []string{"p one", "p two"}, ex.Premises)
	assert.Equal(t, "h", ex.Hypothesis)
	assert.Equal(t, "neutral", ex.Label)
	assert.Equal(t, "neutral", ex.OriginalLabel)

	require.Len(t, ex.Votes, 3)
	assert.Equal(t, "modelA", ex.Votes[0].Model)
	assert.Equal(t, "entailment", ex.Votes[0].Label)
	assert.Equal(t, " Entailment ", ex.Votes[0].Raw)
	assert.Equal(t, "modelB", ex.Votes[1].Model)
	assert.Equal(t, "modelC", ex.Votes[2].Model)

	assert.Equal(t, map[string]any{"source": "wiki"}, ex.Extra)
}

func TestLoadVoteOrderFollowsDocument(t *testing.T) {
	doc := `[{"id": "x_1",
		"c/zeta/v_validated": "a",
		"a/alpha/v_validated": "b",
		"b/mid/v_validated": "c"}]`

	examples, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	models := []string{}
	for _, v := range examples[0].Votes {
		models = append(models, v.Model)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, models)
}

func TestLoadVoteFieldWithoutSlash(t *testing.T) {
	doc := `[{"id": "x_1", "modelX_validated": "Contradiction"}]`
	examples, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, examples[0].Votes, 1)
	v := examples[0].Votes[0]
	assert.Equal(t, "modelX", v.Model)
	assert.Equal(t, "contradiction", v.Label)
}

func TestLoadKeepsPriorReviewFields(t *testing.T) {
	doc := `[{
		"id": "x_9",
		"clean_id": "custom-key",
		"label": "entailment",
		"original_label": "contradiction"
	}]`

	examples, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	ex := examples[0]
	assert.Equal(t, "custom-key", ex.CleanID, "uploaded clean_id wins")
	assert.Equal(t, "contradiction", ex.OriginalLabel, "original_label is never recomputed")
}

func TestLoadNonStringVoteIgnoredAsVote(t *testing.T) {
	doc := `[{"id": "x_1", "count_validated": 3}]`
	examples, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Empty(t, examples[0].Votes)
	assert.Equal(t, float64(3), examples[0].Extra["count_validated"], "non-string vote round-trips as extra")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(strings.NewReader(`{"not": "an array"}`))
	assert.ErrorIs(t, err, ErrNotArray)

	_, err = Load(strings.NewReader(`[{"id": "x"`))
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = Load(strings.NewReader(`not json at all`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}
