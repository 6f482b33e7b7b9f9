package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multihop-ai/nli-review/internal/labeling"
	"github.com/multihop-ai/nli-review/internal/session"
	"github.com/multihop-ai/nli-review/pkg/models"
)

func fixture() []models.Example {
	return []models.Example{
		{
			ID:            "dataset_dev_42",
			CleanID:       "42",
			Premises:      []string{"premise one", "premise two"},
			Hypothesis:    "the hypothesis",
			Label:         "neutral",
			OriginalLabel: "neutral",
			Votes: []models.VoteSource{
				{Field: "runs/modelA/nli_validated", Model: "modelA", Label: "entailment", Raw: "Entailment"},
				{Field: "runs/modelB/nli_validated", Model: "modelB", Label: "entailment", Raw: "entailment"},
				{Field: "runs/modelC/nli_validated", Model: "modelC", Label: "neutral", Raw: "neutral"},
			},
			Extra: map[string]any{"source": "wiki", "hops": float64(3)},
		},
	}
}

func decode(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestExportDerivedFields(t *testing.T) {
	labeler := labeling.NewService(labeling.DefaultConfig())
	data, err := Export(fixture(), session.New(nil), labeler)
	require.NoError(t, err)

	rec := decode(t, data)[0]
	assert.Equal(t, "dataset_dev_42", rec["id"])
	assert.Equal(t, "42", rec["clean_id"])
	assert.Equal(t, "entailment", rec["auto_label"])
	assert.Equal(t, float64(2), rec["num_agree"])
	assert.Equal(t, "entailment", rec["final_label"])
	assert.Equal(t, "auto", rec["override_type"])
	assert.Equal(t, "neutral", rec["label"], "stored label untouched without an override")
	assert.Equal(t, "neutral", rec["original_label"])
	assert.Equal(t, "wiki", rec["source"], "extra fields round-trip")
	assert.Equal(t, float64(3), rec["hops"])
	assert.Equal(t, "Entailment", rec["runs/modelA/nli_validated"], "vote fields round-trip raw")
	assert.Equal(t, map[string]any{
		"modelA": "entailment",
		"modelB": "entailment",
		"modelC": "neutral",
	}, rec["model_votes"])
}

func TestExportAppliesOverride(t *testing.T) {
	labeler := labeling.NewService(labeling.DefaultConfig())
	sess := session.New(nil)
	sess.SetOverride("42", "contradiction")

	rec := decode(t, mustExport(t, sess, labeler))[0]
	assert.Equal(t, "contradiction", rec["label"], "override becomes the stored label")
	assert.Equal(t, "contradiction", rec["final_label"])
	assert.Equal(t, "manual", rec["override_type"])
	assert.Equal(t, "neutral", rec["original_label"], "original label survives the override")
}

func TestExportOverrideConfirmingAutoStaysAuto(t *testing.T) {
	labeler := labeling.NewService(labeling.DefaultConfig())
	sess := session.New(nil)
	sess.SetOverride("42", "entailment") // same as the auto label

	rec := decode(t, mustExport(t, sess, labeler))[0]
	assert.Equal(t, "auto", rec["override_type"],
		"confirming the auto label is not a manual assignment")
	assert.Equal(t, "entailment", rec["final_label"])
	assert.Equal(t, "entailment", rec["label"])
}

func TestExportAppliesTextEdits(t *testing.T) {
	labeler := labeling.NewService(labeling.DefaultConfig())
	sess := session.New(nil)
	sess.History("42", models.FieldPremises, "premise one\npremise two").
		Commit("  first fact  \n\nsecond fact\n   \n")
	sess.History("42", models.FieldHypothesis, "the hypothesis").
		Commit("a sharper hypothesis")

	rec := decode(t, mustExport(t, sess, labeler))[0]
	assert.Equal(t, []any{"first fact", "second fact"}, rec["premises"],
		"premises are re-split and blank lines dropped")
	assert.Equal(t, "a sharper hypothesis", rec["hypothesis"])
}

func TestExportNoAutoLabelIsNull(t *testing.T) {
	labeler := labeling.NewService(labeling.DefaultConfig())
	examples := fixture()
	examples[0].Votes[1].Label = "contradiction" // now all three disagree

	data, err := Export(examples, session.New(nil), labeler)
	require.NoError(t, err)

	rec := decode(t, data)[0]
	assert.Nil(t, rec["auto_label"])
	assert.Equal(t, float64(1), rec["num_agree"])
	assert.Equal(t, "neutral", rec["final_label"], "falls back to the stored label")
}

func TestExportIsDeterministic(t *testing.T) {
	labeler := labeling.NewService(labeling.DefaultConfig())
	sess := session.New(nil)
	sess.SetOverride("42", "entailment")

	first := mustExport(t, sess, labeler)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, mustExport(t, sess, labeler),
			"repeated exports are byte-identical")
	}
}

func TestExportPreservesUnicode(t *testing.T) {
	labeler := labeling.NewService(labeling.DefaultConfig())
	examples := fixture()
	examples[0].Hypothesis = "dữ liệu đã gán nhãn"

	data, err := Export(examples, session.New(nil), labeler)
	require.NoError(t, err)

	assert.Contains(t, string(data), "dữ liệu đã gán nhãn",
		"non-ASCII text is not escaped")
	assert.Contains(t, string(data), "\n  ", "output is indented for review")
}

func TestExportFailsOnUnserializableValue(t *testing.T) {
	labeler := labeling.NewService(labeling.DefaultConfig())
	examples := fixture()
	examples[0].Extra["bad"] = func() {}

	_, err := Export(examples, session.New(nil), labeler)
	assert.Error(t, err)
}

func TestJoinPremises(t *testing.T) {
	assert.Equal(t, "a\nb", JoinPremises([]string{"a", "b"}))
	assert.Equal(t, "", JoinPremises(nil))
}

func mustExport(t *testing.T, sess *session.Session, labeler *labeling.Service) []byte {
	t.Helper()
	data, err := Export(fixture(), sess, labeler)
	require.NoError(t, err)
	return data
}
