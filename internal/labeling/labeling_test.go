package labeling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/multihop-ai/nli-review/pkg/models"
)

func votes(labels ...string) []models.VoteSource {
	out := make([]models.VoteSource, len(labels))
	for i, l := range labels {
		out[i] = models.VoteSource{
			Field: "runs/model" + string(rune('A'+i)) + "/nli_validated",
			Model: "model" + string(rune('A'+i)),
			Label: l,
			Raw:   l,
		}
	}
	return out
}

func TestAggregateMajority(t *testing.T) {
	s := NewService(DefaultConfig())

	modelVotes, auto, agree := s.Aggregate(votes("entailment", "entailment", "neutral"))
	assert.Equal(t, "entailment", auto)
	assert.Equal(t, 2, agree)
	assert.Equal(t, map[string]string{
		"modelA": "entailment",
		"modelB": "entailment",
		"modelC": "neutral",
	}, modelVotes)
}

func TestAggregateUnanimous(t *testing.T) {
	s := NewService(DefaultConfig())
	_, auto, agree := s.Aggregate(votes("neutral", "neutral", "neutral"))
	assert.Equal(t, "neutral", auto)
	assert.Equal(t, 3, agree)
}

func TestAggregateAllDistinct(t *testing.T) {
	s := NewService(DefaultConfig())
	_, auto, agree := s.Aggregate(votes("entailment", "neutral", "contradiction"))
	assert.Empty(t, auto, "no label reaches the threshold")
	assert.Equal(t, 1, agree)
}

func TestAggregateNoVotes(t *testing.T) {
	s := NewService(DefaultConfig())
	modelVotes, auto, agree := s.Aggregate(nil)
	assert.Empty(t, auto)
	assert.Equal(t, 0, agree)
	assert.Empty(t, modelVotes)
}

func TestAggregateTieBreaksFirstSeen(t *testing.T) {
	s := NewService(Config{Threshold: 1})

	// one vote each: the first-seen label wins the tie
	_, auto, agree := s.Aggregate(votes("contradiction", "entailment"))
	assert.Equal(t, "contradiction", auto)
	assert.Equal(t, 1, agree)
}

func TestResolvePriority(t *testing.T) {
	s := NewService(DefaultConfig())
	ex := models.Example{
		Label: "neutral",
		Votes: votes("entailment", "entailment", "neutral"),
	}

	d := s.Derive(ex, "", false)
	assert.Equal(t, "entailment", d.FinalLabel, "auto label beats stored label")
	assert.Equal(t, models.AssignmentAuto, d.Assignment)
	assert.Equal(t, NoteAutoAssigned, d.Note)
	assert.Equal(t, "2/3", d.Agreement)

	d = s.Derive(ex, "contradiction", true)
	assert.Equal(t, "contradiction", d.FinalLabel, "manual override beats auto label")
	assert.Equal(t, models.AssignmentManual, d.Assignment)
	assert.Equal(t, NoteOverridden, d.Note)
}

func TestResolveWithoutAutoLabel(t *testing.T) {
	s := NewService(DefaultConfig())
	ex := models.Example{
		Label: "neutral",
		Votes: votes("entailment", "neutral", "contradiction"),
	}

	d := s.Derive(ex, "", false)
	assert.Equal(t, "neutral", d.FinalLabel, "stored label is the fallback")
	assert.Equal(t, models.AssignmentManual, d.Assignment)
	assert.Equal(t, NoteNoAuto, d.Note)
}

func TestResolveUnknownSentinel(t *testing.T) {
	s := NewService(DefaultConfig())
	d := s.Derive(models.Example{}, "", false)
	assert.Equal(t, models.UnknownLabel, d.FinalLabel)
	assert.Equal(t, models.AssignmentManual, d.Assignment)
}

func TestResolveIsIdempotent(t *testing.T) {
	s := NewService(DefaultConfig())
	ex := models.Example{
		Label: "neutral",
		Votes: votes("entailment", "entailment", "neutral"),
	}

	first := s.Derive(ex, "", false)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Derive(ex, "", false))
	}
	assert.Equal(t, "neutral", ex.Label, "resolution never writes back into the example")
}
