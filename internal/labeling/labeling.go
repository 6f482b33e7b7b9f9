package labeling

import (
	"fmt"

	"github.com/multihop-ai/nli-review/pkg/models"
)

// Display notes attached to a resolved label.
const (
	NoteAutoAssigned = "auto-assigned"
	NoteNoAuto       = "no auto-assigned"
	NoteOverridden   = "overridden manually"
)

// ExpectedVoters is how many model votes an example normally carries; the
// agreement tier is reported out of this many.
const ExpectedVoters = 3

// Config holds labeling configuration.
type Config struct {
	// Threshold is the minimum winning-vote count for an auto label.
	Threshold int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{Threshold: 2}
}

// Service derives auto labels and resolves final labels.
type Service struct {
	threshold int
}

// NewService creates a new labeling service.
func NewService(config Config) *Service {
	if config.Threshold <= 0 {
		config.Threshold = DefaultConfig().Threshold
	}
	return &Service{threshold: config.Threshold}
}

// Aggregate tallies an example's model votes. The returned auto label is
// empty unless the winning vote count reaches the threshold; numAgree is the
// winning count regardless (0 with no votes at all). Ties break toward the
// vote seen first, so the result is stable for a given input file.
func (s *Service) Aggregate(votes []models.VoteSource) (modelVotes map[string]string, autoLabel string, numAgree int) {
	modelVotes = make(map[string]string, len(votes))

	type tally struct {
		label string
		count int
	}
	var counts []tally
	index := map[string]int{}

	for _, v := range votes {
		modelVotes[v.Model] = v.Label
		if i, ok := index[v.Label]; ok {
			counts[i].count++
		} else {
			index[v.Label] = len(counts)
			counts = append(counts, tally{label: v.Label, count: 1})
		}
	}

	if len(counts) == 0 {
		return modelVotes, "", 0
	}

	winner := counts[0]
	for _, t := range counts[1:] {
		if t.count > winner.count {
			winner = t
		}
	}
	numAgree = winner.count
	if winner.count >= s.threshold {
		autoLabel = winner.label
	}
	return modelVotes, autoLabel, numAgree
}

// Resolve picks the authoritative final label for an example: manual
// override, then auto label, then the stored label, then the unknown
// sentinel. It reads the example but never writes to it, so repeated
// resolution over the same inputs always agrees with itself.
func (s *Service) Resolve(ex models.Example, d *models.Derived, override string, hasOverride bool) {
	switch {
	case hasOverride:
		d.FinalLabel = override
		d.Assignment = models.AssignmentManual
	case d.HasAuto():
		d.FinalLabel = d.AutoLabel
		d.Assignment = models.AssignmentAuto
	case ex.Label != "":
		d.FinalLabel = ex.Label
		d.Assignment = models.AssignmentManual
	default:
		d.FinalLabel = models.UnknownLabel
		d.Assignment = models.AssignmentManual
	}

	switch {
	case !d.HasAuto():
		d.Note = NoteNoAuto
	case hasOverride && override != d.AutoLabel:
		d.Note = NoteOverridden
	default:
		d.Note = NoteAutoAssigned
	}
}

// Derive runs aggregation and resolution in one pass and fills in the
// agreement tier string.
func (s *Service) Derive(ex models.Example, override string, hasOverride bool) models.Derived {
	var d models.Derived
	d.ModelVotes, d.AutoLabel, d.NumAgree = s.Aggregate(ex.Votes)
	d.Agreement = fmt.Sprintf("%d/%d", d.NumAgree, ExpectedVoters)
	s.Resolve(ex, &d, override, hasOverride)
	return d
}
