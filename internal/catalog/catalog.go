package catalog

import (
	"errors"

	"github.com/multihop-ai/nli-review/internal/labeling"
	"github.com/multihop-ai/nli-review/pkg/models"
)

var (
	ErrUnknownView = errors.New("unknown view")
	ErrEmptyView   = errors.New("view has no examples")
)

// Fixed view names. Label-value views are named after the label itself.
const (
	ViewAll              = "all"
	ViewAutoAssigned     = "auto-assigned"
	ViewManuallyAssigned = "manually-assigned"
	ViewFullAgreement    = "full-agreement"
	ViewPartialAgreement = "partial-agreement"
	ViewLowAgreement     = "low-agreement"
)

// Config holds catalog configuration.
type Config struct {
	// Labels is the label taxonomy; each value gets its own view.
	Labels []string
	// PageSize is the number of entries per page in paged listings.
	PageSize int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Labels:   []string{"entailment", "contradiction", "neutral", "implicature"},
		PageSize: 10,
	}
}

// Entry pairs an example with its derived labels.
type Entry struct {
	Example models.Example
	Derived models.Derived
}

// Catalog groups the loaded example set into named views and tracks one
// navigation cursor per view. It is rebuilt whenever an override changes;
// rebuilding recomputes membership but never touches the examples.
type Catalog struct {
	config   Config
	labeler  *labeling.Service
	examples []models.Example
	derived  []models.Derived

	viewNames []string
	views     map[string][]int // member indices into examples, load order
	cursors   map[string]int
}

// New builds a catalog over the example set, deriving labels with the given
// overrides (clean id -> label).
func New(config Config, labeler *labeling.Service, examples []models.Example, overrides map[string]string) *Catalog {
	if config.PageSize <= 0 {
		config.PageSize = DefaultConfig().PageSize
	}
	if len(config.Labels) == 0 {
		config.Labels = DefaultConfig().Labels
	}

	c := &Catalog{
		config:   config,
		labeler:  labeler,
		examples: examples,
		cursors:  map[string]int{},
	}
	c.Rebuild(overrides)
	return c
}

// Rebuild recomputes derived labels and view membership after overrides
// change. Cursors keep their positions, clamped to the new view sizes.
func (c *Catalog) Rebuild(overrides map[string]string) {
	c.derived = make([]models.Derived, len(c.examples))
	for i, ex := range c.examples {
		override, ok := overrides[ex.CleanID]
		c.derived[i] = c.labeler.Derive(ex, override, ok)
	}

	c.viewNames = append([]string{
		ViewAll,
		ViewAutoAssigned,
		ViewManuallyAssigned,
		ViewFullAgreement,
		ViewPartialAgreement,
		ViewLowAgreement,
	}, c.config.Labels...)

	c.views = make(map[string][]int, len(c.viewNames))
	for _, name := range c.viewNames {
		c.views[name] = []int{}
	}
	for i, d := range c.derived {
		for _, name := range c.viewNames {
			if c.matches(name, d) {
				c.views[name] = append(c.views[name], i)
			}
		}
	}

	for name := range c.cursors {
		c.cursors[name] = clamp(c.cursors[name], len(c.views[name]))
	}
}

func (c *Catalog) matches(view string, d models.Derived) bool {
	switch view {
	case ViewAll:
		return true
	case ViewAutoAssigned:
		return d.Assignment == models.AssignmentAuto
	case ViewManuallyAssigned:
		return d.Assignment == models.AssignmentManual && d.HasAuto() && d.FinalLabel != d.AutoLabel
	case ViewFullAgreement:
		return d.NumAgree == labeling.ExpectedVoters
	case ViewPartialAgreement:
		return d.NumAgree == labeling.ExpectedVoters-1
	case ViewLowAgreement:
		return d.NumAgree <= 1
	default:
		return d.FinalLabel == view
	}
}

// ViewNames returns the view names in their fixed display order.
func (c *Catalog) ViewNames() []string {
	return append([]string(nil), c.viewNames...)
}

// Size returns the number of members of a view.
func (c *Catalog) Size(view string) (int, error) {
	members, ok := c.views[view]
	if !ok {
		return 0, ErrUnknownView
	}
	return len(members), nil
}

// Entries returns the members of a view in load order.
func (c *Catalog) Entries(view string) ([]Entry, error) {
	members, ok := c.views[view]
	if !ok {
		return nil, ErrUnknownView
	}
	entries := make([]Entry, len(members))
	for i, idx := range members {
		entries[i] = Entry{Example: c.examples[idx], Derived: c.derived[idx]}
	}
	return entries, nil
}

// Entry returns the member of a view at the given position.
func (c *Catalog) Entry(view string, index int) (Entry, error) {
	members, ok := c.views[view]
	if !ok {
		return Entry{}, ErrUnknownView
	}
	if len(members) == 0 {
		return Entry{}, ErrEmptyView
	}
	idx := members[clamp(index, len(members))]
	return Entry{Example: c.examples[idx], Derived: c.derived[idx]}, nil
}

func clamp(index, size int) int {
	if size <= 0 {
		return 0
	}
	if index < 0 {
		return 0
	}
	if index > size-1 {
		return size - 1
	}
	return index
}
