package catalog

import (
	"strings"

	"github.com/multihop-ai/nli-review/pkg/models"
)

// Filter narrows a view's members. All set criteria must match (AND).
type Filter struct {
	// IDQuery matches as a case-insensitive substring of the clean id.
	IDQuery string
	// AutoLabel matches the derived auto label exactly.
	AutoLabel string
	// Agreement matches the agreement tier string exactly, e.g. "2/3".
	Agreement string
	// Assignment matches the assignment type exactly.
	Assignment models.Assignment
}

// IsZero reports whether no criteria are set.
func (f Filter) IsZero() bool {
	return f.IDQuery == "" && f.AutoLabel == "" && f.Agreement == "" && f.Assignment == ""
}

func (f Filter) matches(e Entry) bool {
	if f.IDQuery != "" &&
		!strings.Contains(strings.ToLower(e.Example.CleanID), strings.ToLower(f.IDQuery)) {
		return false
	}
	if f.AutoLabel != "" && e.Derived.AutoLabel != f.AutoLabel {
		return false
	}
	if f.Agreement != "" && e.Derived.Agreement != f.Agreement {
		return false
	}
	if f.Assignment != "" && e.Derived.Assignment != f.Assignment {
		return false
	}
	return true
}

// FilterEntries returns the view's members that pass the filter, in load
// order.
func (c *Catalog) FilterEntries(view string, f Filter) ([]Entry, error) {
	entries, err := c.Entries(view)
	if err != nil {
		return nil, err
	}
	if f.IsZero() {
		return entries, nil
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}
