package catalog

import "strings"

// Cursor returns the current position in a view (0 for a view never
// navigated).
func (c *Catalog) Cursor(view string) (int, error) {
	if _, ok := c.views[view]; !ok {
		return 0, ErrUnknownView
	}
	return c.cursors[view], nil
}

// Go moves a view's cursor to index, clamped into the view's bounds, and
// returns the entry it lands on. Out-of-range requests are silently clamped,
// never rejected.
func (c *Catalog) Go(view string, index int) (Entry, error) {
	members, ok := c.views[view]
	if !ok {
		return Entry{}, ErrUnknownView
	}
	if len(members) == 0 {
		return Entry{}, ErrEmptyView
	}
	c.cursors[view] = clamp(index, len(members))
	return c.Entry(view, c.cursors[view])
}

// Next advances the cursor by one, stopping at the last member.
func (c *Catalog) Next(view string) (Entry, error) {
	return c.Go(view, c.cursors[view]+1)
}

// Prev moves the cursor back by one, stopping at the first member.
func (c *Catalog) Prev(view string) (Entry, error) {
	return c.Go(view, c.cursors[view]-1)
}

// Current returns the entry under the cursor.
func (c *Catalog) Current(view string) (Entry, error) {
	return c.Entry(view, c.cursors[view])
}

// FindByCleanID scans the view's members in order for the first clean id
// containing the query (case-insensitive) and moves the cursor there. On a
// miss the cursor is untouched and found is false; a miss is not an error.
func (c *Catalog) FindByCleanID(view, query string) (index int, found bool, err error) {
	members, ok := c.views[view]
	if !ok {
		return 0, false, ErrUnknownView
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0, false, nil
	}
	for i, idx := range members {
		if strings.Contains(strings.ToLower(c.examples[idx].CleanID), q) {
			c.cursors[view] = i
			return i, true, nil
		}
	}
	return 0, false, nil
}

// Cursors returns a copy of every view cursor, for session persistence.
func (c *Catalog) Cursors() map[string]int {
	out := make(map[string]int, len(c.cursors))
	for view, idx := range c.cursors {
		out[view] = idx
	}
	return out
}

// SetCursors restores previously persisted cursors, clamping each into its
// view's current bounds. Unknown views are dropped.
func (c *Catalog) SetCursors(cursors map[string]int) {
	for view, idx := range cursors {
		if members, ok := c.views[view]; ok {
			c.cursors[view] = clamp(idx, len(members))
		}
	}
}
