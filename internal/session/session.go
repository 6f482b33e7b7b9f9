// Package session holds the per-review-session edit state: manual label
// overrides, per-field undo/redo histories, and view cursors. The state
// lives behind a Store so a refreshed or reconnected client reattaches to
// its session instead of recomputing from the original file.
package session

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/multihop-ai/nli-review/internal/history"
)

var ErrNoSession = errors.New("session not found")

// Key addresses one editable field of one example.
type Key struct {
	EntityID string
	Field    string
}

// Session is the edit state of one upload-to-export cycle.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	// Document is the uploaded JSON payload; keeping it with the session
	// lets the catalog be rebuilt after a process restart.
	Document []byte

	// Overrides maps clean id -> reviewer-chosen label.
	Overrides map[string]string

	// Histories maps (entity, field) -> undo/redo log.
	Histories map[Key]*history.History

	// Cursors maps view name -> navigation position.
	Cursors map[string]int
}

// New creates an empty session for an uploaded document.
func New(document []byte) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Document:  document,
		Overrides: map[string]string{},
		Histories: map[Key]*history.History{},
		Cursors:   map[string]int{},
	}
}

// Touch records that the session was mutated.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// SetOverride records a manual label for an example.
func (s *Session) SetOverride(cleanID, label string) {
	s.Overrides[cleanID] = label
	s.Touch()
}

// ClearOverride removes a manual label, letting the auto label win again.
func (s *Session) ClearOverride(cleanID string) {
	delete(s.Overrides, cleanID)
	s.Touch()
}

// Override returns the manual label for an example, if any.
func (s *Session) Override(cleanID string) (string, bool) {
	label, ok := s.Overrides[cleanID]
	return label, ok
}

// History returns the undo/redo log for a field, creating it seeded with
// the original text on first reference.
func (s *Session) History(entityID, field, original string) *history.History {
	key := Key{EntityID: entityID, Field: field}
	h, ok := s.Histories[key]
	if !ok {
		h = history.New(original)
		s.Histories[key] = h
	}
	return h
}

// EditedText returns the current text of a field if it has ever been
// edited in this session.
func (s *Session) EditedText(entityID, field string) (string, bool) {
	h, ok := s.Histories[Key{EntityID: entityID, Field: field}]
	if !ok {
		return "", false
	}
	return h.Current(), true
}

// fieldState is the persisted form of one history entry.
type fieldState struct {
	EntityID string   `json:"entity_id"`
	Field    string   `json:"field"`
	Entries  []string `json:"entries"`
	Index    int      `json:"index"`
}

// state is the JSON shape sessions persist as.
type state struct {
	ID        uuid.UUID         `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Document  []byte            `json:"document"`
	Overrides map[string]string `json:"overrides"`
	Histories []fieldState      `json:"histories"`
	Cursors   map[string]int    `json:"cursors"`
}

// MarshalJSON flattens the structured history keys into a list so the
// session can live in a single JSON column.
func (s *Session) MarshalJSON() ([]byte, error) {
	st := state{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Document:  s.Document,
		Overrides: s.Overrides,
		Cursors:   s.Cursors,
	}
	for key, h := range s.Histories {
		entries, index := h.Snapshot()
		st.Histories = append(st.Histories, fieldState{
			EntityID: key.EntityID,
			Field:    key.Field,
			Entries:  entries,
			Index:    index,
		})
	}
	sortFieldStates(st.Histories)
	return json.Marshal(st)
}

// UnmarshalJSON restores a persisted session.
func (s *Session) UnmarshalJSON(data []byte) error {
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	s.ID = st.ID
	s.CreatedAt = st.CreatedAt
	s.UpdatedAt = st.UpdatedAt
	s.Document = st.Document
	s.Overrides = st.Overrides
	s.Cursors = st.Cursors
	if s.Overrides == nil {
		s.Overrides = map[string]string{}
	}
	if s.Cursors == nil {
		s.Cursors = map[string]int{}
	}
	s.Histories = make(map[Key]*history.History, len(st.Histories))
	for _, fs := range st.Histories {
		key := Key{EntityID: fs.EntityID, Field: fs.Field}
		s.Histories[key] = history.Restore(fs.Entries, fs.Index)
	}
	return nil
}

// sortFieldStates keeps the persisted form deterministic.
func sortFieldStates(states []fieldState) {
	sort.Slice(states, func(i, j int) bool {
		if states[i].EntityID != states[j].EntityID {
			return states[i].EntityID < states[j].EntityID
		}
		return states[i].Field < states[j].Field
	})
}
