package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/multihop-ai/nli-review/internal/export"
	"github.com/multihop-ai/nli-review/internal/history"
	"github.com/multihop-ai/nli-review/internal/session"
	"github.com/multihop-ai/nli-review/pkg/models"
)

// OverrideRequest sets a manual label for an example.
type OverrideRequest struct {
	Label string `json:"label"`
}

// handleSetOverride records a reviewer-chosen label for one example and
// rebuilds the views, since assignment-based membership may change.
func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		respondError(w, http.StatusBadRequest, "label is required")
		return
	}

	s.mutateOverride(w, r, func(sess *session.Session, cleanID string) {
		sess.SetOverride(cleanID, req.Label)
	})
}

// handleClearOverride removes a manual label, letting the auto label win
// again.
func (s *Server) handleClearOverride(w http.ResponseWriter, r *http.Request) {
	s.mutateOverride(w, r, func(sess *session.Session, cleanID string) {
		sess.ClearOverride(cleanID)
	})
}

func (s *Server) mutateOverride(w http.ResponseWriter, r *http.Request, apply func(*session.Session, string)) {
	sess := sessionFromContext(r.Context())
	rt, err := s.getRuntime(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to rebuild session")
		return
	}

	cleanID := chi.URLParam(r, "cleanID")
	ex, ok := findExample(rt, cleanID)
	if !ok {
		respondError(w, http.StatusNotFound, "example not found")
		return
	}

	apply(sess, ex.CleanID)
	rt.catalog.Rebuild(sess.Overrides)

	if !s.persist(r.Context(), w, sess, rt) {
		return
	}

	override, hasOverride := sess.Override(ex.CleanID)
	d := s.labeler.Derive(ex, override, hasOverride)
	respondJSON(w, http.StatusOK, map[string]any{
		"clean_id":      ex.CleanID,
		"final_label":   d.FinalLabel,
		"override_type": d.Assignment,
		"note":          d.Note,
	})
}

func findExample(rt *runtime, cleanID string) (models.Example, bool) {
	for _, ex := range rt.examples {
		if ex.CleanID == cleanID {
			return ex, true
		}
	}
	return models.Example{}, false
}

// fieldHistory resolves the undo/redo log for an editable field, seeding it
// with the loaded text on first touch.
func (s *Server) fieldHistory(w http.ResponseWriter, r *http.Request) (*session.Session, *runtime, models.Example, *history.History, bool) {
	sess := sessionFromContext(r.Context())
	rt, err := s.getRuntime(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to rebuild session")
		return nil, nil, models.Example{}, nil, false
	}

	cleanID := chi.URLParam(r, "cleanID")
	ex, ok := findExample(rt, cleanID)
	if !ok {
		respondError(w, http.StatusNotFound, "example not found")
		return nil, nil, models.Example{}, nil, false
	}

	field := chi.URLParam(r, "field")
	var original string
	switch field {
	case models.FieldPremises:
		original = export.JoinPremises(ex.Premises)
	case models.FieldHypothesis:
		original = ex.Hypothesis
	default:
		respondError(w, http.StatusBadRequest, "unknown field")
		return nil, nil, models.Example{}, nil, false
	}

	return sess, rt, ex, sess.History(ex.CleanID, field, original), true
}

// FieldResponse reports a field's text and undo/redo availability.
type FieldResponse struct {
	CleanID string `json:"clean_id"`
	Field   string `json:"field"`
	Text    string `json:"text"`
	CanUndo bool   `json:"can_undo"`
	CanRedo bool   `json:"can_redo"`
	Edits   int    `json:"edits"`
}

func fieldResponse(ex models.Example, field string, h *history.History) FieldResponse {
	return FieldResponse{
		CleanID: ex.CleanID,
		Field:   field,
		Text:    h.Current(),
		CanUndo: h.CanUndo(),
		CanRedo: h.CanRedo(),
		Edits:   h.Len() - 1,
	}
}

// handleGetField returns the field's current (possibly edited) text.
func (s *Server) handleGetField(w http.ResponseWriter, r *http.Request) {
	_, _, ex, h, ok := s.fieldHistory(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, fieldResponse(ex, chi.URLParam(r, "field"), h))
}

// EditRequest commits new text for a field.
type EditRequest struct {
	Text string `json:"text"`
}

// handleEditField commits an edit. Committing while undone discards the
// redo branch, matching the history contract.
func (s *Server) handleEditField(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, rt, ex, h, ok := s.fieldHistory(w, r)
	if !ok {
		return
	}

	h.Commit(req.Text)
	sess.Touch()
	if !s.persist(r.Context(), w, sess, rt) {
		return
	}
	respondJSON(w, http.StatusOK, fieldResponse(ex, chi.URLParam(r, "field"), h))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.moveHistory(w, r, func(h *history.History) { h.Undo() })
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.moveHistory(w, r, func(h *history.History) { h.Redo() })
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.moveHistory(w, r, func(h *history.History) { h.Reset() })
}

func (s *Server) moveHistory(w http.ResponseWriter, r *http.Request, move func(*history.History)) {
	sess, rt, ex, h, ok := s.fieldHistory(w, r)
	if !ok {
		return
	}

	move(h)
	sess.Touch()
	if !s.persist(r.Context(), w, sess, rt) {
		return
	}
	respondJSON(w, http.StatusOK, fieldResponse(ex, chi.URLParam(r, "field"), h))
}
