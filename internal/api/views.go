package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/multihop-ai/nli-review/internal/catalog"
	"github.com/multihop-ai/nli-review/internal/export"
	"github.com/multihop-ai/nli-review/internal/session"
	"github.com/multihop-ai/nli-review/pkg/models"
)

// EntryResponse is one example as the review surface sees it: the loaded
// record, the derived labels, and any session edits laid on top.
type EntryResponse struct {
	ID            string            `json:"id"`
	CleanID       string            `json:"clean_id"`
	Premises      []string          `json:"premises"`
	PremisesText  string            `json:"premises_text"`
	Hypothesis    string            `json:"hypothesis"`
	Label         string            `json:"label"`
	OriginalLabel string            `json:"original_label"`
	ModelVotes    map[string]string `json:"model_votes"`
	AutoLabel     string            `json:"auto_label,omitempty"`
	NumAgree      int               `json:"num_agree"`
	Agreement     string            `json:"agreement"`
	FinalLabel    string            `json:"final_label"`
	OverrideType  models.Assignment `json:"override_type"`
	Note          string            `json:"note"`
	Index         int               `json:"index"`
	ViewSize      int               `json:"view_size"`
}

func (s *Server) entryResponse(sess *session.Session, rt *runtime, view string, e catalog.Entry) EntryResponse {
	index, _ := rt.catalog.Cursor(view)
	size, _ := rt.catalog.Size(view)

	premisesText := export.JoinPremises(e.Example.Premises)
	if text, ok := sess.EditedText(e.Example.CleanID, models.FieldPremises); ok {
		premisesText = text
	}
	hypothesis := e.Example.Hypothesis
	if text, ok := sess.EditedText(e.Example.CleanID, models.FieldHypothesis); ok {
		hypothesis = text
	}

	return EntryResponse{
		ID:            e.Example.ID,
		CleanID:       e.Example.CleanID,
		Premises:      e.Example.Premises,
		PremisesText:  premisesText,
		Hypothesis:    hypothesis,
		Label:         e.Example.Label,
		OriginalLabel: e.Example.OriginalLabel,
		ModelVotes:    e.Derived.ModelVotes,
		AutoLabel:     e.Derived.AutoLabel,
		NumAgree:      e.Derived.NumAgree,
		Agreement:     e.Derived.Agreement,
		FinalLabel:    e.Derived.FinalLabel,
		OverrideType:  e.Derived.Assignment,
		Note:          e.Derived.Note,
		Index:         index,
		ViewSize:      size,
	}
}

// respondCatalogError maps catalog errors onto HTTP statuses.
func respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownView):
		respondError(w, http.StatusNotFound, "unknown view")
	case errors.Is(err, catalog.ErrEmptyView):
		respondError(w, http.StatusNotFound, "view has no examples")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleListViews lists view names with their member counts.
func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	rt, err := s.getRuntime(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to rebuild session")
		return
	}
	respondJSON(w, http.StatusOK, s.viewSummaries(rt))
}

// handleListView returns one page of a view, optionally filtered by the
// q/auto_label/agreement/assignment query params (AND-combined).
func (s *Server) handleListView(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	rt, err := s.getRuntime(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to rebuild session")
		return
	}

	view := chi.URLParam(r, "view")
	q := r.URL.Query()
	filter := catalog.Filter{
		IDQuery:    q.Get("q"),
		AutoLabel:  q.Get("auto_label"),
		Agreement:  q.Get("agreement"),
		Assignment: models.Assignment(q.Get("assignment")),
	}

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	result, err := rt.catalog.Page(view, filter, page, pageSize)
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	entries := make([]EntryResponse, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, s.entryResponse(sess, rt, view, e))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total_pages": result.TotalPages,
		"total":       result.Total,
		"entries":     entries,
	})
}

// handleCurrent returns the entry under the view's cursor.
func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, func(rt *runtime, view string) (catalog.Entry, error) {
		return rt.catalog.Current(view)
	})
}

// GotoRequest asks to move a view's cursor.
type GotoRequest struct {
	Index int `json:"index"`
}

// handleGoto moves the cursor to an absolute index, clamped into range.
func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request) {
	var req GotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.navigate(w, r, func(rt *runtime, view string) (catalog.Entry, error) {
		return rt.catalog.Go(view, req.Index)
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, func(rt *runtime, view string) (catalog.Entry, error) {
		return rt.catalog.Next(view)
	})
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, func(rt *runtime, view string) (catalog.Entry, error) {
		return rt.catalog.Prev(view)
	})
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request, move func(*runtime, string) (catalog.Entry, error)) {
	sess := sessionFromContext(r.Context())
	rt, err := s.getRuntime(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to rebuild session")
		return
	}

	view := chi.URLParam(r, "view")
	entry, err := move(rt, view)
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	if !s.persist(r.Context(), w, sess, rt) {
		return
	}
	respondJSON(w, http.StatusOK, s.entryResponse(sess, rt, view, entry))
}

// SearchRequest asks for the first clean id matching the query.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResponse reports the scan outcome. A miss is a normal response,
// not an error; the cursor does not move on a miss.
type SearchResponse struct {
	Found bool           `json:"found"`
	Index int            `json:"index,omitempty"`
	Entry *EntryResponse `json:"entry,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := sessionFromContext(r.Context())
	rt, err := s.getRuntime(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to rebuild session")
		return
	}

	view := chi.URLParam(r, "view")
	index, found, err := rt.catalog.FindByCleanID(view, req.Query)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	if !found {
		respondJSON(w, http.StatusOK, SearchResponse{Found: false})
		return
	}

	entry, err := rt.catalog.Current(view)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	if !s.persist(r.Context(), w, sess, rt) {
		return
	}
	payload := s.entryResponse(sess, rt, view, entry)
	respondJSON(w, http.StatusOK, SearchResponse{Found: true, Index: index, Entry: &payload})
}
