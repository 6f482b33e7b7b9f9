package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/multihop-ai/nli-review/internal/catalog"
	"github.com/multihop-ai/nli-review/internal/loader"
	"github.com/multihop-ai/nli-review/internal/session"
	"github.com/multihop-ai/nli-review/pkg/models"
)

const maxUploadSize = 32 << 20 // 32 MB

type contextKey string

const sessionContextKey contextKey = "session"

// CreateSessionResponse is returned after a successful upload.
type CreateSessionResponse struct {
	SessionID string        `json:"session_id"`
	Token     string        `json:"token"`
	Total     int           `json:"total"`
	Views     []ViewSummary `json:"views"`
}

// ViewSummary is one named view with its member count.
type ViewSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// handleCreateSession accepts the JSON file (multipart "file" field or a
// raw JSON body) and starts a review session over it. A malformed document
// aborts the whole load; no session is created.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	document, err := readUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	examples, err := loader.Load(bytes.NewReader(document))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := session.New(document)
	if err := s.store.Put(r.Context(), sess); err != nil {
		s.logger.Error("store session", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to store session")
		return
	}

	token, err := s.tokens.Issue(sess.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue session token")
		return
	}

	rt := s.buildRuntime(sess, examples)

	respondJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: sess.ID.String(),
		Token:     token,
		Total:     len(examples),
		Views:     s.viewSummaries(rt),
	})
}

func readUpload(r *http.Request) ([]byte, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, errors.New("failed to read request body")
		}
		if len(body) == 0 {
			return nil, errors.New("no file provided")
		}
		return body, nil
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, errors.New("file too large or invalid form")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("no file provided")
	}
	defer file.Close()

	if ext := filepath.Ext(header.Filename); ext != "" && ext != ".json" {
		return nil, errors.New("only .json files are allowed")
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read file")
	}
	return content, nil
}

// sessionCtx resolves {sessionID}, checks the bearer token names that same
// session, and loads the session from the store.
func (s *Server) sessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid session id")
			return
		}

		tokenID, err := s.tokens.Validate(extractToken(r))
		if err != nil || tokenID != id {
			respondError(w, http.StatusUnauthorized, "invalid session token")
			return
		}

		sess, err := s.store.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				respondError(w, http.StatusNotFound, "session not found")
				return
			}
			s.logger.Error("load session", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to load session")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func sessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// getRuntime returns the cached working set for a session, rebuilding it
// from the persisted document after a restart. Rebuilding restores cursors
// and overrides from the session, never from the render side.
func (s *Server) getRuntime(sess *session.Session) (*runtime, error) {
	s.mu.Lock()
	rt, ok := s.runtimes[sess.ID]
	s.mu.Unlock()
	if ok {
		return rt, nil
	}

	examples, err := loader.Load(bytes.NewReader(sess.Document))
	if err != nil {
		return nil, err
	}
	return s.buildRuntime(sess, examples), nil
}

func (s *Server) buildRuntime(sess *session.Session, examples []models.Example) *runtime {
	cat := catalog.New(catalog.Config{
		Labels:   s.config.Labels,
		PageSize: s.config.PageSize,
	}, s.labeler, examples, sess.Overrides)
	cat.SetCursors(sess.Cursors)

	rt := &runtime{examples: examples, catalog: cat}
	s.mu.Lock()
	s.runtimes[sess.ID] = rt
	s.mu.Unlock()
	return rt
}

func (s *Server) dropRuntime(id uuid.UUID) {
	s.mu.Lock()
	delete(s.runtimes, id)
	s.mu.Unlock()
}

// persist writes the session back to the store after a mutation.
func (s *Server) persist(ctx context.Context, w http.ResponseWriter, sess *session.Session, rt *runtime) bool {
	sess.Cursors = rt.catalog.Cursors()
	if err := s.store.Put(ctx, sess); err != nil {
		s.logger.Error("persist session", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to persist session")
		return false
	}
	return true
}

func (s *Server) viewSummaries(rt *runtime) []ViewSummary {
	names := rt.catalog.ViewNames()
	out := make([]ViewSummary, 0, len(names))
	for _, name := range names {
		size, _ := rt.catalog.Size(name)
		out = append(out, ViewSummary{Name: name, Count: size})
	}
	return out
}

// handleGetSession reports the session's views and bookkeeping counters.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	rt, err := s.getRuntime(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to rebuild session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID.String(),
		"created_at": sess.CreatedAt,
		"updated_at": sess.UpdatedAt,
		"total":      len(rt.examples),
		"overrides":  len(sess.Overrides),
		"edits":      len(sess.Histories),
		"views":      s.viewSummaries(rt),
	})
}

// handleDeleteSession ends the session and discards its state.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if err := s.store.Delete(r.Context(), sess.ID); err != nil {
		s.logger.Error("delete session", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	s.dropRuntime(sess.ID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
