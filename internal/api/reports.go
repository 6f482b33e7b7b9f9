package api

import (
	"fmt"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/multihop-ai/nli-review/internal/catalog"
	"github.com/multihop-ai/nli-review/internal/export"
	"github.com/multihop-ai/nli-review/internal/stats"
)

// handleStats summarizes the session's label distribution and agreement.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	rt, err := s.getRuntime(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to rebuild session")
		return
	}

	entries, err := rt.catalog.Entries(catalog.ViewAll)
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats.Summarize(entries, len(sess.Overrides)))
}

// handleExport merges the session's edits into the records and streams the
// JSON file. A serialization failure aborts the export; the session state
// stays intact and the export can be retried.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	rt, err := s.getRuntime(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to rebuild session")
		return
	}

	data, err := export.Export(rt.examples, sess, s.labeler)
	if err != nil {
		s.logger.Error("export", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	filename := filepath.Base(r.URL.Query().Get("filename"))
	if filename == "" || filename == "." || filename == "/" {
		filename = s.config.ExportFilename
	}
	if filename == "" {
		filename = export.DefaultFilename
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
