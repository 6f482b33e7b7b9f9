// Package export merges a session's edits back into the uploaded records
// and serializes the result for download.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/multihop-ai/nli-review/internal/labeling"
	"github.com/multihop-ai/nli-review/internal/session"
	"github.com/multihop-ai/nli-review/pkg/models"
)

// DefaultFilename is the download name when the caller supplies none.
const DefaultFilename = "updated_labeled.json"

// Export merges overrides and text edits into the example records and
// returns the pretty-printed JSON array. Export is all-or-nothing: a
// serialization failure leaves nothing written and the session intact.
func Export(examples []models.Example, sess *session.Session, labeler *labeling.Service) ([]byte, error) {
	records := make([]map[string]any, 0, len(examples))
	for _, ex := range examples {
		records = append(records, record(ex, sess, labeler))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // keep non-ASCII and quoted text readable
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("serialize export: %w", err)
	}
	return buf.Bytes(), nil
}

// record builds one output object: every uploaded field round-trips, then
// the derived fields and any session edits are laid on top.
func record(ex models.Example, sess *session.Session, labeler *labeling.Service) map[string]any {
	override, hasOverride := sess.Override(ex.CleanID)
	d := labeler.Derive(ex, override, hasOverride)

	out := make(map[string]any, len(ex.Extra)+12)
	for key, value := range ex.Extra {
		out[key] = value
	}
	for _, v := range ex.Votes {
		out[v.Field] = v.Raw
	}

	out["id"] = ex.ID
	out["clean_id"] = ex.CleanID
	out["premises"] = premises(ex, sess)
	out["hypothesis"] = hypothesis(ex, sess)
	out["original_label"] = ex.OriginalLabel
	out["model_votes"] = d.ModelVotes
	out["num_agree"] = d.NumAgree
	out["override_type"] = overrideType(d, override, hasOverride)
	out["final_label"] = d.FinalLabel

	if d.HasAuto() {
		out["auto_label"] = d.AutoLabel
	} else {
		out["auto_label"] = nil
	}

	// a manual override becomes the stored label of the exported file
	if hasOverride {
		out["label"] = override
	} else {
		out["label"] = ex.Label
	}

	return out
}

// overrideType recomputes the exported assignment against the auto label:
// an override that merely confirms the auto label still counts as "auto".
func overrideType(d models.Derived, override string, hasOverride bool) models.Assignment {
	if hasOverride && override == d.AutoLabel {
		return models.AssignmentAuto
	}
	return d.Assignment
}

// premises applies a session edit to an example's premises: the edited
// multi-line text is re-split into one premise per line, blanks dropped.
func premises(ex models.Example, sess *session.Session) []string {
	text, ok := sess.EditedText(ex.CleanID, models.FieldPremises)
	if !ok {
		return ex.Premises
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func hypothesis(ex models.Example, sess *session.Session) string {
	if text, ok := sess.EditedText(ex.CleanID, models.FieldHypothesis); ok {
		return text
	}
	return ex.Hypothesis
}

// JoinPremises renders the premises list as the multi-line text the edit
// surface works on.
func JoinPremises(premises []string) string {
	return strings.Join(premises, "\n")
}
