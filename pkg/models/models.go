package models

// Assignment indicates how an example's final label was chosen.
type Assignment string

// Assignment constants.
const (
	AssignmentAuto   Assignment = "auto"
	AssignmentManual Assignment = "manual"
)

// Editable field names accepted by the edit endpoints.
const (
	FieldPremises   = "premises"
	FieldHypothesis = "hypothesis"
)

// UnknownLabel is the sentinel final label when nothing else resolves.
const UnknownLabel = "unknown"

// VoteSource is one model's validation vote for an example, extracted once
// at load time from a field whose name ends with "_validated".
type VoteSource struct {
	Field string `json:"field"` // original field name, e.g. "runs/modelX/nli_validated"
	Model string `json:"model"` // short model name from the field path
	Label string `json:"label"` // normalized vote (trimmed, lower-cased)
	Raw   string `json:"raw"`   // vote value exactly as uploaded
}

// Example is one annotation unit as loaded. It is never mutated after load;
// derived labels and reviewer edits live in separate structures keyed by
// CleanID and are merged back only at export time.
type Example struct {
	ID            string       `json:"id"`
	CleanID       string       `json:"clean_id"`
	Premises      []string     `json:"premises"`
	Hypothesis    string       `json:"hypothesis"`
	Label         string       `json:"label"`
	OriginalLabel string       `json:"original_label"`
	Votes         []VoteSource `json:"-"`

	// Extra holds every uploaded field not captured above so it can
	// round-trip to the export untouched.
	Extra map[string]any `json:"-"`
}

// Derived holds the labels computed from an example's votes plus any manual
// override. Recomputing Derived never touches the Example it came from.
type Derived struct {
	ModelVotes map[string]string `json:"model_votes"`
	AutoLabel  string            `json:"auto_label,omitempty"` // empty when no majority
	NumAgree   int               `json:"num_agree"`
	Agreement  string            `json:"agreement"` // tier as "n/3"
	FinalLabel string            `json:"final_label"`
	Assignment Assignment        `json:"override_type"`
	Note       string            `json:"note"`
}

// HasAuto reports whether the vote tally produced a majority label.
func (d Derived) HasAuto() bool {
	return d.AutoLabel != ""
}
