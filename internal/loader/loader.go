package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/multihop-ai/nli-review/pkg/models"
)

var (
	ErrNotArray    = errors.New("top-level JSON value is not an array")
	ErrInvalidJSON = errors.New("invalid JSON document")
)

// voteSuffix marks a field as a model validation vote.
const voteSuffix = "_validated"

// cleanIDPattern matches a trailing "_<digits>" run at the end of a raw id.
var cleanIDPattern = regexp.MustCompile(`_(\d+)$`)

// CleanID extracts the trailing numeric suffix of a raw example identifier.
// Identifiers without one pass through unchanged.
func CleanID(rawID string) string {
	if m := cleanIDPattern.FindStringSubmatch(rawID); m != nil {
		return m[1]
	}
	return rawID
}

// canonical fields are lifted onto the Example struct; everything else goes
// into Extra so it round-trips to the export.
var canonicalFields = map[string]bool{
	"id":         true,
	"clean_id":   true,
	"premises":   true,
	"hypothesis": true,
	"label":      true,

	// derived fields from a previous export; recomputed on load
	"original_label": true,
	"auto_label":     true,
	"num_agree":      true,
	"model_votes":    true,
	"override_type":  true,
	"final_label":    true,
	"agreement":      true,
	"note":           true,
}

// Load parses an uploaded JSON array into Example records. Any failure is
// fatal to the whole load: no partial set is ever returned.
func Load(r io.Reader) ([]models.Example, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: got %s", ErrNotArray, typeErr.Value)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	examples := make([]models.Example, 0, len(raw))
	for i, msg := range raw {
		ex, err := parseExample(msg)
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

func parseExample(msg json.RawMessage) (models.Example, error) {
	var obj map[string]any
	if err := json.Unmarshal(msg, &obj); err != nil {
		return models.Example{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	ex := models.Example{
		ID:         stringField(obj, "id"),
		Hypothesis: stringField(obj, "hypothesis"),
		Label:      stringField(obj, "label"),
		Premises:   stringSlice(obj["premises"]),
		Extra:      map[string]any{},
	}

	// A clean_id from a previous export wins over re-derivation so search
	// keys stay stable across sessions.
	ex.CleanID = stringField(obj, "clean_id")
	if ex.CleanID == "" {
		ex.CleanID = CleanID(ex.ID)
	}

	// original_label is set exactly once: keep the uploaded value if the
	// file has been through a review round already.
	if _, ok := obj["original_label"]; ok {
		ex.OriginalLabel = stringField(obj, "original_label")
	} else {
		ex.OriginalLabel = ex.Label
	}

	// Walk keys in document order, not map order: the vote tally breaks
	// ties by first-seen vote, so vote order must match the file.
	keys, err := fieldOrder(msg)
	if err != nil {
		return models.Example{}, err
	}
	for _, key := range keys {
		value := obj[key]
		if strings.HasSuffix(key, voteSuffix) {
			if raw, ok := value.(string); ok {
				ex.Votes = append(ex.Votes, newVoteSource(key, raw))
				continue
			}
		}
		if canonicalFields[key] {
			continue
		}
		ex.Extra[key] = value
	}
	return ex, nil
}

// fieldOrder returns the object's top-level keys in document order.
func fieldOrder(msg json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: array element is not an object", ErrInvalidJSON)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrInvalidJSON, tok)
		}
		keys = append(keys, key)

		// consume the value belonging to this key
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
	}
	return keys, nil
}

// newVoteSource builds the typed vote record the rest of the engine works
// with, so the "_validated" naming convention is parsed in exactly one place.
func newVoteSource(field, raw string) models.VoteSource {
	model := strings.TrimSuffix(field, voteSuffix)
	if parts := strings.Split(field, "/"); len(parts) >= 2 {
		model = parts[len(parts)-2]
	}
	return models.VoteSource{
		Field: field,
		Model: model,
		Label: strings.ToLower(strings.TrimSpace(raw)),
		Raw:   raw,
	}
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return ""
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
