// Package mergedriver implements a git merge driver for structured
// JSON documents, with a YAML fallback for files that fail JSON
// parsing. It merges the base, current, and other versions three-way
// and rewrites the current file on success.
package mergedriver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"
)

// MergeError reports a structured merge that cannot complete cleanly,
// such as conflicting scalar edits or incompatible types.
type MergeError struct {
	Reason string
}

func (e *MergeError) Error() string {
	return "structured merge failed: " + e.Reason
}

func mergeErrorf(format string, a ...any) *MergeError {
	return &MergeError{Reason: fmt.Sprintf(format, a...)}
}

// Inputs holds the three file paths git passes to a merge driver
// (%O %A %B). Current is rewritten with the merge result.
type Inputs struct {
	Base    string
	Current string
	Other   string
}

// Merge performs the structured three-way merge. It returns false with
// a nil error when the documents conflict, leaving Current untouched.
// Read or decode failures surface as errors.
func Merge(in Inputs) (bool, error) {
	original, err := os.ReadFile(in.Current)
	if err != nil {
		return false, fmt.Errorf("read current version: %w", err)
	}

	base, err := loadDocument(in.Base)
	if err != nil {
		return false, err
	}
	current, err := loadDocument(in.Current)
	if err != nil {
		return false, err
	}
	other, err := loadDocument(in.Other)
	if err != nil {
		return false, err
	}

	merged, err := mergeValues(base, true, current, other)
	if err != nil {
		var mergeErr *MergeError
		if errors.As(err, &mergeErr) {
			// Restore the original so git sees an unmodified
			// conflict rather than a half-written file.
			if writeErr := os.WriteFile(in.Current, original, 0644); writeErr != nil {
				return false, fmt.Errorf("restore current version: %w", writeErr)
			}
			return false, nil
		}
		return false, err
	}

	if err := writeDocument(in.Current, merged); err != nil {
		return false, err
	}
	return true, nil
}

// loadDocument parses path as JSON, falling back to YAML.
func loadDocument(path string) (any, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	var doc any
	if err := json.Unmarshal(text, &doc); err == nil {
		return normalise(doc), nil
	}
	if err := yaml.Unmarshal(text, &doc); err != nil {
		return nil, mergeErrorf("invalid JSON or YAML document: %s", path)
	}
	return normalise(doc), nil
}

func writeDocument(path string, doc any) error {
	formatted, err := json.MarshalIndent(normalise(doc), "", "  ")
	if err != nil {
		return fmt.Errorf("encode merged document: %w", err)
	}
	return os.WriteFile(path, append(formatted, '\n'), 0644)
}

// normalise rewrites decoded values into a single comparable shape:
// string-keyed maps, []any slices, and float64 numbers, so JSON and
// YAML decodings of the same document compare equal.
func normalise(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, nested := range v {
			out[key] = normalise(nested)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, nested := range v {
			out[fmt.Sprint(key)] = normalise(nested)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalise(item)
		}
		return out
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	default:
		return v
	}
}

func equal(left, right any) bool {
	return reflect.DeepEqual(left, right)
}

// mergeValues merges one node of the document tree. baseOK is false
// when the node does not exist in the base version.
func mergeValues(base any, baseOK bool, ours, theirs any) (any, error) {
	if equal(ours, theirs) {
		return ours, nil
	}
	if baseOK && equal(base, ours) {
		return theirs, nil
	}
	if baseOK && equal(base, theirs) {
		return ours, nil
	}

	oursMap, oursIsMap := ours.(map[string]any)
	theirsMap, theirsIsMap := theirs.(map[string]any)
	if oursIsMap && theirsIsMap {
		baseMap := map[string]any{}
		if baseOK && base != nil {
			m, ok := base.(map[string]any)
			if !ok {
				return nil, mergeErrorf("incompatible types during mapping merge")
			}
			baseMap = m
		}
		return mergeMappings(baseMap, oursMap, theirsMap)
	}

	oursSeq, oursIsSeq := ours.([]any)
	theirsSeq, theirsIsSeq := theirs.([]any)
	if oursIsSeq && theirsIsSeq {
		return mergeSequences(base, oursSeq, theirsSeq)
	}

	return nil, mergeErrorf("conflicting changes in scalar value")
}

func mergeMappings(base, ours, theirs map[string]any) (map[string]any, error) {
	keys := make(map[string]struct{})
	for key := range ours {
		keys[key] = struct{}{}
	}
	for key := range theirs {
		keys[key] = struct{}{}
	}
	for key := range base {
		keys[key] = struct{}{}
	}

	ordered := make([]string, 0, len(keys))
	for key := range keys {
		ordered = append(ordered, key)
	}
	sort.Strings(ordered)

	merged := make(map[string]any, len(keys))
	for _, key := range ordered {
		baseValue, baseOK := base[key]
		ourValue, ourOK := ours[key]
		theirValue, theirOK := theirs[key]

		switch {
		case !ourOK && !theirOK:
			continue
		case !ourOK:
			if !baseOK || equal(baseValue, theirValue) {
				merged[key] = theirValue
				continue
			}
			return nil, mergeErrorf("conflicting deletion for key: %s", key)
		case !theirOK:
			if !baseOK || equal(baseValue, ourValue) {
				merged[key] = ourValue
				continue
			}
			return nil, mergeErrorf("conflicting deletion for key: %s", key)
		}

		value, err := mergeValues(baseValue, baseOK, ourValue, theirValue)
		if err != nil {
			return nil, err
		}
		merged[key] = value
	}
	return merged, nil
}

func mergeSequences(base any, ours, theirs []any) (any, error) {
	baseSeq, baseIsSeq := base.([]any)
	if baseIsSeq {
		if equal(ours, baseSeq) {
			return theirs, nil
		}
		if equal(theirs, baseSeq) {
			return ours, nil
		}
	}
	return nil, mergeErrorf("conflicting list modifications")
}
