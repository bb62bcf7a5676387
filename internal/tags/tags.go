// Package tags handles the comma-joined tag strings used for declared user
// preferences and catalog item tags. All comparisons in the recommender run on
// normalized tags, so normalization lives in one place.
package tags

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Normalize trims and case-folds a single tag. Returns "" for blank input.
func Normalize(tag string) string {
	folded := cases.Fold().String(strings.TrimSpace(tag))
	return folded
}

// Split parses a comma-joined tag string into a normalized, deduplicated set.
func Split(joined string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, raw := range strings.Split(joined, ",") {
		if tag := Normalize(raw); tag != "" {
			set[tag] = struct{}{}
		}
	}
	return set
}

// Join renders a tag set back into its stored comma-joined form. Output is
// sorted so the stored string is stable across updates.
func Join(set map[string]struct{}) string {
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// NormalizeSet normalizes a slice of tags into a set, dropping blanks.
func NormalizeSet(raw []string) map[string]struct{} {
	set := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		if tag := Normalize(r); tag != "" {
			set[tag] = struct{}{}
		}
	}
	return set
}
