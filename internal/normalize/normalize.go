// Package normalize contains pure text-normalization helpers for extracted
// recipe and nutrition fields. The extraction model occasionally returns
// LaTeX-style markup and units alongside values; these helpers reduce that
// output to the plain-text form stored in the database.
package normalize

import (
	"regexp"
	"strings"
)

var (
	inlineMathRe    = regexp.MustCompile(`\$[^$]*\$`)
	markupCommandRe = regexp.MustCompile(`\\[a-zA-Z]+\s*(\{[^}]*\})?`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	numberRe        = regexp.MustCompile(`[0-9.]+`)
)

// ListSeparator joins normalized list entries and is what the UI re-splits on.
const ListSeparator = "; "

// RecipeText strips inline math segments ($...$) and markup command
// sequences (\cmd{...}) from s, then collapses whitespace runs to single
// spaces and trims. An empty input yields an empty string.
func RecipeText(s string) string {
	if s == "" {
		return ""
	}
	t := inlineMathRe.ReplaceAllString(s, " ")
	t = markupCommandRe.ReplaceAllString(t, " ")
	t = whitespaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// JoinList maps each entry through RecipeText, drops empties and joins the
// rest with ListSeparator. This is the canonical stored form for ingredient
// and preparation lists.
func JoinList(entries []string) string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if t := RecipeText(e); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, ListSeparator)
}

// Num extracts the first contiguous run of digits and dots from a free-text
// nutrition value ("580 Kcal" -> "580"). Returns nil when no digits are found,
// which downstream layers store as NULL.
func Num(raw string) *string {
	m := numberRe.FindString(raw)
	if m == "" {
		return nil
	}
	return &m
}
