package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"previaje/internal/core"
)

var ErrJoinMismatch = errors.New("province names do not join across tables")

// Mismatch is a travel destination missing from another table.
type Mismatch struct {
	Name string
	// Suggestion is a name of the other table that differs only in case or
	// accents, when there is one.
	Suggestion string
}

func (m Mismatch) String() string {
	if m.Suggestion != "" {
		return fmt.Sprintf("%q (did you mean %q?)", m.Name, m.Suggestion)
	}
	return fmt.Sprintf("%q", m.Name)
}

// JoinReport lists travel destinations that cannot be joined with the
// population table or the geometry.
type JoinReport struct {
	MissingPopulation []Mismatch
	MissingGeometry   []Mismatch
}

// OK reports whether every destination joins.
func (r JoinReport) OK() bool {
	return len(r.MissingPopulation) == 0 && len(r.MissingGeometry) == 0
}

// Err returns nil when the report is OK, otherwise an error wrapping
// ErrJoinMismatch with every mismatch.
func (r JoinReport) Err() error {
	if r.OK() {
		return nil
	}
	var parts []string
	if len(r.MissingPopulation) > 0 {
		parts = append(parts, "no population for "+joinMismatches(r.MissingPopulation))
	}
	if len(r.MissingGeometry) > 0 {
		parts = append(parts, "no geometry for "+joinMismatches(r.MissingGeometry))
	}
	return fmt.Errorf("%w: %s", ErrJoinMismatch, strings.Join(parts, "; "))
}

func joinMismatches(ms []Mismatch) string {
	s := make([]string, len(ms))
	for i, m := range ms {
		s[i] = m.String()
	}
	return strings.Join(s, ", ")
}

// CheckJoins compares the destinations of travel against the population
// table and the geometry feature names.
func CheckJoins(populations []core.Population, travel []core.Travel, geometryNames []string) JoinReport {
	popNames := make([]string, len(populations))
	for i, p := range populations {
		popNames[i] = p.Province
	}

	destinations := make(map[string]struct{})
	for _, t := range travel {
		destinations[t.Destination] = struct{}{}
	}
	sorted := make([]string, 0, len(destinations))
	for d := range destinations {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	return JoinReport{
		MissingPopulation: missingFrom(sorted, popNames),
		MissingGeometry:   missingFrom(sorted, geometryNames),
	}
}

func missingFrom(names, known []string) []Mismatch {
	exact := make(map[string]struct{}, len(known))
	folded := make(map[string]string, len(known))
	for _, k := range known {
		exact[k] = struct{}{}
		folded[Fold(k)] = k
	}
	var out []Mismatch
	for _, n := range names {
		if _, ok := exact[n]; ok {
			continue
		}
		out = append(out, Mismatch{Name: n, Suggestion: folded[Fold(n)]})
	}
	return out
}

// Fold lowercases s and strips diacritics, so that "Neuquén" and "NEUQUEN"
// fold to the same key.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
