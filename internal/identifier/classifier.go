// Package identifier classifies raw contract identifier strings into the
// families the resolver knows how to search for, and expands each into the
// textual variants worth probing against exact-match fields.
package identifier

import (
	"regexp"
	"strings"
)

// Kind is the identifier family a raw string belongs to.
type Kind string

const (
	// CanonicalID is the system-of-record's own opaque id (32 hex chars).
	CanonicalID Kind = "canonical_id"
	// HumanCode is an agency-issued human-readable code with loose formatting.
	HumanCode Kind = "human_code"
	// SolicitationNumber is a stricter agency solicitation code shape.
	SolicitationNumber Kind = "solicitation_number"
	// Unknown is anything that matched no known shape.
	Unknown Kind = "unknown"
)

// Analysis is derived once from the raw input: a kind, the trimmed
// form, and the ordered set of variants to try against exact-match fields.
// Variants are ordered most-specific first and never empty.
type Analysis struct {
	Kind       Kind
	Normalized string
	Variants   []string
}

var (
	canonicalPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

	// Human-facing code shapes, loosest family: letters wrapping a digit
	// run, or letter/digit runs joined by dashes or underscores.
	humanCodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[A-Za-z]+[0-9]+[A-Za-z]+$`),
		regexp.MustCompile(`^[A-Za-z0-9]+(-[A-Za-z0-9]+)+$`),
		regexp.MustCompile(`^[A-Za-z0-9]+(_[A-Za-z0-9]+)+$`),
	}

	// Solicitation numbers: letter prefix followed by digit groups with
	// optional letters between them (e.g. FA527025R0012).
	solicitationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[A-Za-z]{1,4}[0-9]+(?:[A-Za-z]+[0-9]+)+$`),
		regexp.MustCompile(`^[A-Za-z]+[0-9]{4,}$`),
	}
)

// Classify analyzes a raw identifier string. It is a total function: input
// that matches no known shape comes back as Unknown with case variants only.
func Classify(raw string) Analysis {
	normalized := strings.TrimSpace(raw)

	if canonicalPattern.MatchString(normalized) {
		// Canonical ids are compared byte-for-byte; expanding case
		// variants here would only add fuzzy-search noise.
		return Analysis{
			Kind:       CanonicalID,
			Normalized: normalized,
			Variants:   []string{normalized},
		}
	}

	for _, p := range humanCodePatterns {
		if p.MatchString(normalized) {
			return Analysis{
				Kind:       HumanCode,
				Normalized: normalized,
				Variants:   humanCodeVariants(normalized),
			}
		}
	}

	for _, p := range solicitationPatterns {
		if p.MatchString(normalized) {
			return Analysis{
				Kind:       SolicitationNumber,
				Normalized: normalized,
				Variants:   caseVariants(normalized),
			}
		}
	}

	return Analysis{
		Kind:       Unknown,
		Normalized: normalized,
		Variants:   caseVariants(normalized),
	}
}

// caseVariants returns the normalized form plus its upper and lower forms,
// de-duplicated, original first.
func caseVariants(s string) []string {
	return dedupe([]string{s, strings.ToUpper(s), strings.ToLower(s)})
}

// humanCodeVariants expands a human code into every separator and case
// permutation some source might store it under. For dashed codes the
// individual segments and the first+last pair are included as well:
// agency codes like AGENCY-25-X-0042 are often keyed by only the agency
// and serial segments.
func humanCodeVariants(s string) []string {
	variants := []string{s, strings.ToUpper(s), strings.ToLower(s)}

	if strings.Contains(s, "-") {
		variants = append(variants,
			strings.ReplaceAll(s, "-", ""),
			strings.ReplaceAll(s, "-", "_"),
		)
	}
	if strings.Contains(s, "_") {
		variants = append(variants,
			strings.ReplaceAll(s, "_", ""),
			strings.ReplaceAll(s, "_", "-"),
		)
	}

	if segments := strings.Split(s, "-"); len(segments) > 1 {
		for _, seg := range segments {
			if seg != "" {
				variants = append(variants, seg)
			}
		}
		first, last := segments[0], segments[len(segments)-1]
		if first != "" && last != "" {
			variants = append(variants, first+"-"+last)
		}
	}

	return dedupe(variants)
}

// dedupe removes duplicates preserving first-occurrence order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
