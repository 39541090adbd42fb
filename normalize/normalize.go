// Package normalize holds the shared identifier and name normalization
// rules used for entity reconciliation.
package normalize

import (
	"regexp"
	"strings"
)

var (
	punctRE      = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multiSpaceRE = regexp.MustCompile(`\s+`)
)

// Name lowercases a venue or publication name, strips punctuation and
// collapses whitespace, so names differing only in case, spacing or a
// trailing period compare equal.
func Name(name string) string {
	name = strings.ToLower(name)
	name = punctRE.ReplaceAllString(name, "")
	name = multiSpaceRE.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// ISSN strips hyphens and whitespace so "1234-5678" and "12345678" compare
// equal. Returns "" for empty input.
func ISSN(issn string) string {
	issn = strings.ReplaceAll(issn, "-", "")
	return strings.TrimSpace(issn)
}

// DOI lowercases a DOI and strips the resolver prefix, the form external
// catalogs key works by.
func DOI(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi:")
	return doi
}

// StripTrailingParen removes a trailing parenthetical from a venue name:
// "Intl. Conf. on X (ICX)" becomes "Intl. Conf. on X". Names without a
// parenthetical are returned unchanged.
func StripTrailingParen(name string) string {
	if i := strings.Index(name, "("); i != -1 {
		return strings.TrimSpace(name[:i])
	}
	return strings.TrimSpace(name)
}

// SplitAcronym splits text of the form "Name (ACRONYM)" into its parts.
// The acronym is empty when the name carries no parenthetical.
func SplitAcronym(name string) (string, string) {
	open := strings.Index(name, "(")
	if open == -1 {
		return strings.TrimSpace(name), ""
	}
	base := strings.TrimSpace(name[:open])
	rest := name[open+1:]
	if close := strings.Index(rest, ")"); close != -1 {
		rest = rest[:close]
	}
	return base, strings.TrimSpace(rest)
}
