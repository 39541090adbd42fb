package rankings

import (
	"strings"

	"pubtrack/normalize"
)

// ScimagoMatch is one row of a Scimago yearly list, split into the fields
// the enrichment pipeline stores.
type ScimagoMatch struct {
	Title    string
	ISSN     string
	EISSN    string
	Quartile string
}

// scimagoStrategy matches one row of the Scimago table. Strategies run in
// declaration order; within a strategy the first matching row in file order
// wins.
type scimagoStrategy func(normalizedTitle, issnField string) bool

// Scimago looks a journal up in the year's Scimago list. The lookup tries,
// in order: exact normalized-name match, the same with a trailing
// parenthetical removed, substring match of the OpenAlex-resolved ISSN, and
// substring match of the caller-supplied ISSN. Returns nil when the year has
// no list or nothing matches.
func (c *Catalog) Scimago(year int, journalName, resolvedISSN, requestedISSN string) *ScimagoMatch {
	path := c.manifest.ScimagoFile(year)
	if path == "" {
		return nil
	}
	rows, err := c.csvRows(path, ';')
	if err != nil {
		c.warnFile(path, err)
		return nil
	}
	if len(rows) < 2 {
		return nil
	}

	titleIdx, issnIdx, quartileIdx := scimagoColumns(rows[0])
	if titleIdx < 0 || quartileIdx < 0 {
		return nil
	}

	wantName := normalize.Name(journalName)
	wantShort := normalize.Name(normalize.StripTrailingParen(journalName))
	wantResolved := normalize.ISSN(resolvedISSN)
	wantRequested := normalize.ISSN(requestedISSN)

	strategies := []scimagoStrategy{
		func(title, _ string) bool { return wantName != "" && title == wantName },
		func(title, _ string) bool { return wantShort != "" && title == wantShort },
		func(_, issn string) bool { return wantResolved != "" && strings.Contains(issn, wantResolved) },
		func(_, issn string) bool { return wantRequested != "" && strings.Contains(issn, wantRequested) },
	}

	for _, match := range strategies {
		for _, row := range rows[1:] {
			if titleIdx >= len(row) {
				continue
			}
			issnField := ""
			if issnIdx >= 0 && issnIdx < len(row) {
				issnField = normalize.ISSN(row[issnIdx])
			}
			if !match(normalize.Name(row[titleIdx]), issnField) {
				continue
			}
			return scimagoRow(row, titleIdx, issnIdx, quartileIdx)
		}
	}
	return nil
}

// scimagoColumns locates the Title, Issn and SJR Best Quartile columns.
func scimagoColumns(header []string) (title, issn, quartile int) {
	title, issn, quartile = -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "title":
			title = i
		case "issn":
			issn = i
		case "sjr best quartile":
			quartile = i
		}
	}
	return
}

func scimagoRow(row []string, titleIdx, issnIdx, quartileIdx int) *ScimagoMatch {
	m := &ScimagoMatch{Title: strings.TrimSpace(row[titleIdx])}
	if quartileIdx < len(row) {
		m.Quartile = strings.TrimSpace(row[quartileIdx])
	}
	// Scimago packs "ISSN, EISSN" into one comma-separated field.
	if issnIdx >= 0 && issnIdx < len(row) {
		parts := strings.Split(row[issnIdx], ",")
		if len(parts) > 0 {
			m.ISSN = normalize.ISSN(parts[0])
		}
		if len(parts) > 1 {
			m.EISSN = normalize.ISSN(parts[1])
		}
	}
	return m
}
