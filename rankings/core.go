package rankings

import (
	"strings"
)

// CORE portal exports are headerless CSVs with fixed columns.
const (
	coreColTitle   = 1
	coreColAcronym = 2
	coreColRank    = 4
)

// Core returns the CORE rank letter for a conference and publication year.
// The applicable list is the latest CORE year at or before the publication
// year (or the earliest list when the paper predates all of them). Matching
// is by uppercased acronym first, then by case-insensitive substring on the
// conference title. Returns "" when nothing matches.
func (c *Catalog) Core(pubYear int, conferenceTitle, acronym string) string {
	path, _ := c.manifest.CoreFile(pubYear)
	if path == "" {
		return ""
	}
	rows, err := c.csvRows(path, ',')
	if err != nil {
		c.warnFile(path, err)
		return ""
	}

	wantAcr := strings.ToUpper(strings.TrimSpace(acronym))
	if wantAcr != "" {
		for _, row := range rows {
			if coreColRank >= len(row) {
				continue
			}
			if strings.ToUpper(strings.TrimSpace(row[coreColAcronym])) == wantAcr {
				return strings.TrimSpace(row[coreColRank])
			}
		}
	}

	wantTitle := strings.ToLower(strings.TrimSpace(conferenceTitle))
	if wantTitle == "" {
		return ""
	}
	for _, row := range rows {
		if coreColRank >= len(row) {
			continue
		}
		rowTitle := strings.ToLower(strings.TrimSpace(row[coreColTitle]))
		if rowTitle == "" {
			continue
		}
		if strings.Contains(rowTitle, wantTitle) || strings.Contains(wantTitle, rowTitle) {
			return strings.TrimSpace(row[coreColRank])
		}
	}
	return ""
}
