package rankings

import (
	"strings"

	"pubtrack/normalize"
)

// DGRSDT returns the DGRSDT category for a journal and year. Categories are
// scanned in the order the manifest declares them; the first matching
// category name is the rank. The special PEDIATRICE category lists journals
// by name only; every other category matches on normalized ISSN first, then
// on the exact journal title. Returns "" when nothing matches.
func (c *Catalog) DGRSDT(year int, journalName, issn string) string {
	files := c.manifest.DGRSDTFiles(year)
	if len(files) == 0 {
		return ""
	}

	wantISSN := normalize.ISSN(issn)
	wantTitle := strings.TrimSpace(journalName)
	wantName := normalize.Name(journalName)

	for _, cf := range files {
		rows, err := c.xlsxRows(cf.Path)
		if err != nil {
			c.warnFile(cf.Path, err)
			continue
		}
		if len(rows) < 2 {
			continue
		}

		nameIdx, issnIdx := dgrsdtColumns(rows[0])

		if cf.Category == DGRSDTPediatriceCategory {
			if dgrsdtMatchName(rows[1:], nameIdx, wantName) {
				return cf.Category
			}
			continue
		}

		if wantISSN != "" && dgrsdtMatchISSN(rows[1:], issnIdx, wantISSN) {
			return cf.Category
		}
		if wantTitle != "" && dgrsdtMatchTitle(rows[1:], nameIdx, wantTitle) {
			return cf.Category
		}
	}
	return ""
}

// DGRSDTPediatriceCategory is the name-listed special category.
const DGRSDTPediatriceCategory = "PEDIATRICE"

// dgrsdtColumns locates the journal-name and ISSN columns from the header
// row, falling back to the first two columns.
func dgrsdtColumns(header []string) (name, issn int) {
	name, issn = 0, 1
	for i, h := range header {
		lowered := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(lowered, "issn"):
			issn = i
		case strings.Contains(lowered, "journal"),
			strings.Contains(lowered, "revue"),
			strings.Contains(lowered, "title"),
			strings.Contains(lowered, "titre"):
			name = i
		}
	}
	return
}

func dgrsdtMatchISSN(rows [][]string, issnIdx int, want string) bool {
	for _, row := range rows {
		if issnIdx >= len(row) {
			continue
		}
		if normalize.ISSN(row[issnIdx]) == want {
			return true
		}
	}
	return false
}

func dgrsdtMatchTitle(rows [][]string, nameIdx int, want string) bool {
	for _, row := range rows {
		if nameIdx >= len(row) {
			continue
		}
		if strings.TrimSpace(row[nameIdx]) == want {
			return true
		}
	}
	return false
}

func dgrsdtMatchName(rows [][]string, nameIdx int, wantNormalized string) bool {
	if wantNormalized == "" {
		return false
	}
	for _, row := range rows {
		if nameIdx >= len(row) {
			continue
		}
		if normalize.Name(row[nameIdx]) == wantNormalized {
			return true
		}
	}
	return false
}
