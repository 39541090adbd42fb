package models

// Scimago quartiles, shared by journals and conferences.
const (
	ScimagoQ1 = "Q1"
	ScimagoQ2 = "Q2"
	ScimagoQ3 = "Q3"
	ScimagoQ4 = "Q4"
)

// DGRSDT journal categories. PEDIATRICE is a special category listed by
// name instead of ISSN.
const (
	DGRSDTAPlus      = "A+"
	DGRSDTA          = "A"
	DGRSDTB          = "B"
	DGRSDTC          = "C"
	DGRSDTD          = "D"
	DGRSDTE          = "E"
	DGRSDTPediatrice = "PEDIATRICE"
)

// CORE conference ranks.
const (
	CoreAStar = "A*"
	CoreA     = "A"
	CoreB     = "B"
	CoreC     = "C"
)

var (
	scimagoRanks = map[string]bool{ScimagoQ1: true, ScimagoQ2: true, ScimagoQ3: true, ScimagoQ4: true}
	dgrsdtRanks  = map[string]bool{
		DGRSDTAPlus: true, DGRSDTA: true, DGRSDTB: true, DGRSDTC: true,
		DGRSDTD: true, DGRSDTE: true, DGRSDTPediatrice: true,
	}
	coreRanks = map[string]bool{CoreAStar: true, CoreA: true, CoreB: true, CoreC: true}
)

// ValidScimagoRank reports whether s is one of the four quartiles.
func ValidScimagoRank(s string) bool { return scimagoRanks[s] }

// ValidDGRSDTRank reports whether s is a known DGRSDT category.
func ValidDGRSDTRank(s string) bool { return dgrsdtRanks[s] }

// ValidCoreRank reports whether s is a known CORE rank letter.
func ValidCoreRank(s string) bool { return coreRanks[s] }

// ValidPublicationYear rejects years outside the plausible 4-digit range.
func ValidPublicationYear(year int) bool {
	return year > 1950 && year <= 9999
}
