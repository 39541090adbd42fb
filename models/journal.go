package models

import (
	"time"

	"gorm.io/gorm"

	"pubtrack/normalize"
)

// Journal is the canonical record for a journal venue. Identity is
// reconciled before insertion: lookup by ISSN first, then by normalized
// name, so the same journal is never stored twice.
type Journal struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name string `json:"name" gorm:"not null"`
	// NormName backs the normalized-name dedup rule; the unique index is
	// the last line of defense against reconciliation misses.
	NormName string `json:"-" gorm:"uniqueIndex"`
	// ISSN and EISSN are stored without hyphens (e.g. "12345678").
	ISSN  *string `json:"issn,omitempty" gorm:"uniqueIndex"`
	EISSN *string `json:"e_issn,omitempty" gorm:"uniqueIndex"`
	URL   string  `json:"url,omitempty"`

	Publications []JournalPublication `json:"publications,omitempty" gorm:"foreignKey:JournalID;constraint:OnDelete:SET NULL"`
	Rankings     []JournalRanking     `json:"rankings,omitempty" gorm:"foreignKey:JournalID;constraint:OnDelete:CASCADE"`
}

// BeforeSave keeps the normalized lookup fields in sync and strips ISSN
// hyphens before anything reaches the database.
func (j *Journal) BeforeSave(tx *gorm.DB) error {
	j.NormName = normalize.Name(j.Name)
	j.ISSN = normalizeISSNPtr(j.ISSN)
	j.EISSN = normalizeISSNPtr(j.EISSN)
	return nil
}

func normalizeISSNPtr(issn *string) *string {
	if issn == nil {
		return nil
	}
	n := normalize.ISSN(*issn)
	if n == "" {
		return nil
	}
	return &n
}

func (Journal) TableName() string {
	return "journals"
}

// JournalRanking holds a journal's quality classification for one year.
// At most one row per (journal, year); existing rows are authoritative and
// never overwritten by the enrichment batch.
type JournalRanking struct {
	JournalID uint `json:"journal_id" gorm:"primaryKey;autoIncrement:false"`
	Year      int  `json:"year" gorm:"primaryKey;autoIncrement:false"`

	CreatedAt time.Time `json:"created_at"`

	// nil means unknown, not "unranked".
	ScimagoRank   *string `json:"scimago_rank,omitempty"`
	DGRSDTRank    *string `json:"dgrsdt_rank,omitempty"`
	ScopusIndexed *bool   `json:"is_scopus_indexed,omitempty"`
}

func (JournalRanking) TableName() string {
	return "journal_rankings"
}

// JournalPublication is a journal article. Identity is reconciled by DOI
// first, then by normalized title plus year.
type JournalPublication struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title string `json:"title" gorm:"not null"`
	// NormTitle backs the title+year dedup lookup for DOI-less entries.
	NormTitle string  `json:"-" gorm:"index"`
	Abstract  string  `json:"abstract,omitempty" gorm:"type:text"`
	DOI       *string `json:"doi,omitempty" gorm:"uniqueIndex"`
	Year      int     `json:"year" gorm:"not null;index"`
	URL       string  `json:"url,omitempty"`

	Citations  *int  `json:"citations,omitempty"`
	OpenAccess *bool `json:"is_open_access,omitempty"`

	JournalID *uint    `json:"journal_id,omitempty"`
	Journal   *Journal `json:"journal,omitempty" gorm:"constraint:OnDelete:SET NULL"`

	ResearcherLinks []JournalAuthorship `json:"researcher_links,omitempty" gorm:"foreignKey:PublicationID;constraint:OnDelete:CASCADE"`
}

// BeforeSave keeps the normalized title and DOI in their canonical forms.
func (p *JournalPublication) BeforeSave(tx *gorm.DB) error {
	p.NormTitle = normalize.Name(p.Title)
	p.DOI = normalizeDOIPtr(p.DOI)
	return nil
}

func normalizeDOIPtr(doi *string) *string {
	if doi == nil {
		return nil
	}
	n := normalize.DOI(*doi)
	if n == "" {
		return nil
	}
	return &n
}

func (JournalPublication) TableName() string {
	return "journal_publications"
}
