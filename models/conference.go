package models

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"pubtrack/normalize"
)

// Conference is the canonical record for a conference venue.
type Conference struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `json:"name" gorm:"not null"`
	NormName string `json:"-" gorm:"uniqueIndex"`
	Acronym  string `json:"acronym,omitempty" gorm:"index"`
	URL      string `json:"url,omitempty"`

	Publications []ConferencePublication `json:"publications,omitempty" gorm:"foreignKey:ConferenceID;constraint:OnDelete:SET NULL"`
	Rankings     []ConferenceRanking     `json:"rankings,omitempty" gorm:"foreignKey:ConferenceID;constraint:OnDelete:CASCADE"`
}

// BeforeSave uppercases name and acronym and refreshes the normalized
// lookup name.
func (c *Conference) BeforeSave(tx *gorm.DB) error {
	c.Name = strings.ToUpper(strings.TrimSpace(c.Name))
	c.Acronym = strings.ToUpper(strings.TrimSpace(c.Acronym))
	c.NormName = normalize.Name(c.Name)
	return nil
}

func (Conference) TableName() string {
	return "conferences"
}

// ConferenceRanking holds a conference's classification for one year.
type ConferenceRanking struct {
	ConferenceID uint `json:"conference_id" gorm:"primaryKey;autoIncrement:false"`
	Year         int  `json:"year" gorm:"primaryKey;autoIncrement:false"`

	CreatedAt time.Time `json:"created_at"`

	CoreRank      *string `json:"core_rank,omitempty"`
	ScimagoRank   *string `json:"scimago_rank,omitempty"`
	ScopusIndexed *bool   `json:"is_scopus_indexed,omitempty"`
}

func (ConferenceRanking) TableName() string {
	return "conference_rankings"
}

// ConferencePublication is a conference paper.
type ConferencePublication struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title     string  `json:"title" gorm:"not null"`
	NormTitle string  `json:"-" gorm:"index"`
	Abstract  string  `json:"abstract,omitempty" gorm:"type:text"`
	DOI       *string `json:"doi,omitempty" gorm:"uniqueIndex"`
	Year      int     `json:"year" gorm:"not null;index"`
	URL       string  `json:"url,omitempty"`

	Citations  *int  `json:"citations,omitempty"`
	OpenAccess *bool `json:"is_open_access,omitempty"`

	ConferenceID *uint       `json:"conference_id,omitempty"`
	Conference   *Conference `json:"conference,omitempty" gorm:"constraint:OnDelete:SET NULL"`

	ResearcherLinks []ConferenceAuthorship `json:"researcher_links,omitempty" gorm:"foreignKey:PublicationID;constraint:OnDelete:CASCADE"`
}

// BeforeSave keeps the normalized title and DOI in their canonical forms.
func (p *ConferencePublication) BeforeSave(tx *gorm.DB) error {
	p.NormTitle = normalize.Name(p.Title)
	p.DOI = normalizeDOIPtr(p.DOI)
	return nil
}

func (ConferencePublication) TableName() string {
	return "conference_publications"
}
