package models

import (
	"time"
)

// Researcher grades as used by the lab administration.
const (
	GradeProfessor           = "Professeur"
	GradeMaitreConferencesA  = "MCA"
	GradeMaitreConferencesB  = "MCB"
	GradeMaitreAssistantA    = "MAA"
	GradeMaitreAssistantB    = "MAB"
	GradeDoctorant           = "Doctorant"
	GradeIngenieurRecherche  = "Ingenieur"
	GradeChercheurPermanent  = "Chercheur"
)

// ValidGrade reports whether grade is one of the known grade labels.
func ValidGrade(grade string) bool {
	switch grade {
	case GradeProfessor, GradeMaitreConferencesA, GradeMaitreConferencesB,
		GradeMaitreAssistantA, GradeMaitreAssistantB, GradeDoctorant,
		GradeIngenieurRecherche, GradeChercheurPermanent:
		return true
	}
	return false
}

// Researcher represents a lab member whose output is tracked.
type Researcher struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LastName  string `json:"last_name" gorm:"not null"`
	FirstName string `json:"first_name" gorm:"not null"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Phone     string `json:"phone,omitempty"`
	Grade     string `json:"grade" gorm:"not null"`

	// External profiles. DBLPURL is filled lazily by the enrichment batch
	// when missing.
	GoogleScholarURL string `json:"google_scholar_url,omitempty"`
	DBLPURL          string `json:"dblp_url,omitempty"`

	HIndex   int `json:"h_index" gorm:"default:0"`
	I10Index int `json:"i10_index" gorm:"default:0"`

	LabID *uint       `json:"lab_id,omitempty"`
	Lab   *Laboratory `json:"lab,omitempty" gorm:"constraint:OnDelete:SET NULL"`

	// Authorship links die with the researcher.
	JournalLinks    []JournalAuthorship    `json:"-" gorm:"foreignKey:ResearcherID;constraint:OnDelete:CASCADE"`
	ConferenceLinks []ConferenceAuthorship `json:"-" gorm:"foreignKey:ResearcherID;constraint:OnDelete:CASCADE"`
}

// FullName returns the display name as DBLP prints it (first name first).
func (r *Researcher) FullName() string {
	return r.FirstName + " " + r.LastName
}

func (Researcher) TableName() string {
	return "researchers"
}
