package models

// Author position markers, as reported by OpenAlex.
const (
	PositionFirst  = "first"
	PositionMiddle = "middle"
	PositionLast   = "last"
)

// JournalAuthorship links a researcher to a journal publication. Rows
// cascade-delete with either side; the ON DELETE clauses live on the
// association fields of Researcher and JournalPublication.
type JournalAuthorship struct {
	ResearcherID  uint `json:"researcher_id" gorm:"primaryKey;autoIncrement:false"`
	PublicationID uint `json:"publication_id" gorm:"primaryKey;autoIncrement:false"`

	// Position is nil when the metadata fetch could not determine it.
	Position *string `json:"position,omitempty"`
}

func (JournalAuthorship) TableName() string {
	return "journal_authorships"
}

// ConferenceAuthorship links a researcher to a conference publication.
type ConferenceAuthorship struct {
	ResearcherID  uint `json:"researcher_id" gorm:"primaryKey;autoIncrement:false"`
	PublicationID uint `json:"publication_id" gorm:"primaryKey;autoIncrement:false"`

	Position *string `json:"position,omitempty"`
}

func (ConferenceAuthorship) TableName() string {
	return "conference_authorships"
}
