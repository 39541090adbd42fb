package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Laboratory represents a research lab owning zero or more researchers.
type Laboratory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	Website     string `json:"website,omitempty"`

	Researchers []Researcher `json:"researchers,omitempty" gorm:"foreignKey:LabID"`
}

// BeforeSave normalizes the lab name to uppercase so that "lcsi" and "LCSI"
// always hit the same row.
func (l *Laboratory) BeforeSave(tx *gorm.DB) error {
	l.Name = strings.ToUpper(strings.TrimSpace(l.Name))
	return nil
}

func (Laboratory) TableName() string {
	return "laboratories"
}
