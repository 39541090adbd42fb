package services

import (
	"errors"

	"gorm.io/gorm"

	"pubtrack/models"
	"pubtrack/normalize"
	"pubtrack/providers/dblp"
	"pubtrack/providers/openalex"
)

// ensureJournalPublication finds or creates a journal article. Dedup order:
// DOI first, normalized title plus year second. Reports whether a new row
// was created.
func (s *EnrichmentService) ensureJournalPublication(tx *gorm.DB, entry dblp.Entry, meta openalex.WorkMetadata, journal *models.Journal) (*models.JournalPublication, bool, error) {
	if doi := normalize.DOI(entry.DOI); doi != "" {
		var p models.JournalPublication
		err := tx.Where("doi = ?", doi).First(&p).Error
		if err == nil {
			return &p, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}
	if norm := normalize.Name(entry.Title); norm != "" {
		var p models.JournalPublication
		err := tx.Where("norm_title = ? AND year = ?", norm, entry.Year).First(&p).Error
		if err == nil {
			return &p, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	p := &models.JournalPublication{
		Title:      entry.Title,
		Abstract:   meta.Abstract,
		Year:       entry.Year,
		URL:        pickURL(meta.OAURL, entry.URL),
		Citations:  meta.Citations,
		OpenAccess: meta.OpenAccess,
	}
	if doi := normalize.DOI(entry.DOI); doi != "" {
		p.DOI = &doi
	}
	if journal != nil {
		p.JournalID = &journal.ID
	}
	if err := tx.Create(p).Error; err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// ensureConferencePublication is the conference counterpart.
func (s *EnrichmentService) ensureConferencePublication(tx *gorm.DB, entry dblp.Entry, meta openalex.WorkMetadata, conference *models.Conference) (*models.ConferencePublication, bool, error) {
	if doi := normalize.DOI(entry.DOI); doi != "" {
		var p models.ConferencePublication
		err := tx.Where("doi = ?", doi).First(&p).Error
		if err == nil {
			return &p, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}
	if norm := normalize.Name(entry.Title); norm != "" {
		var p models.ConferencePublication
		err := tx.Where("norm_title = ? AND year = ?", norm, entry.Year).First(&p).Error
		if err == nil {
			return &p, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	p := &models.ConferencePublication{
		Title:      entry.Title,
		Abstract:   meta.Abstract,
		Year:       entry.Year,
		URL:        pickURL(meta.OAURL, entry.URL),
		Citations:  meta.Citations,
		OpenAccess: meta.OpenAccess,
	}
	if doi := normalize.DOI(entry.DOI); doi != "" {
		p.DOI = &doi
	}
	if conference != nil {
		p.ConferenceID = &conference.ID
	}
	if err := tx.Create(p).Error; err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// ensureJournalAuthorship links the researcher to the publication unless
// the link already exists.
func (s *EnrichmentService) ensureJournalAuthorship(tx *gorm.DB, researcherID, publicationID uint, position *string) error {
	var link models.JournalAuthorship
	err := tx.Where("researcher_id = ? AND publication_id = ?", researcherID, publicationID).First(&link).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&models.JournalAuthorship{
		ResearcherID:  researcherID,
		PublicationID: publicationID,
		Position:      position,
	}).Error
}

// ensureConferenceAuthorship is the conference counterpart.
func (s *EnrichmentService) ensureConferenceAuthorship(tx *gorm.DB, researcherID, publicationID uint, position *string) error {
	var link models.ConferenceAuthorship
	err := tx.Where("researcher_id = ? AND publication_id = ?", researcherID, publicationID).First(&link).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&models.ConferenceAuthorship{
		ResearcherID:  researcherID,
		PublicationID: publicationID,
		Position:      position,
	}).Error
}

// pickURL prefers the open-access link and falls back to the harvested one.
func pickURL(oaURL, fallback string) string {
	if oaURL != "" {
		return oaURL
	}
	return fallback
}
