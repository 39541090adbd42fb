package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"pubtrack/models"
	"pubtrack/normalize"
)

// JournalIdentity is the reconciled identity of a journal venue: display
// name plus the best ISSN/eISSN pair the external catalog and the local
// reference files could agree on. A nil ScopusIndexed means unknown.
type JournalIdentity struct {
	Name          string
	ISSN          string
	EISSN         string
	ScopusIndexed *bool
}

// resolveJournalIdentity queries OpenAlex for the journal's ISSNs, trying
// the full display name first and the name without a trailing parenthetical
// second. requestedISSN is the ISSN delivered alongside the entry metadata
// and serves as the last fallback.
func (s *EnrichmentService) resolveJournalIdentity(ctx context.Context, name, requestedISSN string) JournalIdentity {
	ident := JournalIdentity{Name: name}
	if name == "" {
		ident.ISSN = normalize.ISSN(requestedISSN)
		return ident
	}

	issn, eissn, scopus := s.OpenAlex.ResolveISSN(ctx, name, normalize.StripTrailingParen(name))
	ident.ISSN = normalize.ISSN(issn)
	ident.EISSN = normalize.ISSN(eissn)
	ident.ScopusIndexed = scopus
	if ident.ISSN == "" {
		ident.ISSN = normalize.ISSN(requestedISSN)
	}
	return ident
}

// journalLookup is one strategy in the ordered venue-reconciliation chain.
// It returns (nil, nil) when the strategy finds nothing.
type journalLookup func(tx *gorm.DB) (*models.Journal, error)

// ensureJournal finds or creates the journal for the given identity.
// Lookup order: ISSN, then eISSN, then normalized name; the first hit wins,
// so a venue row is never duplicated. Returns nil when the identity is too thin
// to name a venue at all.
func (s *EnrichmentService) ensureJournal(tx *gorm.DB, ident JournalIdentity) (*models.Journal, error) {
	if ident.Name == "" && ident.ISSN == "" {
		return nil, nil
	}

	lookups := []journalLookup{
		journalByISSN(ident.ISSN),
		journalByISSN(ident.EISSN),
		journalByNormName(ident.Name),
	}
	for _, lookup := range lookups {
		j, err := lookup(tx)
		if err != nil {
			return nil, err
		}
		if j != nil {
			return j, nil
		}
	}

	j := &models.Journal{Name: ident.Name}
	if ident.Name == "" {
		// ISSN-only identity; keep the row addressable.
		j.Name = ident.ISSN
	}
	if ident.ISSN != "" {
		j.ISSN = &ident.ISSN
	}
	if ident.EISSN != "" {
		j.EISSN = &ident.EISSN
	}
	if err := tx.Create(j).Error; err != nil {
		return nil, err
	}
	return j, nil
}

func journalByISSN(issn string) journalLookup {
	return func(tx *gorm.DB) (*models.Journal, error) {
		if issn == "" {
			return nil, nil
		}
		var j models.Journal
		err := tx.Where("issn = ? OR eissn = ?", issn, issn).First(&j).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &j, nil
	}
}

func journalByNormName(name string) journalLookup {
	return func(tx *gorm.DB) (*models.Journal, error) {
		norm := normalize.Name(name)
		if norm == "" {
			return nil, nil
		}
		var j models.Journal
		err := tx.Where("norm_name = ?", norm).First(&j).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &j, nil
	}
}

// ensureConference finds or creates a conference by normalized name, then
// by acronym. Returns nil when neither name nor acronym is known.
func (s *EnrichmentService) ensureConference(tx *gorm.DB, name, acronym string) (*models.Conference, error) {
	if name == "" && acronym == "" {
		return nil, nil
	}

	if norm := normalize.Name(name); norm != "" {
		var c models.Conference
		err := tx.Where("norm_name = ?", norm).First(&c).Error
		if err == nil {
			return &c, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if acronym != "" {
		var c models.Conference
		err := tx.Where("acronym = ?", strings.ToUpper(strings.TrimSpace(acronym))).First(&c).Error
		if err == nil {
			return &c, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	c := &models.Conference{Name: name, Acronym: acronym}
	if c.Name == "" {
		c.Name = acronym
	}
	if err := tx.Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ensureJournalRanking creates the (journal, year) ranking row unless one
// already exists. Existing rows are authoritative and never overwritten.
func (s *EnrichmentService) ensureJournalRanking(tx *gorm.DB, journalID uint, year int, scimago, dgrsdt *string, scopus *bool) error {
	var existing models.JournalRanking
	err := tx.Where("journal_id = ? AND year = ?", journalID, year).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&models.JournalRanking{
		JournalID:     journalID,
		Year:          year,
		ScimagoRank:   scimago,
		DGRSDTRank:    dgrsdt,
		ScopusIndexed: scopus,
	}).Error
}

// ensureConferenceRanking is the conference counterpart of
// ensureJournalRanking.
func (s *EnrichmentService) ensureConferenceRanking(tx *gorm.DB, conferenceID uint, year int, core, scimago *string, scopus *bool) error {
	var existing models.ConferenceRanking
	err := tx.Where("conference_id = ? AND year = ?", conferenceID, year).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&models.ConferenceRanking{
		ConferenceID:  conferenceID,
		Year:          year,
		CoreRank:      core,
		ScimagoRank:   scimago,
		ScopusIndexed: scopus,
	}).Error
}
