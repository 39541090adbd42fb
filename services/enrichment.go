package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pubtrack/config"
	"pubtrack/models"
	"pubtrack/normalize"
	"pubtrack/providers/dblp"
	"pubtrack/providers/openalex"
	"pubtrack/rankings"
)

// EnrichmentService harvests publication records from DBLP, enriches them
// with OpenAlex metadata and local ranking files, and reconciles the result
// into the database.
type EnrichmentService struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *zap.Logger
	OpenAlex *openalex.Fetcher
	DBLP     *dblp.Fetcher
	Catalog  *rankings.Catalog
}

func NewEnrichmentService(cfg *config.Config, db *gorm.DB, logger *zap.Logger, oa *openalex.Fetcher, dp *dblp.Fetcher, catalog *rankings.Catalog) *EnrichmentService {
	return &EnrichmentService{
		Config:   cfg,
		DB:       db,
		Logger:   logger,
		OpenAlex: oa,
		DBLP:     dp,
		Catalog:  catalog,
	}
}

// RunResult summarizes one enrichment pass over a set of researchers.
type RunResult struct {
	ResearchersProcessed int               `json:"researchers_processed"`
	ResearchersFailed    int               `json:"researchers_failed"`
	PublicationsCreated  int               `json:"publications_created"`
	Failures             map[string]string `json:"failures,omitempty"`
}

// RunForAllResearchers enriches every researcher in the database. A failure
// for one researcher is recorded and does not stop the batch. The outcome is
// persisted as an EnrichmentRun row.
func (s *EnrichmentService) RunForAllResearchers(ctx context.Context) (*RunResult, error) {
	var researchers []models.Researcher
	if err := s.DB.Find(&researchers).Error; err != nil {
		return nil, fmt.Errorf("loading researchers: %w", err)
	}

	run := &models.EnrichmentRun{StartedAt: time.Now()}
	if err := s.DB.Create(run).Error; err != nil {
		return nil, fmt.Errorf("recording enrichment run: %w", err)
	}

	result := &RunResult{Failures: map[string]string{}}
	for i, r := range researchers {
		if i > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.Config.ResearcherDelay()):
			}
		}
		created, err := s.RunForResearcher(ctx, &r)
		result.PublicationsCreated += created
		if err != nil {
			result.ResearchersFailed++
			result.Failures[r.FullName()] = err.Error()
			s.Logger.Error("Enrichment failed for researcher",
				zap.String("researcher", r.FullName()),
				zap.Error(err))
			continue
		}
		result.ResearchersProcessed++
	}

	s.finishRun(run, result)
	s.Logger.Info("Enrichment run finished",
		zap.Int("processed", result.ResearchersProcessed),
		zap.Int("failed", result.ResearchersFailed),
		zap.Int("created", result.PublicationsCreated))
	return result, nil
}

func (s *EnrichmentService) finishRun(run *models.EnrichmentRun, result *RunResult) {
	now := time.Now()
	run.FinishedAt = &now
	run.ResearchersProcessed = result.ResearchersProcessed
	run.ResearchersFailed = result.ResearchersFailed
	run.PublicationsCreated = result.PublicationsCreated
	if details, err := json.Marshal(result); err == nil {
		run.Details = datatypes.JSON(details)
	}
	if err := s.DB.Save(run).Error; err != nil {
		s.Logger.Error("Could not persist enrichment run", zap.Error(err))
	}
}

// RunForResearcher harvests and enriches a single researcher. Publications
// processed before an error are already committed and survive the failure.
// The count of newly created publications is returned either way.
func (s *EnrichmentService) RunForResearcher(ctx context.Context, r *models.Researcher) (int, error) {
	if r.DBLPURL == "" {
		url, err := s.DBLP.LookupAuthorURL(ctx, r.FullName())
		if err != nil {
			return 0, fmt.Errorf("looking up DBLP profile: %w", err)
		}
		if url == "" {
			return 0, fmt.Errorf("no DBLP profile found for %q", r.FullName())
		}
		r.DBLPURL = url
		if err := s.DB.Model(r).Update("dblp_url", url).Error; err != nil {
			return 0, fmt.Errorf("saving DBLP profile URL: %w", err)
		}
	}

	harvest, err := s.DBLP.FetchPublications(ctx, r.DBLPURL)
	if err != nil {
		return 0, fmt.Errorf("harvesting DBLP records: %w", err)
	}

	created := 0
	for _, entry := range harvest.Entries {
		if !models.ValidPublicationYear(entry.Year) {
			s.Logger.Warn("Skipping entry with invalid year",
				zap.String("title", entry.Title),
				zap.Int("year", entry.Year))
			continue
		}
		if entry.Title == "" {
			s.Logger.Warn("Skipping entry without title",
				zap.String("key", entry.Key))
			continue
		}
		isNew, err := s.processEntry(ctx, r, harvest, entry)
		if err != nil {
			return created, fmt.Errorf("processing %q: %w", entry.Title, err)
		}
		if isNew {
			created++
		}
	}
	return created, nil
}

// processEntry enriches one harvested record and commits it in its own
// transaction, so earlier entries of the same researcher stay persisted
// when a later one fails.
func (s *EnrichmentService) processEntry(ctx context.Context, r *models.Researcher, harvest *dblp.Harvest, entry dblp.Entry) (bool, error) {
	meta := s.OpenAlex.FetchWork(ctx, entry.DOI, entry.Title)

	isNew := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		switch entry.Kind {
		case dblp.KindJournalArticle:
			isNew, err = s.persistJournalEntry(ctx, tx, r, harvest, entry, meta)
		case dblp.KindConferencePaper:
			isNew, err = s.persistConferenceEntry(ctx, tx, r, harvest, entry, meta)
		default:
			err = fmt.Errorf("unsupported entry kind %q", entry.Kind)
		}
		return err
	})
	return isNew, err
}

func (s *EnrichmentService) persistJournalEntry(ctx context.Context, tx *gorm.DB, r *models.Researcher, harvest *dblp.Harvest, entry dblp.Entry, meta openalex.WorkMetadata) (bool, error) {
	venueName := meta.VenueName
	if venueName == "" {
		venueName = entry.Venue
	}

	ident := s.resolveJournalIdentity(ctx, venueName, meta.VenueISSN)

	match := s.Catalog.Scimago(entry.Year, venueName, ident.ISSN, meta.VenueISSN)
	if match != nil {
		if ident.ISSN == "" {
			ident.ISSN = match.ISSN
		}
		if ident.EISSN == "" {
			ident.EISSN = match.EISSN
		}
	}

	journal, err := s.ensureJournal(tx, ident)
	if err != nil {
		return false, err
	}

	if journal != nil {
		var scimagoRank *string
		if match != nil {
			if models.ValidScimagoRank(match.Quartile) {
				q := match.Quartile
				scimagoRank = &q
			} else {
				s.Logger.Warn("Ignoring invalid Scimago quartile",
					zap.String("journal", journal.Name),
					zap.String("quartile", match.Quartile))
			}
		}
		var dgrsdtRank *string
		if rank := s.Catalog.DGRSDT(entry.Year, journal.Name, ident.ISSN); rank != "" {
			if models.ValidDGRSDTRank(rank) {
				dgrsdtRank = &rank
			} else {
				s.Logger.Warn("Ignoring invalid DGRSDT category",
					zap.String("journal", journal.Name),
					zap.String("category", rank))
			}
		}
		if err := s.ensureJournalRanking(tx, journal.ID, entry.Year, scimagoRank, dgrsdtRank, ident.ScopusIndexed); err != nil {
			return false, err
		}
	}

	pub, isNew, err := s.ensureJournalPublication(tx, entry, meta, journal)
	if err != nil {
		return false, err
	}
	position := meta.AuthorPosition(harvest.ResearcherName)
	if err := s.ensureJournalAuthorship(tx, r.ID, pub.ID, position); err != nil {
		return false, err
	}
	return isNew, nil
}

func (s *EnrichmentService) persistConferenceEntry(ctx context.Context, tx *gorm.DB, r *models.Researcher, harvest *dblp.Harvest, entry dblp.Entry, meta openalex.WorkMetadata) (bool, error) {
	venueName := meta.VenueName
	if venueName == "" {
		// DBLP booktitles are usually abbreviations; try to expand them.
		if full := s.DBLP.LookupVenue(ctx, entry.Venue); full != "" {
			venueName = full
		} else {
			venueName = entry.Venue
		}
	}
	name, acronym := normalize.SplitAcronym(venueName)
	if acronym == "" && entry.Venue != "" && entry.Venue != venueName {
		acronym = entry.Venue
	}

	conference, err := s.ensureConference(tx, name, acronym)
	if err != nil {
		return false, err
	}

	if conference != nil {
		var coreRank *string
		if rank := s.Catalog.Core(entry.Year, conference.Name, conference.Acronym); rank != "" {
			if models.ValidCoreRank(rank) {
				coreRank = &rank
			} else {
				s.Logger.Warn("Ignoring invalid CORE rank",
					zap.String("conference", conference.Name),
					zap.String("rank", rank))
			}
		}
		var scimagoRank *string
		if match := s.Catalog.Scimago(entry.Year, conference.Name, "", ""); match != nil && models.ValidScimagoRank(match.Quartile) {
			q := match.Quartile
			scimagoRank = &q
		}
		if err := s.ensureConferenceRanking(tx, conference.ID, entry.Year, coreRank, scimagoRank, nil); err != nil {
			return false, err
		}
	}

	pub, isNew, err := s.ensureConferencePublication(tx, entry, meta, conference)
	if err != nil {
		return false, err
	}
	position := meta.AuthorPosition(harvest.ResearcherName)
	if err := s.ensureConferenceAuthorship(tx, r.ID, pub.ID, position); err != nil {
		return false, err
	}
	return isNew, nil
}
