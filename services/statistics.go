package services

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pubtrack/models"
)

// StatisticsService computes aggregate views over the publication graph.
type StatisticsService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewStatisticsService(db *gorm.DB, logger *zap.Logger) *StatisticsService {
	return &StatisticsService{DB: db, Logger: logger}
}

// RankingStats holds the rank distributions. Rows without a rank are
// counted under "Unknown".
type RankingStats struct {
	ScimagoDistribution map[string]int `json:"scimago_distribution"`
	DGRSDTDistribution  map[string]int `json:"dgrsdt_distribution"`
	CoreDistribution    map[string]int `json:"core_distribution"`
}

// OpenAccessStats splits publications by open-access status. Unknown means
// the external catalog had no open-access information for the work.
type OpenAccessStats struct {
	Open    int     `json:"open"`
	Closed  int     `json:"closed"`
	Unknown int     `json:"unknown"`
	Rate    float64 `json:"open_access_rate"`
}

type PublicationStats struct {
	TotalPublications  int             `json:"total_publications"`
	PublicationsByType map[string]int  `json:"publications_by_type"`
	OpenAccess         OpenAccessStats `json:"open_access"`
	Rankings           RankingStats    `json:"rankings"`
}

type ResearcherStats struct {
	Total      int `json:"total"`
	WithLab    int `json:"with_lab"`
	WithoutLab int `json:"without_lab"`
}

type GlobalStatistics struct {
	Overview    PublicationStats `json:"overview"`
	Researchers ResearcherStats  `json:"researchers"`
}

type LabStatistics struct {
	Overview PublicationStats `json:"overview"`
	Total    int              `json:"total"`
}

// Global computes the statistics over the whole database.
func (s *StatisticsService) Global() (*GlobalStatistics, error) {
	overview, err := s.publicationStats(nil)
	if err != nil {
		return nil, err
	}

	var total, withLab int64
	if err := s.DB.Model(&models.Researcher{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting researchers: %w", err)
	}
	if err := s.DB.Model(&models.Researcher{}).Where("lab_id IS NOT NULL").Count(&withLab).Error; err != nil {
		return nil, fmt.Errorf("counting lab members: %w", err)
	}

	return &GlobalStatistics{
		Overview: *overview,
		Researchers: ResearcherStats{
			Total:      int(total),
			WithLab:    int(withLab),
			WithoutLab: int(total - withLab),
		},
	}, nil
}

// ForLab computes the statistics restricted to publications authored by the
// lab's researchers.
func (s *StatisticsService) ForLab(labID uint) (*LabStatistics, error) {
	var lab models.Laboratory
	if err := s.DB.First(&lab, labID).Error; err != nil {
		return nil, err
	}

	overview, err := s.publicationStats(&labID)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.DB.Model(&models.Researcher{}).Where("lab_id = ?", labID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting lab members: %w", err)
	}
	return &LabStatistics{Overview: *overview, Total: int(total)}, nil
}

// publicationStats aggregates both publication families. A non-nil labID
// restricts every query to works authored by that lab's researchers.
func (s *StatisticsService) publicationStats(labID *uint) (*PublicationStats, error) {
	journalPubs := s.journalScope(labID)
	confPubs := s.conferenceScope(labID)

	var journals, conferences int64
	if err := journalPubs(s.DB).Count(&journals).Error; err != nil {
		return nil, fmt.Errorf("counting journal publications: %w", err)
	}
	if err := confPubs(s.DB).Count(&conferences).Error; err != nil {
		return nil, fmt.Errorf("counting conference publications: %w", err)
	}

	oa, err := s.openAccessStats(journalPubs, confPubs)
	if err != nil {
		return nil, err
	}

	journalJoin := "journal_rankings.journal_id = journal_publications.journal_id AND journal_rankings.year = journal_publications.year"
	confJoin := "conference_rankings.conference_id = conference_publications.conference_id AND conference_rankings.year = conference_publications.year"

	scimago, err := s.rankDistribution(journalPubs, "journal_rankings", journalJoin,
		"journal_rankings.scimago_rank", "journal_publications.id")
	if err != nil {
		return nil, err
	}
	dgrsdt, err := s.rankDistribution(journalPubs, "journal_rankings", journalJoin,
		"journal_rankings.dgrsdt_rank", "journal_publications.id")
	if err != nil {
		return nil, err
	}
	core, err := s.rankDistribution(confPubs, "conference_rankings", confJoin,
		"conference_rankings.core_rank", "conference_publications.id")
	if err != nil {
		return nil, err
	}

	return &PublicationStats{
		TotalPublications: int(journals + conferences),
		PublicationsByType: map[string]int{
			"journal":    int(journals),
			"conference": int(conferences),
		},
		OpenAccess: *oa,
		Rankings: RankingStats{
			ScimagoDistribution: scimago,
			DGRSDTDistribution:  dgrsdt,
			CoreDistribution:    core,
		},
	}, nil
}

// scope builds the base query for one publication family, optionally joined
// through the authorship table to filter by lab.
type scope func(db *gorm.DB) *gorm.DB

func (s *StatisticsService) journalScope(labID *uint) scope {
	return func(db *gorm.DB) *gorm.DB {
		q := db.Model(&models.JournalPublication{})
		if labID != nil {
			q = q.Distinct("journal_publications.id").
				Joins("JOIN journal_authorships ON journal_authorships.publication_id = journal_publications.id").
				Joins("JOIN researchers ON researchers.id = journal_authorships.researcher_id").
				Where("researchers.lab_id = ?", *labID)
		}
		return q
	}
}

func (s *StatisticsService) conferenceScope(labID *uint) scope {
	return func(db *gorm.DB) *gorm.DB {
		q := db.Model(&models.ConferencePublication{})
		if labID != nil {
			q = q.Distinct("conference_publications.id").
				Joins("JOIN conference_authorships ON conference_authorships.publication_id = conference_publications.id").
				Joins("JOIN researchers ON researchers.id = conference_authorships.researcher_id").
				Where("researchers.lab_id = ?", *labID)
		}
		return q
	}
}

func (s *StatisticsService) openAccessStats(journalPubs, confPubs scope) (*OpenAccessStats, error) {
	oa := &OpenAccessStats{}
	for _, family := range []struct {
		base scope
		col  string
	}{
		{journalPubs, "journal_publications.open_access"},
		{confPubs, "conference_publications.open_access"},
	} {
		var open, closed, unknown int64
		if err := family.base(s.DB).Where(family.col+" = ?", true).Count(&open).Error; err != nil {
			return nil, fmt.Errorf("counting open-access works: %w", err)
		}
		if err := family.base(s.DB).Where(family.col+" = ?", false).Count(&closed).Error; err != nil {
			return nil, fmt.Errorf("counting closed works: %w", err)
		}
		if err := family.base(s.DB).Where(family.col + " IS NULL").Count(&unknown).Error; err != nil {
			return nil, fmt.Errorf("counting works without access info: %w", err)
		}
		oa.Open += int(open)
		oa.Closed += int(closed)
		oa.Unknown += int(unknown)
	}
	if total := oa.Open + oa.Closed + oa.Unknown; total > 0 {
		oa.Rate = math.Round(float64(oa.Open)/float64(total)*100) / 100
	}
	return oa, nil
}

// rankDistribution groups one rank column of a ranking table, joined to the
// publication family so every count reflects actual publications. NULL ranks
// land in the "Unknown" bucket; an empty result yields {"Unknown": 0}.
func (s *StatisticsService) rankDistribution(base scope, rankingTable, joinCond, rankCol, idCol string) (map[string]int, error) {
	var rows []struct {
		Rank  *string
		Count int
	}
	err := base(s.DB).
		Joins("LEFT JOIN " + rankingTable + " ON " + joinCond).
		Select(rankCol + " AS rank, COUNT(DISTINCT " + idCol + ") AS count").
		Group(rankCol).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating %s: %w", rankCol, err)
	}

	dist := map[string]int{}
	for _, row := range rows {
		key := "Unknown"
		if row.Rank != nil && *row.Rank != "" {
			key = *row.Rank
		}
		dist[key] += row.Count
	}
	if len(dist) == 0 {
		dist["Unknown"] = 0
	}
	return dist, nil
}
