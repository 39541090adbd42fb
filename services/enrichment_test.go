package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"pubtrack/config"
	"pubtrack/models"
	"pubtrack/providers/dblp"
	"pubtrack/providers/openalex"
	"pubtrack/rankings"
)

const pipelinePersonXML = `<?xml version="1.0"?>
<dblpperson name="Amel Benali" pid="96/1461">
  <r>
    <article key="journals/tc/Benali23">
      <title>Scheduling Under Pressure.</title>
      <year>2023</year>
      <journal>IEEE Trans. Computers</journal>
      <ee>https://doi.org/10.1109/TC.2023.1234</ee>
    </article>
  </r>
  <r>
    <inproceedings key="conf/icse/Benali21">
      <title>Testing the Untestable.</title>
      <year>2021</year>
      <booktitle>ICSE</booktitle>
    </inproceedings>
  </r>
  <r>
    <article key="journals/old/Benali00">
      <title>Ancient Paper.</title>
      <year>1900</year>
      <journal>Forgotten Journal</journal>
    </article>
  </r>
</dblpperson>`

const pipelineWorkJSON = `{
	"id": "https://openalex.org/W1",
	"abstract_inverted_index": {"Deep": [0], "results": [1]},
	"cited_by_count": 42,
	"open_access": {"is_oa": true, "oa_status": "gold", "oa_url": "https://example.org/paper.pdf"},
	"primary_location": {"source": {"display_name": "IEEE Transactions on Computers", "issn_l": "0018-9340"}},
	"authorships": [
		{"author_position": "first", "author": {"display_name": "Amel Benali"}},
		{"author_position": "last", "author": {"display_name": "Karim Ziani"}}
	]
}`

func newDBLPServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/pid/96/1461.xml":
			fmt.Fprint(w, pipelinePersonXML)
		case r.URL.Path == "/search/venue/api":
			fmt.Fprint(w, `{"result": {"hits": {"@total": "1", "hit": [
				{"info": {"venue": "International Conference on Software Engineering (ICSE)"}}
			]}}}`)
		case r.URL.Path == "/search/author/api":
			fmt.Fprint(w, `{"result": {"hits": {"hit": [
				{"info": {"url": "https://dblp.org/pid/96/1461"}}
			]}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newOpenAlexServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/works/doi:"):
			fmt.Fprint(w, pipelineWorkJSON)
		case r.URL.Path == "/works":
			fmt.Fprint(w, `{"results": []}`)
		case r.URL.Path == "/sources":
			fmt.Fprint(w, `{"results": [{
				"display_name": "IEEE Transactions on Computers",
				"issn_l": "0018-9340",
				"issn": ["0018-9340", "1557-9956"],
				"is_indexed_in_scopus": true
			}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func buildPipelineRankingsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	manifest := `{
	  "scimago": {"2023": "scimago2023.csv"},
	  "core": {"2021": "core2021.csv"},
	  "dgrsdt": {"2023": [{"category": "A", "path": "dgrsdt_a.xlsx"}]}
	}`
	scimago := "Rank;Sourceid;Title;Type;Issn;SJR;SJR Best Quartile\n" +
		"1;100;IEEE Transactions on Computers;journal;\"0018-9340, 1557-9956\";2.5;Q1\n"
	core := "1,International Conference on Software Engineering,ICSE,2021,A*\n"

	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scimago2023.csv"), []byte(scimago), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core2021.csv"), []byte(core), 0o644))

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]string{
		{"Journal", "ISSN"},
		{"IEEE Transactions on Computers", "0018-9340"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(filepath.Join(dir, "dgrsdt_a.xlsx")))
	return dir
}

func newPipelineService(t *testing.T) *EnrichmentService {
	t.Helper()
	dblpSrv := newDBLPServer(t)
	t.Cleanup(dblpSrv.Close)
	oaSrv := newOpenAlexServer(t)
	t.Cleanup(oaSrv.Close)

	cfg := &config.Config{
		OpenAlexBaseURL:       oaSrv.URL,
		DBLPBaseURL:           dblpSrv.URL,
		ContactEmail:          "lab@example.org",
		ClientTool:            "pubtrack-enricher",
		RequestTimeoutSeconds: 5,
		RetryMax:              3,
		RetryWaitSeconds:      0,
	}
	logger := zap.NewNop()

	catalog, err := rankings.OpenCatalog(buildPipelineRankingsDir(t), logger)
	require.NoError(t, err)

	return NewEnrichmentService(cfg, newTestDB(t), logger,
		openalex.NewFetcher(cfg, logger), dblp.NewFetcher(cfg, logger), catalog)
}

func TestRunForResearcher(t *testing.T) {
	s := newPipelineService(t)

	r := models.Researcher{
		LastName: "Benali", FirstName: "Amel",
		Email: "amel@example.org", Grade: models.GradeProfessor,
		DBLPURL: "https://dblp.org/pid/96/1461.html",
	}
	require.NoError(t, s.DB.Create(&r).Error)

	created, err := s.RunForResearcher(context.Background(), &r)
	require.NoError(t, err)
	// The 1900 entry is skipped; the article and the paper are created.
	assert.Equal(t, 2, created)

	var journal models.Journal
	require.NoError(t, s.DB.First(&journal).Error)
	assert.Equal(t, "IEEE Transactions on Computers", journal.Name)
	require.NotNil(t, journal.ISSN)
	assert.Equal(t, "00189340", *journal.ISSN)

	var jRanking models.JournalRanking
	require.NoError(t, s.DB.Where("journal_id = ? AND year = ?", journal.ID, 2023).First(&jRanking).Error)
	require.NotNil(t, jRanking.ScimagoRank)
	assert.Equal(t, "Q1", *jRanking.ScimagoRank)
	require.NotNil(t, jRanking.DGRSDTRank)
	assert.Equal(t, "A", *jRanking.DGRSDTRank)
	require.NotNil(t, jRanking.ScopusIndexed)
	assert.True(t, *jRanking.ScopusIndexed)

	var pub models.JournalPublication
	require.NoError(t, s.DB.Where("year = ?", 2023).First(&pub).Error)
	assert.Equal(t, "Scheduling Under Pressure.", pub.Title)
	require.NotNil(t, pub.DOI)
	assert.Equal(t, "10.1109/tc.2023.1234", *pub.DOI)
	assert.Equal(t, "Deep results", pub.Abstract)
	require.NotNil(t, pub.Citations)
	assert.Equal(t, 42, *pub.Citations)
	require.NotNil(t, pub.OpenAccess)
	assert.True(t, *pub.OpenAccess)
	assert.Equal(t, "https://example.org/paper.pdf", pub.URL)
	require.NotNil(t, pub.JournalID)
	assert.Equal(t, journal.ID, *pub.JournalID)

	var link models.JournalAuthorship
	require.NoError(t, s.DB.Where("researcher_id = ? AND publication_id = ?", r.ID, pub.ID).First(&link).Error)
	require.NotNil(t, link.Position)
	assert.Equal(t, "first", *link.Position)

	// The abbreviated booktitle was expanded through the venue search.
	var conf models.Conference
	require.NoError(t, s.DB.First(&conf).Error)
	assert.Equal(t, "INTERNATIONAL CONFERENCE ON SOFTWARE ENGINEERING", conf.Name)
	assert.Equal(t, "ICSE", conf.Acronym)

	var cRanking models.ConferenceRanking
	require.NoError(t, s.DB.Where("conference_id = ? AND year = ?", conf.ID, 2021).First(&cRanking).Error)
	require.NotNil(t, cRanking.CoreRank)
	assert.Equal(t, "A*", *cRanking.CoreRank)

	var cPub models.ConferencePublication
	require.NoError(t, s.DB.First(&cPub).Error)
	assert.Equal(t, "Testing the Untestable.", cPub.Title)
	// No metadata was found for the paper; unknowns stay nil.
	assert.Nil(t, cPub.OpenAccess)
	assert.Nil(t, cPub.Citations)

	var cLink models.ConferenceAuthorship
	require.NoError(t, s.DB.Where("researcher_id = ?", r.ID).First(&cLink).Error)
	assert.Nil(t, cLink.Position)
}

func TestRunForResearcherIsIdempotent(t *testing.T) {
	s := newPipelineService(t)

	r := models.Researcher{
		LastName: "Benali", FirstName: "Amel",
		Email: "amel@example.org", Grade: models.GradeProfessor,
		DBLPURL: "https://dblp.org/pid/96/1461.html",
	}
	require.NoError(t, s.DB.Create(&r).Error)

	created, err := s.RunForResearcher(context.Background(), &r)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = s.RunForResearcher(context.Background(), &r)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	var journals, jPubs, cPubs, jLinks int64
	s.DB.Model(&models.Journal{}).Count(&journals)
	s.DB.Model(&models.JournalPublication{}).Count(&jPubs)
	s.DB.Model(&models.ConferencePublication{}).Count(&cPubs)
	s.DB.Model(&models.JournalAuthorship{}).Count(&jLinks)
	assert.Equal(t, int64(1), journals)
	assert.Equal(t, int64(1), jPubs)
	assert.Equal(t, int64(1), cPubs)
	assert.Equal(t, int64(1), jLinks)
}

func TestRunForResearcherFillsMissingProfileURL(t *testing.T) {
	s := newPipelineService(t)

	r := models.Researcher{
		LastName: "Benali", FirstName: "Amel",
		Email: "amel@example.org", Grade: models.GradeProfessor,
	}
	require.NoError(t, s.DB.Create(&r).Error)

	_, err := s.RunForResearcher(context.Background(), &r)
	require.NoError(t, err)

	var saved models.Researcher
	require.NoError(t, s.DB.First(&saved, r.ID).Error)
	assert.Equal(t, "https://dblp.org/pid/96/1461", saved.DBLPURL)
}

func TestRunForAllResearchersIsolatesFailures(t *testing.T) {
	s := newPipelineService(t)

	good := models.Researcher{
		LastName: "Benali", FirstName: "Amel",
		Email: "amel@example.org", Grade: models.GradeProfessor,
		DBLPURL: "https://dblp.org/pid/96/1461.html",
	}
	bad := models.Researcher{
		LastName: "Ghost", FirstName: "Writer",
		Email: "ghost@example.org", Grade: models.GradeDoctorant,
		DBLPURL: "https://dblp.org/pid/00/404.html",
	}
	require.NoError(t, s.DB.Create(&good).Error)
	require.NoError(t, s.DB.Create(&bad).Error)

	result, err := s.RunForAllResearchers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.ResearchersProcessed)
	assert.Equal(t, 1, result.ResearchersFailed)
	assert.Equal(t, 2, result.PublicationsCreated)
	assert.Contains(t, result.Failures, "Writer Ghost")

	var run models.EnrichmentRun
	require.NoError(t, s.DB.First(&run).Error)
	assert.NotNil(t, run.FinishedAt)
	assert.Equal(t, 1, run.ResearchersProcessed)
	assert.Equal(t, 1, run.ResearchersFailed)
	assert.Equal(t, 2, run.PublicationsCreated)
	assert.NotEmpty(t, run.Details)
}
