package dblp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pubtrack/config"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		DBLPBaseURL:           baseURL,
		ContactEmail:          "lab@example.org",
		ClientTool:            "pubtrack-enricher",
		RequestTimeoutSeconds: 5,
		RetryMax:              3,
		RetryWaitSeconds:      0,
	}
}

const personXML = `<?xml version="1.0"?>
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
      <ee>https://example.org/preprint.pdf</ee>
    </inproceedings>
  </r>
  <r>
    <inproceedings key="conf/old/Benali19">
      <title>Linkless Paper.</title>
      <year>2019</year>
      <booktitle>OLD</booktitle>
    </inproceedings>
  </r>
  <r>
    <incollection key="books/x/Benali20">
      <title>Skipped Chapter.</title>
      <year>2020</year>
    </incollection>
  </r>
</dblpperson>`

func TestPersonID(t *testing.T) {
	pid, err := PersonID("https://dblp.org/pid/96/1461.html")
	require.NoError(t, err)
	assert.Equal(t, "96/1461", pid)

	pid, err = PersonID("https://dblp.org/pid/96/1461")
	require.NoError(t, err)
	assert.Equal(t, "96/1461", pid)

	_, err = PersonID("https://dblp.org/rec/something")
	assert.Error(t, err)
}

func TestFetchPublications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pid/96/1461.xml", r.URL.Path)
		fmt.Fprint(w, personXML)
	}))
	defer srv.Close()

	f := NewFetcher(testConfig(srv.URL), zap.NewNop())
	harvest, err := f.FetchPublications(context.Background(), "https://dblp.org/pid/96/1461.html")
	require.NoError(t, err)

	assert.Equal(t, "Amel Benali", harvest.ResearcherName)
	// The incollection element is not harvested.
	require.Len(t, harvest.Entries, 3)

	article := harvest.Entries[0]
	assert.Equal(t, KindJournalArticle, article.Kind)
	assert.Equal(t, "Scheduling Under Pressure.", article.Title)
	assert.Equal(t, 2023, article.Year)
	assert.Equal(t, "IEEE Trans. Computers", article.Venue)
	assert.Equal(t, "10.1109/TC.2023.1234", article.DOI)
	assert.Equal(t, "https://doi.org/10.1109/TC.2023.1234", article.URL)

	paper := harvest.Entries[1]
	assert.Equal(t, KindConferencePaper, paper.Kind)
	assert.Equal(t, "ICSE", paper.Venue)
	assert.Equal(t, "", paper.DOI)
	assert.Equal(t, "https://example.org/preprint.pdf", paper.URL)

	// No external link at all falls back to the DBLP permalink.
	linkless := harvest.Entries[2]
	assert.Equal(t, "", linkless.DOI)
	assert.Equal(t, "https://dblp.org/rec/conf/old/Benali19.html", linkless.URL)
}

func TestFetchPublicationsPropagatesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(testConfig(srv.URL), zap.NewNop())
	_, err := f.FetchPublications(context.Background(), "https://dblp.org/pid/00/000.html")
	assert.Error(t, err)
}

func TestLookupVenue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/venue/api", r.URL.Path)
		require.Equal(t, "ICSE", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"result": {"hits": {"@total": "1", "hit": [
			{"info": {"venue": "International Conference on Software Engineering (ICSE)"}}
		]}}}`)
	}))
	defer srv.Close()

	f := NewFetcher(testConfig(srv.URL), zap.NewNop())
	venue := f.LookupVenue(context.Background(), "ICSE")
	assert.Equal(t, "International Conference on Software Engineering (ICSE)", venue)
}

func TestLookupVenueSoftFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result": {"hits": {"@total": "0"}}}`)
	}))
	defer srv.Close()

	f := NewFetcher(testConfig(srv.URL), zap.NewNop())
	assert.Equal(t, "", f.LookupVenue(context.Background(), "No Such Venue"))

	srv.Close()
	assert.Equal(t, "", f.LookupVenue(context.Background(), "Server Gone"))
}

func TestLookupAuthorURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/author/api", r.URL.Path)
		fmt.Fprint(w, `{"result": {"hits": {"hit": [
			{"info": {"url": "https://dblp.org/pid/96/1461"}}
		]}}}`)
	}))
	defer srv.Close()

	f := NewFetcher(testConfig(srv.URL), zap.NewNop())
	url, err := f.LookupAuthorURL(context.Background(), "Amel Benali")
	require.NoError(t, err)
	assert.Equal(t, "https://dblp.org/pid/96/1461", url)
}

func TestLookupAuthorURLNoHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result": {"hits": {}}}`)
	}))
	defer srv.Close()

	f := NewFetcher(testConfig(srv.URL), zap.NewNop())
	url, err := f.LookupAuthorURL(context.Background(), "Ghost Writer")
	require.NoError(t, err)
	assert.Equal(t, "", url)
}
