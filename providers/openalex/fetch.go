package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pubtrack/config"
	"pubtrack/normalize"
)

// userAgentTransport adds the descriptive User-Agent to every request.
type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(req)
}

// Fetcher wraps the OpenAlex catalog: venue ISSN resolution and work
// metadata lookup. Lookup failures degrade to empty results, they are never
// fatal for the caller.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger

	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a new OpenAlex fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config: cfg,
		Logger: logger,
		client: &http.Client{
			Timeout: cfg.RequestTimeout(),
			Transport: &userAgentTransport{
				agent: cfg.UserAgent(),
				base:  http.DefaultTransport,
			},
		},
		// OpenAlex allows 10 req/s; stay well below it.
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
}

// get performs one GET with rate limiting and bounded 429 retries. After the
// retry ceiling the last response error is returned and the caller treats
// the lookup as "no result".
func (f *Fetcher) get(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < f.Config.RetryMax; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			wait := f.Config.RetryWait()
			if s := resp.Header.Get("Retry-After"); s != "" {
				if secs, err := strconv.Atoi(s); err == nil {
					wait = time.Duration(secs) * time.Second
				}
			}
			resp.Body.Close()
			f.Logger.Warn("OpenAlex rate limited, backing off.",
				zap.Duration("wait", wait), zap.Int("attempt", attempt+1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			lastErr = fmt.Errorf("openalex rate limited")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("openalex returned status %d", resp.StatusCode)
		}
		return resp, nil
	}
	return nil, fmt.Errorf("openalex request abandoned after %d attempts: %w", f.Config.RetryMax, lastErr)
}

// ResolveISSN looks a venue up by display name and returns its ISSN, eISSN
// and Scopus-indexed flag. When the full name finds nothing and a fallback
// (shortened) name is available, it is tried once. All failures degrade to
// zero values; nil scopus flag means unknown.
func (f *Fetcher) ResolveISSN(ctx context.Context, name, fallbackName string) (issn, eissn string, scopusIndexed *bool) {
	candidates := []string{name}
	if fallbackName != "" && fallbackName != name {
		candidates = append(candidates, fallbackName)
	}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		src, err := f.searchSource(ctx, candidate)
		if err != nil {
			f.Logger.Warn("OpenAlex source lookup failed.",
				zap.String("venue", candidate), zap.Error(err))
			return "", "", nil
		}
		if src == nil {
			continue
		}
		issn, eissn = sourceISSNs(src)
		return issn, eissn, src.IsIndexedInScopus
	}

	f.Logger.Info("No ISSN found on OpenAlex.", zap.String("venue", name))
	return "", "", nil
}

func (f *Fetcher) searchSource(ctx context.Context, name string) (*Source, error) {
	params := url.Values{}
	params.Set("filter", "display_name.search:"+name)
	params.Set("per-page", "1")
	reqURL := fmt.Sprintf("%s/sources?%s", f.Config.OpenAlexBaseURL, params.Encode())

	resp, err := f.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var sr sourcesResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, err
	}
	if len(sr.Results) == 0 {
		return nil, nil
	}
	return &sr.Results[0], nil
}

// sourceISSNs picks the ISSN/eISSN pair from a source record, preferring
// the issn list and falling back to the linking ISSN.
func sourceISSNs(src *Source) (string, string) {
	switch {
	case len(src.ISSN) > 1:
		return src.ISSN[0], src.ISSN[1]
	case len(src.ISSN) == 1:
		return src.ISSN[0], ""
	default:
		return src.ISSNL, ""
	}
}

// WorkMetadata is the enrichment payload extracted from an OpenAlex work.
// The zero value means "no enrichment available".
type WorkMetadata struct {
	Abstract   string
	Citations  *int
	OpenAccess *bool
	OAStatus   string
	OAURL      string

	VenueName string
	VenueISSN string

	Authorships []Authorship
}

// Empty reports whether the fetch produced no usable metadata.
func (m WorkMetadata) Empty() bool {
	return m.Abstract == "" && m.Citations == nil && m.OpenAccess == nil &&
		m.VenueName == "" && len(m.Authorships) == 0
}

// AuthorPosition returns the position marker of the author whose display
// name equals the given name, or nil when no author matches. First exact
// match wins.
func (m WorkMetadata) AuthorPosition(displayName string) *string {
	if displayName == "" {
		return nil
	}
	for _, a := range m.Authorships {
		if a.Author.DisplayName == displayName {
			if a.AuthorPosition == "" {
				return nil
			}
			pos := a.AuthorPosition
			return &pos
		}
	}
	return nil
}

// FetchWork fetches work metadata by DOI, or by title search when no DOI is
// known. Any failure is logged with the identifying context and surfaced as
// an empty WorkMetadata, never as an error.
func (f *Fetcher) FetchWork(ctx context.Context, doi, title string) WorkMetadata {
	work, err := f.fetchWorkRecord(ctx, doi, title)
	if err != nil {
		f.Logger.Warn("OpenAlex work lookup failed, continuing without enrichment.",
			zap.String("doi", doi), zap.String("title", title), zap.Error(err))
		return WorkMetadata{}
	}
	if work == nil {
		f.Logger.Debug("No OpenAlex work found.",
			zap.String("doi", doi), zap.String("title", title))
		return WorkMetadata{}
	}

	meta := WorkMetadata{
		Abstract:    ReconstructAbstract(work.AbstractInvertedIndex),
		Citations:   work.CitedByCount,
		OpenAccess:  work.OpenAccess.IsOA,
		OAStatus:    work.OpenAccess.OAStatus,
		OAURL:       work.OpenAccess.OAURL,
		Authorships: work.Authorships,
	}
	if src := work.PrimaryLocation.Source; src != nil {
		meta.VenueName = src.DisplayName
		if src.ISSNL != "" {
			meta.VenueISSN = src.ISSNL
		} else if len(src.ISSN) > 0 {
			meta.VenueISSN = src.ISSN[0]
		}
	}
	return meta
}

func (f *Fetcher) fetchWorkRecord(ctx context.Context, doi, title string) (*Work, error) {
	if doi != "" {
		return f.fetchWorkByDOI(ctx, doi)
	}
	if title != "" {
		return f.searchWorkByTitle(ctx, title)
	}
	return nil, nil
}

func (f *Fetcher) fetchWorkByDOI(ctx context.Context, doi string) (*Work, error) {
	reqURL := fmt.Sprintf("%s/works/doi:%s", f.Config.OpenAlexBaseURL, normalize.DOI(doi))
	resp, err := f.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var work Work
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return nil, err
	}
	return &work, nil
}

// searchWorkByTitle searches for the title, then re-fetches the first hit's
// full record (the search projection omits the abstract index).
func (f *Fetcher) searchWorkByTitle(ctx context.Context, title string) (*Work, error) {
	params := url.Values{}
	params.Set("search", title)
	params.Set("per-page", "1")
	reqURL := fmt.Sprintf("%s/works?%s", f.Config.OpenAlexBaseURL, params.Encode())

	resp, err := f.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var wr worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, err
	}
	if len(wr.Results) == 0 {
		return nil, nil
	}

	workURL := strings.Replace(wr.Results[0].ID, "https://openalex.org/", f.Config.OpenAlexBaseURL+"/", 1)
	resp2, err := f.get(ctx, workURL)
	if err != nil {
		return nil, err
	}
	defer resp2.Body.Close()

	var work Work
	if err := json.NewDecoder(resp2.Body).Decode(&work); err != nil {
		return nil, err
	}
	return &work, nil
}

// ReconstructAbstract rebuilds the plain-text abstract from the inverted
// index: every word is placed at each of its positions, then the slots are
// joined with single spaces in position order.
func ReconstructAbstract(inverted map[string][]int) string {
	if len(inverted) == 0 {
		return ""
	}
	max := 0
	for _, positions := range inverted {
		for _, p := range positions {
			if p > max {
				max = p
			}
		}
	}
	slots := make([]string, max+1)
	for word, positions := range inverted {
		for _, p := range positions {
			if p >= 0 && p < len(slots) {
				slots[p] = word
			}
		}
	}
	// Drop unfilled slots so sparse indexes do not produce double spaces.
	words := make([]string, 0, len(slots))
	for _, w := range slots {
		if w != "" {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}
