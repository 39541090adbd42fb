package dblp

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pubtrack/config"
)

type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(req)
}

// Fetcher wraps the DBLP catalog: person-record harvesting plus venue and
// author search. Unlike the OpenAlex fetcher, harvest failures propagate:
// without the publication list there is nothing to enrich for that
// researcher.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger

	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a new DBLP fetcher.
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
		// DBLP asks crawlers to keep roughly one request per second.
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
}

// get performs one GET with rate limiting and bounded 429 retries.
func (f *Fetcher) get(ctx context.Context, reqURL string) ([]byte, error) {
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
			f.Logger.Warn("DBLP rate limited, backing off.",
				zap.Duration("wait", wait), zap.Int("attempt", attempt+1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			lastErr = fmt.Errorf("dblp rate limited")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("dblp returned status %d", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("dblp request abandoned after %d attempts: %w", f.Config.RetryMax, lastErr)
}

// PersonID derives the DBLP person identifier from a profile URL, e.g.
// "https://dblp.org/pid/96/1461.html" -> "96/1461".
func PersonID(profileURL string) (string, error) {
	_, pid, found := strings.Cut(profileURL, "pid/")
	if !found || pid == "" {
		return "", fmt.Errorf("not a dblp profile url: %q", profileURL)
	}
	return strings.TrimSuffix(pid, ".html"), nil
}

// FetchPublications fetches a researcher's full publication record and
// classifies every entry as journal article or conference paper. Errors
// propagate: a failed harvest aborts that researcher, not the batch.
func (f *Fetcher) FetchPublications(ctx context.Context, profileURL string) (*Harvest, error) {
	pid, err := PersonID(profileURL)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/pid/%s.xml", f.Config.DBLPBaseURL, pid)
	body, err := f.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetching dblp record for %s: %w", pid, err)
	}

	var person personRecord
	if err := xml.Unmarshal(body, &person); err != nil {
		return nil, fmt.Errorf("parsing dblp record for %s: %w", pid, err)
	}

	harvest := &Harvest{ResearcherName: person.Name}
	for _, row := range person.Records {
		switch {
		case row.Article != nil:
			harvest.Entries = append(harvest.Entries, f.toEntry(row.Article, KindJournalArticle))
		case row.Inproceedings != nil:
			harvest.Entries = append(harvest.Entries, f.toEntry(row.Inproceedings, KindConferencePaper))
		}
	}

	f.Logger.Info("DBLP harvest complete.",
		zap.String("pid", pid),
		zap.String("researcher", person.Name),
		zap.Int("entries", len(harvest.Entries)))
	return harvest, nil
}

// toEntry reduces a raw XML element to a pipeline entry. The first external
// link containing the DOI resolver host wins as DOI; otherwise the first
// external link becomes the URL; otherwise a DBLP permalink is built from
// the record key.
func (f *Fetcher) toEntry(raw *rawEntry, kind Kind) Entry {
	e := Entry{
		Kind:  kind,
		Key:   raw.Key,
		Title: strings.TrimSpace(raw.Title),
	}
	if y, err := strconv.Atoi(strings.TrimSpace(raw.Year)); err == nil {
		e.Year = y
	}
	if kind == KindJournalArticle {
		e.Venue = strings.TrimSpace(raw.Journal)
	} else {
		e.Venue = strings.TrimSpace(raw.Booktitle)
	}

	for _, link := range raw.EE {
		link = strings.TrimSpace(link)
		if link == "" {
			continue
		}
		if e.DOI == "" && strings.Contains(link, "doi.org") {
			_, doi, _ := strings.Cut(link, "doi.org/")
			e.DOI = doi
			e.URL = link
			break
		}
		if e.URL == "" {
			e.URL = link
		}
	}
	if e.URL == "" && raw.Key != "" {
		e.URL = fmt.Sprintf("https://dblp.org/rec/%s.html", raw.Key)
	}
	return e
}

// LookupVenue returns the canonical (full) venue name for an abbreviated
// one, e.g. "EAI Endorsed Trans. Ind. Networks Intell. Syst." -> "EAI
// Endorsed Transactions on Industrial Networks and Intelligent Systems".
// Returns "" when DBLP knows no such venue; lookup failures are soft.
func (f *Fetcher) LookupVenue(ctx context.Context, venueName string) string {
	params := url.Values{}
	params.Set("q", venueName)
	params.Set("format", "json")
	reqURL := fmt.Sprintf("%s/search/venue/api?%s", f.Config.DBLPBaseURL, params.Encode())

	body, err := f.get(ctx, reqURL)
	if err != nil {
		f.Logger.Warn("DBLP venue lookup failed.", zap.String("venue", venueName), zap.Error(err))
		return ""
	}

	var vr venueSearchResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		f.Logger.Warn("DBLP venue response unparsable.", zap.String("venue", venueName), zap.Error(err))
		return ""
	}
	if total, err := strconv.Atoi(vr.Result.Hits.Total); err == nil && total == 0 {
		return ""
	}
	if len(vr.Result.Hits.Hit) == 0 {
		return ""
	}
	return vr.Result.Hits.Hit[0].Info.Venue
}

// LookupAuthorURL searches DBLP for a researcher by name and returns the
// profile URL of the first hit, or "" when no profile matches.
func (f *Fetcher) LookupAuthorURL(ctx context.Context, fullName string) (string, error) {
	params := url.Values{}
	params.Set("q", fullName)
	params.Set("format", "json")
	reqURL := fmt.Sprintf("%s/search/author/api?%s", f.Config.DBLPBaseURL, params.Encode())

	body, err := f.get(ctx, reqURL)
	if err != nil {
		return "", fmt.Errorf("searching dblp author %q: %w", fullName, err)
	}

	var ar authorSearchResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return "", fmt.Errorf("parsing dblp author response for %q: %w", fullName, err)
	}
	if len(ar.Result.Hits.Hit) == 0 {
		return "", nil
	}
	return ar.Result.Hits.Hit[0].Info.URL, nil
}
