package dblp

import "encoding/xml"

// personRecord mirrors the XML document served at dblp.org/pid/<pid>.xml.
type personRecord struct {
	XMLName xml.Name    `xml:"dblpperson"`
	Name    string      `xml:"name,attr"`
	Records []recordRow `xml:"r"`
}

// recordRow wraps one <r> element. DBLP nests exactly one publication
// element inside; only articles and inproceedings are harvested.
type recordRow struct {
	Article       *rawEntry `xml:"article"`
	Inproceedings *rawEntry `xml:"inproceedings"`
}

// rawEntry is a publication element as DBLP serializes it.
type rawEntry struct {
	Key       string   `xml:"key,attr"`
	Title     string   `xml:"title"`
	Year      string   `xml:"year"`
	Journal   string   `xml:"journal"`
	Booktitle string   `xml:"booktitle"`
	EE        []string `xml:"ee"`
}

// venueSearchResponse mirrors the JSON of dblp.org/search/venue/api.
type venueSearchResponse struct {
	Result struct {
		Hits struct {
			Total string `json:"@total"`
			Hit   []struct {
				Info struct {
					Venue string `json:"venue"`
				} `json:"info"`
			} `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

// authorSearchResponse mirrors the JSON of dblp.org/search/author/api.
type authorSearchResponse struct {
	Result struct {
		Hits struct {
			Hit []struct {
				Info struct {
					URL string `json:"url"`
				} `json:"info"`
			} `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

// Kind classifies a harvested entry.
type Kind string

const (
	KindJournalArticle  Kind = "article"
	KindConferencePaper Kind = "inproceedings"
)

// Entry is one harvested publication, reduced to the fields the
// reconciliation pipeline consumes.
type Entry struct {
	Kind  Kind
	Key   string
	Title string
	Year  int

	// DOI is set when an external link pointed at the DOI resolver;
	// URL always carries a usable link (DOI link, first external link,
	// or a constructed DBLP permalink).
	DOI string
	URL string

	// Venue is the journal or booktitle string as DBLP abbreviates it.
	Venue string
}

// Harvest is the result of fetching one researcher's record.
type Harvest struct {
	// ResearcherName is the display name DBLP declares for the profile;
	// it anchors the author-position scan against OpenAlex authorships.
	ResearcherName string
	Entries        []Entry
}
