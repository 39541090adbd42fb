package openalex

// sourcesResponse is the envelope of the /sources search endpoint.
type sourcesResponse struct {
	Results []Source `json:"results"`
}

// Source represents a venue (journal or conference series) in OpenAlex.
type Source struct {
	ID                string   `json:"id"`
	DisplayName       string   `json:"display_name"`
	ISSNL             string   `json:"issn_l"`
	ISSN              []string `json:"issn"`
	IsIndexedInScopus *bool    `json:"is_indexed_in_scopus"`
}

// worksResponse is the envelope of the /works search endpoint.
type worksResponse struct {
	Results []Work `json:"results"`
}

// Work is the subset of an OpenAlex work record the pipeline consumes.
type Work struct {
	ID string `json:"id"`
	// The abstract is delivered as a word -> positions inverted index.
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	CitedByCount          *int             `json:"cited_by_count"`
	OpenAccess            OpenAccess       `json:"open_access"`
	PrimaryLocation       struct {
		Source *Source `json:"source"`
	} `json:"primary_location"`
	Authorships []Authorship `json:"authorships"`
}

// OpenAccess carries the tri-state open-access flags. IsOA nil means the
// catalog does not know.
type OpenAccess struct {
	IsOA     *bool  `json:"is_oa"`
	OAStatus string `json:"oa_status"`
	OAURL    string `json:"oa_url"`
}

// Authorship is one author entry of a work, with its position marker
// ("first", "middle" or "last").
type Authorship struct {
	AuthorPosition string `json:"author_position"`
	Author         struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}
