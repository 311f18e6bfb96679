package management

// SearchEngine represents a Doofinder search engine
type SearchEngine struct {
	HashID      string  `json:"hashid,omitempty"`
	Name        string  `json:"name"`
	Language    string  `json:"language,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	SiteURL     string  `json:"site_url,omitempty"`
	SearchURL   string  `json:"search_url,omitempty"`
	Platform    string  `json:"platform,omitempty"`
	StopWords   bool    `json:"stopwords,omitempty"`
	HasGrouping bool    `json:"has_grouping,omitempty"`
	Inactive    bool    `json:"inactive,omitempty"`
	Indices     []Index `json:"indices,omitempty"`
}

// SearchEngineUpdate holds the fields to change on a search engine. Nil
// fields are left untouched.
type SearchEngineUpdate struct {
	Name        *string `json:"name,omitempty"`
	Language    *string `json:"language,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	SiteURL     *string `json:"site_url,omitempty"`
	StopWords   *bool   `json:"stopwords,omitempty"`
	HasGrouping *bool   `json:"has_grouping,omitempty"`
	Inactive    *bool   `json:"inactive,omitempty"`
}

// Index represents an index of a search engine
type Index struct {
	Name        string         `json:"name"`
	Preset      string         `json:"preset,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
	DataSources []DataSource   `json:"datasources,omitempty"`
}

// DataSource describes where an index reads its items from
type DataSource struct {
	Type    string         `json:"type"`
	Options map[string]any `json:"options,omitempty"`
}

// ProcessOptions configures a search engine processing run
type ProcessOptions struct {
	CallbackURL string `json:"callback_url,omitempty"`
}

// ProcessStatus is the state of the last processing run
type ProcessStatus struct {
	Status       string `json:"status"`
	Result       string `json:"result,omitempty"`
	FinishedAt   string `json:"finished_at,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// TaskStatus is the state of an asynchronous index task such as a reindex
type TaskStatus struct {
	Status string `json:"status"`
}

// Item is a document stored in an index. The "id" field identifies it.
type Item map[string]any

// ID returns the item identifier, or "" when the item has none.
func (i Item) ID() string {
	id, _ := i["id"].(string)
	return id
}

// ItemPage is one page of a scroll over the items of an index
type ItemPage struct {
	ScrollID string `json:"scroll_id"`
	Total    int    `json:"total"`
	Items    []Item `json:"items"`
}

// ScrollOptions controls item scrolling
type ScrollOptions struct {
	// ScrollID continues a previous scroll; empty starts a new one.
	ScrollID string
	// RPP is the page size.
	RPP int
}

// BulkResponse is the result of a bulk item operation
type BulkResponse struct {
	Errors  bool         `json:"errors"`
	Results []BulkResult `json:"results"`
}

// BulkResult is the outcome for one item of a bulk operation
type BulkResult struct {
	ID     string `json:"id"`
	Result string `json:"result"`
	Status int    `json:"status,omitempty"`
}

// Failed returns the results that did not succeed.
func (r *BulkResponse) Failed() []BulkResult {
	var failed []BulkResult
	for _, res := range r.Results {
		if res.Status >= 400 {
			failed = append(failed, res)
		}
	}
	return failed
}
