package wikipedia

type searchResponse struct {
	Query struct {
		Search []searchHit `json:"search"`
	} `json:"query"`
}

type searchHit struct {
	Title  string `json:"title"`
	PageID int    `json:"pageid"`
}

type pageSummary struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Page is one resolved article summary.
type Page struct {
	Title   string
	Summary string
}
