package types

type QueryRequest struct {
	Question  string         `json:"question"`
	SessionID string         `json:"session_id"`
	K         int            `json:"k,omitempty"`
	Filter    MetadataFilter `json:"filter,omitempty"`
}

type FeedbackRequest struct {
	Query    string `json:"query"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"`
}

type SearchRequest struct {
	Query  string         `json:"query"`
	K      int            `json:"k,omitempty"`
	Filter MetadataFilter `json:"filter,omitempty"`
}
