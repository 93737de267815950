package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Tag        string `json:"tag,omitempty"`
	Message    string `json:"message"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}
