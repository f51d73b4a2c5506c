package extract_type

type ExtractRequest struct {
	URL string `json:"url"`
}

type BatchRequest struct {
	URLs    []string `json:"urls"`
	Combine bool     `json:"combine"`
}

type BatchResponse struct {
	Results  []ExtractedContent `json:"results"`
	Combined string             `json:"combined,omitempty"`
}

type CombineRequest struct {
	Contents []ExtractedContent `json:"contents"`
}

type CombineResponse struct {
	Combined string `json:"combined"`
}

type JobResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// StoredExtraction is an ExtractedContent persisted with the locator it came from.
type StoredExtraction struct {
	ID        string           `json:"id"`
	Locator   string           `json:"locator"`
	Content   ExtractedContent `json:"content"`
	CreatedAt string           `json:"created_at"`
}
