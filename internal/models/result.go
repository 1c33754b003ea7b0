package models

type ScreeningRequest struct {
	JobPostingID string `validate:"required,max=128"`
}

type ScreeningResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type RunResponse struct {
	ID           string           `json:"id"`
	JobPostingID string           `json:"job_posting_id"`
	Status       string           `json:"status"`
	Result       *ScreeningResult `json:"result,omitempty"`
	Message      *string          `json:"message,omitempty"`
	ErrorMessage *string          `json:"error_message,omitempty"`
}

type ChunkMatch struct {
	ResumeName string  `json:"resume_name"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
}
