package analysis

import "time"

// StartAnalysisRequest is the payload carried by an analysis job
type StartAnalysisRequest struct {
	Source    Source `json:"source"`
	SourceURL string `json:"source_url,omitempty"`
	FilePath  string `json:"file_path"`
	FileName  string `json:"file_name"`
	FileType  string `json:"file_type"`
}

// JobStatusResponse is the API view of an analysis job
type JobStatusResponse struct {
	JobID              string     `json:"job_id"`
	Status             JobStatus  `json:"status"`
	AnalysisID         *string    `json:"analysis_id,omitempty"`
	CurrentStep        *string    `json:"current_step,omitempty"`
	ProgressPercentage int        `json:"progress_percentage"`
	Message            string     `json:"message"`
	Error              *JobError  `json:"error,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	StatusURL          string     `json:"status_url"`
}

// JobStatsResponse aggregates job counts per status
type JobStatsResponse struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Cancelled  int64 `json:"cancelled"`
	QueueDepth int64 `json:"queue_depth"`
}

// SearchRequest asks for analyses similar to a free-text query
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// MatchResult pairs an analysis with its similarity score
type MatchResult struct {
	Analysis        Analysis `json:"analysis"`
	SimilarityScore float64  `json:"similarity_score"`
}

// SpeechRequest selects the voice and rate for advice audio
type SpeechRequest struct {
	Voice string `json:"voice,omitempty"`
	Rate  string `json:"rate,omitempty"`
}

// SpeechResponse returns a signed, expiring audio download URL
type SpeechResponse struct {
	AudioURL  string    `json:"audio_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
