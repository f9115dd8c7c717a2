package analysis

import (
	"time"

	"github.com/Abraxas-365/careerqr/pkg/kernel"
)

// JobStatus is the lifecycle state of an analysis job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// ProcessingStep names the pipeline stage a running job is in
type ProcessingStep string

const (
	StepExtracting ProcessingStep = "extracting" // Document analysis + triage
	StepAdvising   ProcessingStep = "advising"   // Career advice generation
	StepEmbedding  ProcessingStep = "embedding"  // Search vector generation
	StepSaving     ProcessingStep = "saving"     // Persisting the analysis
)

// AnalysisJob tracks one asynchronous resume analysis
type AnalysisJob struct {
	ID         kernel.JobID       `json:"id" db:"id"`
	AnalysisID *kernel.AnalysisID `json:"analysis_id,omitempty" db:"analysis_id"`

	Status    JobStatus `json:"status" db:"status"`
	Source    Source    `json:"source" db:"source"`
	SourceURL string    `json:"source_url,omitempty" db:"source_url"`
	FilePath  string    `json:"file_path" db:"file_path"`
	FileName  string    `json:"file_name" db:"file_name"`
	FileType  string    `json:"file_type" db:"file_type"`

	AttemptCount int `json:"attempt_count" db:"attempt_count"`
	MaxAttempts  int `json:"max_attempts" db:"max_attempts"`

	ErrorMessage string         `json:"error_message,omitempty" db:"error_message"`
	ErrorDetails map[string]any `json:"error_details,omitempty" db:"-"`

	CurrentStep        *ProcessingStep `json:"current_step,omitempty" db:"current_step"`
	ProgressPercentage int             `json:"progress_percentage" db:"progress_percentage"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	FailedAt    *time.Time `json:"failed_at,omitempty" db:"failed_at"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty" db:"next_retry_at"`

	RequestPayload StartAnalysisRequest `json:"request_payload" db:"-"`
}

// CanRetry reports whether the job has attempts left
func (j *AnalysisJob) CanRetry() bool {
	return j.AttemptCount < j.MaxAttempts
}

// IsTerminal reports whether the job reached a final state
func (j *AnalysisJob) IsTerminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusCancelled:
		return true
	case JobStatusFailed:
		return !j.CanRetry()
	default:
		return false
	}
}

// JobError is surfaced in job status responses for failed jobs
type JobError struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
