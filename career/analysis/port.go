package analysis

import (
	"context"
	"time"

	"github.com/Abraxas-365/careerqr/pkg/kernel"
)

// Repository persists analyses and their search embeddings
type Repository interface {
	Create(ctx context.Context, a *Analysis) error
	GetByID(ctx context.Context, id kernel.AnalysisID) (*Analysis, error)
	List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[Analysis], error)
	Delete(ctx context.Context, id kernel.AnalysisID) error
	UpdateAudioPath(ctx context.Context, id kernel.AnalysisID, audioPath string) error
	SearchSimilar(ctx context.Context, queryVector []float32, topK int) ([]MatchResult, error)
}

// JobRepository persists analysis job state
type JobRepository interface {
	Create(ctx context.Context, job *AnalysisJob) error
	Update(ctx context.Context, job *AnalysisJob) error
	GetByID(ctx context.Context, jobID kernel.JobID) (*AnalysisJob, error)
	List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[AnalysisJob], error)
	MarkAsProcessing(ctx context.Context, jobID kernel.JobID) error
	MarkAsCompleted(ctx context.Context, jobID kernel.JobID, analysisID kernel.AnalysisID) error
	MarkAsFailed(ctx context.Context, jobID kernel.JobID, errorMsg string, errorDetails map[string]any) error
	UpdateProgress(ctx context.Context, jobID kernel.JobID, step ProcessingStep, percentage int) error
	CountByStatus(ctx context.Context) (map[JobStatus]int64, error)
}

// JobQueue moves job IDs between the API and the worker pool
type JobQueue interface {
	Enqueue(ctx context.Context, job *AnalysisJob) error
	Dequeue(ctx context.Context, timeout time.Duration) (*AnalysisJob, error)
	EnqueueDelayed(ctx context.Context, job *AnalysisJob, delay time.Duration) error
	MoveDelayedToReady(ctx context.Context) error
	GetQueueSize(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}
