package analysissrv

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Abraxas-365/careerqr/career/analysis"
	"github.com/Abraxas-365/careerqr/pkg/kernel"
	"github.com/Abraxas-365/careerqr/pkg/logx"
)

// StartAnalysisAsync queues a stored resume for background analysis
func (s *Service) StartAnalysisAsync(ctx context.Context, req analysis.StartAnalysisRequest) (*analysis.JobStatusResponse, error) {
	logx.Infof("Queueing resume for analysis: Source=%s, File=%s", req.Source, req.FileName)

	jobID := kernel.NewJobID(uuid.NewString())
	job := &analysis.AnalysisJob{
		ID:                 jobID,
		Status:             analysis.JobStatusPending,
		Source:             req.Source,
		SourceURL:          req.SourceURL,
		FilePath:           req.FilePath,
		FileName:           req.FileName,
		FileType:           req.FileType,
		AttemptCount:       0,
		MaxAttempts:        MaxJobAttempts,
		ProgressPercentage: 0,
		CreatedAt:          time.Now(),
		RequestPayload:     req,
	}

	// Job must be durable before it is visible to workers
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeQueueFailed, err).
			WithDetail("file_name", req.FileName).
			WithDetail("operation", "create_job")
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		// Mark job as failed if we can't queue it
		_ = s.jobRepo.MarkAsFailed(ctx, jobID, "failed to enqueue", map[string]any{
			"error": err.Error(),
		})

		return nil, analysis.ErrQueueFailed().
			WithDetail("job_id", jobID).
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	logx.Infof("Job queued successfully: JobID=%s", jobID)

	return &analysis.JobStatusResponse{
		JobID:     jobID.String(),
		Status:    analysis.JobStatusPending,
		Message:   "Resume queued for analysis",
		CreatedAt: job.CreatedAt,
		StatusURL: jobStatusURL(jobID),
	}, nil
}

// ProcessAnalysisJob runs the full analysis pipeline for one job
func (s *Service) ProcessAnalysisJob(ctx context.Context, job *analysis.AnalysisJob) error {
	logx.Infof("Processing job: JobID=%s, Attempt=%d/%d", job.ID, job.AttemptCount+1, job.MaxAttempts)

	if err := s.jobRepo.MarkAsProcessing(ctx, job.ID); err != nil {
		return analysis.ErrRegistry.NewWithCause(analysis.CodeJobNotFound, err).
			WithDetail("job_id", job.ID).
			WithDetail("status", "processing")
	}

	// Step 1: extraction
	_ = s.jobRepo.UpdateProgress(ctx, job.ID, analysis.StepExtracting, 25)

	fileData, err := s.files.ReadFile(ctx, job.FilePath)
	if err != nil {
		return s.handleJobError(ctx, job, "file_read_failed", err)
	}

	resumeData, err := s.extractResumeData(ctx, fileData)
	if err != nil {
		return s.handleJobError(ctx, job, "extraction_failed", err)
	}
	if resumeData.IsEmpty() {
		return s.handleJobError(ctx, job, "extraction_empty",
			fmt.Errorf("no usable content extracted from %s", job.FileName))
	}

	// Step 2: advice
	_ = s.jobRepo.UpdateProgress(ctx, job.ID, analysis.StepAdvising, 50)

	serialized, err := formatResumeForAdvice(resumeData)
	if err != nil {
		return s.handleJobError(ctx, job, "advice_failed", err)
	}

	advice, err := s.adviceGen.GenerateAdvice(ctx, serialized)
	if err != nil {
		return s.handleJobError(ctx, job, "advice_failed", err)
	}

	// Step 3: search embedding
	_ = s.jobRepo.UpdateProgress(ctx, job.ID, analysis.StepEmbedding, 75)

	model := analysis.NewAnalysis(job.Source, job.SourceURL, job.FilePath, job.FileName, job.FileType)
	model.Resume = *resumeData
	model.Advice = advice
	model.AdviceModel = s.adviceModel

	embedding, err := s.generateAnalysisEmbedding(ctx, resumeData)
	if err != nil {
		return s.handleJobError(ctx, job, "embedding_failed", err)
	}
	model.Embedding = *embedding

	// Step 4: persist
	_ = s.jobRepo.UpdateProgress(ctx, job.ID, analysis.StepSaving, 100)

	if err := s.repo.Create(ctx, model); err != nil {
		return s.handleJobError(ctx, job, "save_failed", err)
	}

	if err := s.jobRepo.MarkAsCompleted(ctx, job.ID, model.ID); err != nil {
		logx.Errorf("Failed to mark job as completed: %v", err)
		// The analysis was created; do not fail the job over status bookkeeping
	}

	logx.Infof("Job completed successfully: JobID=%s, AnalysisID=%s", job.ID, model.ID)
	return nil
}

// handleJobError handles job processing errors with retry logic
func (s *Service) handleJobError(ctx context.Context, job *analysis.AnalysisJob, errorType string, err error) error {
	job.AttemptCount++

	errorDetails := map[string]any{
		"error":        err.Error(),
		"error_type":   errorType,
		"attempt":      job.AttemptCount,
		"max_attempts": job.MaxAttempts,
		"file_path":    job.FilePath,
		"file_name":    job.FileName,
	}

	if job.AttemptCount < job.MaxAttempts {
		// Exponential backoff: 2^attempt minutes
		retryDelay := time.Duration(1<<uint(job.AttemptCount)) * time.Minute
		nextRetry := time.Now().Add(retryDelay)
		job.NextRetryAt = &nextRetry

		logx.Warnf("Job failed, will retry: JobID=%s, Attempt=%d/%d, NextRetry=%v, Error=%s",
			job.ID, job.AttemptCount, job.MaxAttempts, nextRetry, errorType)

		if queueErr := s.queue.EnqueueDelayed(ctx, job, retryDelay); queueErr != nil {
			logx.Errorf("Failed to enqueue for retry: %v", queueErr)

			_ = s.jobRepo.MarkAsFailed(ctx, job.ID,
				fmt.Sprintf("%s (retry enqueue failed)", errorType),
				errorDetails)

			return analysis.ErrQueueFailed().
				WithDetail("job_id", job.ID).
				WithDetail("error_type", errorType).
				WithDetails(errorDetails)
		}

		job.ErrorMessage = fmt.Sprintf("%s (will retry)", errorType)
		job.ErrorDetails = errorDetails
		job.Status = analysis.JobStatusPending // Reset to pending for retry

		if updateErr := s.jobRepo.Update(ctx, job); updateErr != nil {
			logx.Errorf("Failed to update job for retry: %v", updateErr)
		}

		return analysis.ErrRegistry.NewWithCause(analysis.CodeExtractionFailed, err).
			WithDetail("job_id", job.ID).
			WithDetail("error_type", errorType).
			WithDetail("will_retry", true).
			WithDetail("next_retry_at", nextRetry)
	}

	// Max attempts reached
	logx.Errorf("Job permanently failed: JobID=%s, Error=%s, Attempts=%d/%d",
		job.ID, errorType, job.AttemptCount, job.MaxAttempts)

	_ = s.jobRepo.MarkAsFailed(ctx, job.ID, errorType, errorDetails)

	return analysis.ErrRegistry.NewWithCause(analysis.CodeExtractionFailed, err).
		WithDetail("job_id", job.ID).
		WithDetail("error_type", errorType).
		WithDetail("final_attempt", job.AttemptCount)
}

// GetJobStatus retrieves the current status of a job
func (s *Service) GetJobStatus(ctx context.Context, jobID kernel.JobID) (*analysis.JobStatusResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return toJobStatusResponse(job), nil
}

// ListJobs retrieves jobs with pagination
func (s *Service) ListJobs(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[analysis.AnalysisJob], error) {
	return s.jobRepo.List(ctx, pagination)
}

// CancelJob cancels a job that has not finished yet
func (s *Service) CancelJob(ctx context.Context, jobID kernel.JobID) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	switch job.Status {
	case analysis.JobStatusCompleted, analysis.JobStatusCancelled:
		return analysis.ErrJobNotCancelable().
			WithDetail("job_id", jobID).
			WithDetail("current_status", job.Status)
	case analysis.JobStatusProcessing:
		// Won't stop an actively running job, just marks it
		logx.Warnf("Cancelling job that is currently processing: %s", jobID)
	}

	now := time.Now()
	job.Status = analysis.JobStatusCancelled
	job.FailedAt = &now
	job.ErrorMessage = "Job cancelled by user"
	job.NextRetryAt = nil

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return analysis.ErrRegistry.NewWithCause(analysis.CodeJobNotFound, err).
			WithDetail("job_id", jobID).
			WithDetail("operation", "cancel")
	}

	logx.Infof("Job cancelled: JobID=%s", jobID)
	return nil
}

// RetryFailedJob manually requeues a failed job
func (s *Service) RetryFailedJob(ctx context.Context, jobID kernel.JobID) (*analysis.JobStatusResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != analysis.JobStatusFailed {
		return nil, analysis.ErrJobNotRetryable().
			WithDetail("job_id", jobID).
			WithDetail("current_status", job.Status).
			WithDetail("required_status", analysis.JobStatusFailed)
	}

	// Reset job for a fresh run
	job.Status = analysis.JobStatusPending
	job.AttemptCount = 0
	job.ErrorMessage = ""
	job.ErrorDetails = nil
	job.FailedAt = nil
	job.NextRetryAt = nil
	job.ProgressPercentage = 0
	job.CurrentStep = nil

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeJobNotFound, err).
			WithDetail("job_id", jobID).
			WithDetail("operation", "retry")
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		_ = s.jobRepo.MarkAsFailed(ctx, jobID, "failed to re-enqueue", map[string]any{
			"error": err.Error(),
		})

		return nil, analysis.ErrQueueFailed().
			WithDetail("job_id", jobID).
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	logx.Infof("Job manually retried: JobID=%s", jobID)

	return &analysis.JobStatusResponse{
		JobID:     jobID.String(),
		Status:    analysis.JobStatusPending,
		Message:   "Job requeued for processing",
		CreatedAt: job.CreatedAt,
		StatusURL: jobStatusURL(jobID),
	}, nil
}

// GetJobStats returns job counts per status plus the live queue depth
func (s *Service) GetJobStats(ctx context.Context) (*analysis.JobStatsResponse, error) {
	counts, err := s.jobRepo.CountByStatus(ctx)
	if err != nil {
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeJobNotFound, err).
			WithDetail("operation", "count_by_status")
	}

	stats := &analysis.JobStatsResponse{
		Pending:    counts[analysis.JobStatusPending],
		Processing: counts[analysis.JobStatusProcessing],
		Completed:  counts[analysis.JobStatusCompleted],
		Failed:     counts[analysis.JobStatusFailed],
		Cancelled:  counts[analysis.JobStatusCancelled],
	}

	if depth, err := s.queue.GetQueueSize(ctx); err == nil {
		stats.QueueDepth = depth
	} else {
		logx.Warnf("Failed to read queue depth: %v", err)
	}

	return stats, nil
}

// toJobStatusResponse maps a job onto its API representation
func toJobStatusResponse(job *analysis.AnalysisJob) *analysis.JobStatusResponse {
	response := &analysis.JobStatusResponse{
		JobID:              job.ID.String(),
		Status:             job.Status,
		ProgressPercentage: job.ProgressPercentage,
		CreatedAt:          job.CreatedAt,
		StatusURL:          jobStatusURL(job.ID),
	}

	if job.AnalysisID != nil {
		id := job.AnalysisID.String()
		response.AnalysisID = &id
	}
	if job.CurrentStep != nil {
		step := string(*job.CurrentStep)
		response.CurrentStep = &step
	}

	switch job.Status {
	case analysis.JobStatusPending:
		if job.AttemptCount > 0 {
			response.Message = fmt.Sprintf("Job pending retry (attempt %d/%d)", job.AttemptCount, job.MaxAttempts)
		} else {
			response.Message = "Job queued and waiting to be processed"
		}

	case analysis.JobStatusProcessing:
		if job.CurrentStep != nil {
			response.Message = fmt.Sprintf("Analyzing resume: %s", *job.CurrentStep)
		} else {
			response.Message = "Analyzing resume"
		}
		response.StartedAt = job.StartedAt

	case analysis.JobStatusCompleted:
		response.Message = "Resume analyzed successfully"
		response.CompletedAt = job.CompletedAt

	case analysis.JobStatusFailed:
		response.Message = job.ErrorMessage
		response.Error = &analysis.JobError{
			Message: job.ErrorMessage,
			Details: job.ErrorDetails,
		}

	case analysis.JobStatusCancelled:
		response.Message = "Job cancelled"
	}

	return response
}

func jobStatusURL(jobID kernel.JobID) string {
	return "/api/v1/analyses/jobs/" + jobID.String()
}
