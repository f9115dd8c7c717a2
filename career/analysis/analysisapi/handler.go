package analysisapi

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Abraxas-365/careerqr/career/analysis"
	"github.com/Abraxas-365/careerqr/career/analysis/analysissrv"
	"github.com/Abraxas-365/careerqr/pkg/fsx"
	"github.com/Abraxas-365/careerqr/pkg/kernel"
)

const maxUploadSize = int64(10 * 1024 * 1024) // 10MB

type AnalysisHandlers struct {
	service    *analysissrv.Service
	fileSystem fsx.FileSystem
}

func NewAnalysisHandlers(service *analysissrv.Service, fileSystem fsx.FileSystem) *AnalysisHandlers {
	return &AnalysisHandlers{
		service:    service,
		fileSystem: fileSystem,
	}
}

func (h *AnalysisHandlers) RegisterRoutes(app *fiber.App, apiKey fiber.Handler) {
	analyses := app.Group("/api/v1/analyses", apiKey)

	// Job management. Literal /jobs routes must precede /:id or the
	// wildcard captures them.
	analyses.Get("/jobs/stats", h.GetJobStats)
	analyses.Get("/jobs/:job_id", h.GetJobStatus)
	analyses.Get("/jobs", h.ListJobs)
	analyses.Post("/jobs/:job_id/cancel", h.CancelJob)
	analyses.Post("/jobs/:job_id/retry", h.RetryJob)

	// Analysis lifecycle
	analyses.Post("/", h.StartAnalysis)      // Upload PDF and queue analysis (ASYNC)
	analyses.Get("/:id", h.GetAnalysis)      // Get by ID
	analyses.Delete("/:id", h.DeleteAnalysis)
	analyses.Get("/", h.ListAnalyses)

	// Search & speech
	analyses.Post("/search", h.SearchAnalyses)
	analyses.Post("/:id/speech", h.GenerateSpeech)

	// Audio downloads carry their own signed token, no API key
	app.Get("/api/v1/audio/:token", h.GetAudio)
}

// ============================================================================
// Analysis Handlers
// ============================================================================

// StartAnalysis accepts a resume PDF and queues it for analysis
// POST /api/v1/analyses
func (h *AnalysisHandlers) StartAnalysis(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	if file.Size > maxUploadSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "file too large",
			"max_size": "10MB",
			"size":     file.Size,
		})
	}

	if !isPDFUpload(file.Filename, file.Header.Get("Content-Type")) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":           "unsupported file type",
			"supported_types": []string{"pdf"},
			"detected_type":   file.Header.Get("Content-Type"),
		})
	}

	uploadedFile, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer uploadedFile.Close()

	// Format: analyses/{year}/{month}/{uuid}.pdf
	now := time.Now()
	filePath := h.fileSystem.Join(
		"analyses",
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		uuid.New().String()+".pdf",
	)

	if err := h.fileSystem.WriteFileStream(c.Context(), filePath, uploadedFile); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "failed to upload file to storage",
			"details": err.Error(),
		})
	}

	jobResponse, err := h.service.StartAnalysisAsync(c.Context(), analysis.StartAnalysisRequest{
		Source:   analysis.SourcePDF,
		FilePath: filePath,
		FileName: file.Filename,
		FileType: "pdf",
	})
	if err != nil {
		// If queueing fails, clean up the uploaded file
		_ = h.fileSystem.DeleteFile(c.Context(), filePath)
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":    "Resume upload successful, analysis started",
		"job":        jobResponse,
		"status_url": jobResponse.StatusURL,
	})
}

// GetAnalysis retrieves an analysis by ID
// GET /api/v1/analyses/:id
func (h *AnalysisHandlers) GetAnalysis(c *fiber.Ctx) error {
	analysisID := kernel.AnalysisID(c.Params("id"))
	if analysisID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid analysis ID",
		})
	}

	response, err := h.service.GetAnalysis(c.Context(), analysisID)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// DeleteAnalysis deletes an analysis and its stored files
// DELETE /api/v1/analyses/:id
func (h *AnalysisHandlers) DeleteAnalysis(c *fiber.Ctx) error {
	analysisID := kernel.AnalysisID(c.Params("id"))
	if analysisID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid analysis ID",
		})
	}

	if err := h.service.DeleteAnalysis(c.Context(), analysisID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// ListAnalyses lists analyses with pagination
// GET /api/v1/analyses?page=1&page_size=20
func (h *AnalysisHandlers) ListAnalyses(c *fiber.Ctx) error {
	pagination := kernel.NewPaginationOptions(
		c.QueryInt("page", 1),
		c.QueryInt("page_size", 20),
	)

	response, err := h.service.ListAnalyses(c.Context(), pagination)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// ============================================================================
// Job Management Handlers
// ============================================================================

// GetJobStatus retrieves the status of an analysis job
// GET /api/v1/analyses/jobs/:job_id
func (h *AnalysisHandlers) GetJobStatus(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("job_id"))
	if jobID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID",
		})
	}

	jobStatus, err := h.service.GetJobStatus(c.Context(), jobID)
	if err != nil {
		return err
	}

	return c.JSON(jobStatus)
}

// ListJobs lists analysis jobs
// GET /api/v1/analyses/jobs?page=1&page_size=20
func (h *AnalysisHandlers) ListJobs(c *fiber.Ctx) error {
	pagination := kernel.NewPaginationOptions(
		c.QueryInt("page", 1),
		c.QueryInt("page_size", 20),
	)

	jobs, err := h.service.ListJobs(c.Context(), pagination)
	if err != nil {
		return err
	}

	return c.JSON(jobs)
}

// GetJobStats retrieves job statistics
// GET /api/v1/analyses/jobs/stats
func (h *AnalysisHandlers) GetJobStats(c *fiber.Ctx) error {
	stats, err := h.service.GetJobStats(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(stats)
}

// CancelJob cancels a job that has not finished yet
// POST /api/v1/analyses/jobs/:job_id/cancel
func (h *AnalysisHandlers) CancelJob(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("job_id"))
	if jobID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID",
		})
	}

	if err := h.service.CancelJob(c.Context(), jobID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "job cancelled successfully",
		"job_id":  jobID,
	})
}

// RetryJob retries a failed job
// POST /api/v1/analyses/jobs/:job_id/retry
func (h *AnalysisHandlers) RetryJob(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("job_id"))
	if jobID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID",
		})
	}

	jobStatus, err := h.service.RetryFailedJob(c.Context(), jobID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "job retried successfully",
		"job":     jobStatus,
	})
}

// ============================================================================
// Search & Speech Handlers
// ============================================================================

// SearchAnalyses performs semantic search over stored analyses
// POST /api/v1/analyses/search
func (h *AnalysisHandlers) SearchAnalyses(c *fiber.Ctx) error {
	var req analysis.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	matches, err := h.service.SearchAnalyses(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"query":   req.Query,
		"matches": matches,
		"total":   len(matches),
	})
}

// GenerateSpeech synthesizes the advice of an analysis as audio
// POST /api/v1/analyses/:id/speech
// Body: {"voice": "nova", "rate": "fast"}
func (h *AnalysisHandlers) GenerateSpeech(c *fiber.Ctx) error {
	analysisID := kernel.AnalysisID(c.Params("id"))
	if analysisID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid analysis ID",
		})
	}

	var req analysis.SpeechRequest
	if err := c.BodyParser(&req); err != nil {
		// Empty body selects the default voice and rate
		req = analysis.SpeechRequest{}
	}

	response, err := h.service.GenerateSpeech(c.Context(), analysisID, req)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// GetAudio streams a synthesized audio file by signed token
// GET /api/v1/audio/:token
func (h *AnalysisHandlers) GetAudio(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "token is required",
		})
	}

	data, contentType, err := h.service.GetAudio(c.Context(), token)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

// ============================================================================
// Helper Functions
// ============================================================================

func isPDFUpload(filename, contentType string) bool {
	if contentType == "application/pdf" {
		return true
	}
	return filepath.Ext(filename) == ".pdf"
}
