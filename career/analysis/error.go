package analysis

import (
	"net/http"

	"github.com/Abraxas-365/careerqr/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("ANALYSIS")

var (
	CodeAnalysisNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Analysis not found")
	CodeInvalidData      = ErrRegistry.Register("INVALID_DATA", errx.TypeValidation, http.StatusBadRequest, "Invalid analysis data")
	CodeInvalidFile      = ErrRegistry.Register("INVALID_FILE", errx.TypeBadRequest, http.StatusBadRequest, "Unsupported or corrupt resume file")
	CodeExtractionFailed = ErrRegistry.Register("EXTRACTION_FAILED", errx.TypeExternal, http.StatusBadGateway, "Could not extract data from resume")
	CodeAdviceFailed     = ErrRegistry.Register("ADVICE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Could not generate career advice")
	CodeSpeechFailed     = ErrRegistry.Register("SPEECH_FAILED", errx.TypeExternal, http.StatusBadGateway, "Could not synthesize advice audio")
	CodeNoAdvice         = ErrRegistry.Register("NO_ADVICE", errx.TypeConflict, http.StatusConflict, "Analysis has no advice to synthesize")
	CodeEmbeddingFailed  = ErrRegistry.Register("EMBEDDING_FAILED", errx.TypeExternal, http.StatusBadGateway, "Could not generate search embedding")
	CodeSearchFailed     = ErrRegistry.Register("SEARCH_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Semantic search failed")
	CodeStorageFailed    = ErrRegistry.Register("STORAGE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "File storage operation failed")
	CodeJobNotFound      = ErrRegistry.Register("JOB_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Analysis job not found")
	CodeJobNotRetryable  = ErrRegistry.Register("JOB_NOT_RETRYABLE", errx.TypeConflict, http.StatusConflict, "Job is not in a retryable state")
	CodeJobNotCancelable = ErrRegistry.Register("JOB_NOT_CANCELABLE", errx.TypeConflict, http.StatusConflict, "Job is not in a cancelable state")
	CodeQueueFailed      = ErrRegistry.Register("QUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to enqueue analysis job")
)

func ErrAnalysisNotFound() *errx.Error { return ErrRegistry.New(CodeAnalysisNotFound) }
func ErrInvalidData() *errx.Error      { return ErrRegistry.New(CodeInvalidData) }
func ErrInvalidFile() *errx.Error      { return ErrRegistry.New(CodeInvalidFile) }
func ErrExtractionFailed() *errx.Error { return ErrRegistry.New(CodeExtractionFailed) }
func ErrAdviceFailed() *errx.Error     { return ErrRegistry.New(CodeAdviceFailed) }
func ErrSpeechFailed() *errx.Error     { return ErrRegistry.New(CodeSpeechFailed) }
func ErrNoAdvice() *errx.Error         { return ErrRegistry.New(CodeNoAdvice) }
func ErrEmbeddingFailed() *errx.Error  { return ErrRegistry.New(CodeEmbeddingFailed) }
func ErrSearchFailed() *errx.Error     { return ErrRegistry.New(CodeSearchFailed) }
func ErrStorageFailed() *errx.Error    { return ErrRegistry.New(CodeStorageFailed) }
func ErrJobNotFound() *errx.Error      { return ErrRegistry.New(CodeJobNotFound) }
func ErrJobNotRetryable() *errx.Error  { return ErrRegistry.New(CodeJobNotRetryable) }
func ErrJobNotCancelable() *errx.Error { return ErrRegistry.New(CodeJobNotCancelable) }
func ErrQueueFailed() *errx.Error      { return ErrRegistry.New(CodeQueueFailed) }
