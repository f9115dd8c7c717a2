package analysissrv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/careerqr/career/analysis"
	"github.com/Abraxas-365/careerqr/internal/ai/docintel"
	"github.com/Abraxas-365/careerqr/internal/ai/embeddings"
	"github.com/Abraxas-365/careerqr/internal/ai/speech"
	"github.com/Abraxas-365/careerqr/internal/ai/visionparser"
	"github.com/Abraxas-365/careerqr/internal/pdf"
	"github.com/Abraxas-365/careerqr/pkg/auth"
	"github.com/Abraxas-365/careerqr/pkg/fsx"
	"github.com/Abraxas-365/careerqr/pkg/kernel"
	"github.com/Abraxas-365/careerqr/pkg/logx"
)

const (
	MaxJobAttempts = 3

	DefaultTopK = 5
	MaxTopK     = 50

	// AudioTokenTTL bounds how long a generated audio URL stays valid
	AudioTokenTTL = 15 * time.Minute

	audioContentType = "audio/mpeg"
)

// DocumentExtractor pulls structured text out of a resume PDF
type DocumentExtractor interface {
	ProcessResume(ctx context.Context, data []byte) (*docintel.Document, error)
}

// PageParser is the vision fallback for scanned or image-heavy resumes
type PageParser interface {
	ParseResumePages(ctx context.Context, pages [][]byte) (*visionparser.ParsedResume, error)
}

// AdviceGenerator produces the scored career advice text
type AdviceGenerator interface {
	GenerateAdvice(ctx context.Context, resumeData string) (string, error)
}

// AudioSynthesizer renders advice text as audio
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, text string, opts speech.Options) ([]byte, error)
}

// Embedder produces the search vector for an analysis
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type Service struct {
	repo        analysis.Repository
	jobRepo     analysis.JobRepository
	queue       analysis.JobQueue
	extractor   DocumentExtractor // nil when Document AI is not configured
	pageParser  PageParser
	adviceGen   AdviceGenerator
	synthesizer AudioSynthesizer
	embedder    Embedder
	files       fsx.FileSystem
	tokens      *auth.TokenService
	adviceModel string
}

// NewService creates a new analysis service
func NewService(
	repo analysis.Repository,
	jobRepo analysis.JobRepository,
	queue analysis.JobQueue,
	extractor DocumentExtractor,
	pageParser PageParser,
	adviceGen AdviceGenerator,
	synthesizer AudioSynthesizer,
	embedder Embedder,
	files fsx.FileSystem,
	tokens *auth.TokenService,
	adviceModel string,
) *Service {
	return &Service{
		repo:        repo,
		jobRepo:     jobRepo,
		queue:       queue,
		extractor:   extractor,
		pageParser:  pageParser,
		adviceGen:   adviceGen,
		synthesizer: synthesizer,
		embedder:    embedder,
		files:       files,
		tokens:      tokens,
		adviceModel: adviceModel,
	}
}

// ============================================================================
// CRUD Operations
// ============================================================================

// GetAnalysis retrieves an analysis by ID
func (s *Service) GetAnalysis(ctx context.Context, id kernel.AnalysisID) (*analysis.Analysis, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAnalyses lists analyses with pagination
func (s *Service) ListAnalyses(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[analysis.Analysis], error) {
	return s.repo.List(ctx, pagination)
}

// DeleteAnalysis deletes an analysis and its stored files
func (s *Service) DeleteAnalysis(ctx context.Context, id kernel.AnalysisID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// File cleanup is best effort; the record is already gone
	if existing.FilePath != "" {
		if err := s.files.DeleteFile(ctx, existing.FilePath); err != nil {
			logx.Warnf("Failed to delete resume file %s: %v", existing.FilePath, err)
		}
	}
	if existing.HasAudio() {
		if err := s.files.DeleteFile(ctx, existing.AudioPath); err != nil {
			logx.Warnf("Failed to delete audio file %s: %v", existing.AudioPath, err)
		}
	}

	return nil
}

// ============================================================================
// Semantic Search
// ============================================================================

// SearchAnalyses performs semantic search over stored analyses
func (s *Service) SearchAnalyses(ctx context.Context, req analysis.SearchRequest) ([]analysis.MatchResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, analysis.ErrInvalidData().
			WithDetail("field", "query").
			WithDetail("reason", "empty")
	}

	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	queryVector, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeEmbeddingFailed, err).
			WithDetail("operation", "embed_query")
	}

	return s.repo.SearchSimilar(ctx, queryVector, topK)
}

// ============================================================================
// Speech Synthesis
// ============================================================================

// GenerateSpeech synthesizes the advice of an analysis as audio, stores
// it, and returns a signed expiring download URL.
func (s *Service) GenerateSpeech(ctx context.Context, id kernel.AnalysisID, req analysis.SpeechRequest) (*analysis.SpeechResponse, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !existing.HasAdvice() {
		return nil, analysis.ErrNoAdvice().
			WithDetail("analysis_id", id)
	}

	audio, err := s.synthesizer.Synthesize(ctx, existing.Advice, speech.Options{
		Voice: req.Voice,
		Rate:  req.Rate,
	})
	if err != nil {
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeSpeechFailed, err).
			WithDetail("analysis_id", id)
	}

	audioPath := s.files.Join("audio", fmt.Sprintf("%s.mp3", id))
	if err := s.files.WriteFile(ctx, audioPath, audio); err != nil {
		return nil, analysis.ErrStorageFailed().
			WithDetail("analysis_id", id).
			WithDetail("audio_path", audioPath).
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	if err := s.repo.UpdateAudioPath(ctx, id, audioPath); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateFileToken(audioPath, audioContentType, AudioTokenTTL)
	if err != nil {
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeSpeechFailed, err).
			WithDetail("analysis_id", id).
			WithDetail("operation", "sign_token")
	}

	logx.Infof("Generated advice audio for analysis %s: %s", id, audioPath)

	return &analysis.SpeechResponse{
		AudioURL:  "/api/v1/audio/" + token,
		ExpiresAt: time.Now().Add(AudioTokenTTL),
	}, nil
}

// GetAudio validates a download token and returns the audio bytes
func (s *Service) GetAudio(ctx context.Context, token string) ([]byte, string, error) {
	claims, err := s.tokens.ValidateFileToken(token)
	if err != nil {
		return nil, "", err
	}

	data, err := s.files.ReadFile(ctx, claims.Path)
	if err != nil {
		return nil, "", analysis.ErrStorageFailed().
			WithDetail("path", claims.Path).
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	return data, claims.ContentType, nil
}

// ============================================================================
// Private Helper Methods
// ============================================================================

// extractResumeData runs the document analyzer and falls back to the
// vision parser when the analyzer is unavailable or fails.
func (s *Service) extractResumeData(ctx context.Context, fileData []byte) (*analysis.ResumeData, error) {
	if s.extractor != nil {
		doc, err := s.extractor.ProcessResume(ctx, fileData)
		if err == nil {
			return s.buildResumeData(doc), nil
		}
		logx.Warnf("Document analysis failed, falling back to vision parser: %v", err)
	}

	return s.extractWithVision(ctx, fileData)
}

// buildResumeData triages analyzer output into resume buckets and
// backfills contact details from form fields, entities and raw text.
func (s *Service) buildResumeData(doc *docintel.Document) *analysis.ResumeData {
	rd := analysis.TriageParagraphs(doc.Paragraphs)

	for _, kv := range doc.KeyValues {
		rd.ApplyKeyValue(kv.Key, kv.Value)
	}

	if rd.Name == "" {
		for _, entity := range doc.Entities {
			entityType := strings.ToLower(entity.Type)
			if strings.Contains(entityType, "person") || strings.Contains(entityType, "name") {
				rd.Name = strings.TrimSpace(entity.Mention)
				break
			}
		}
	}

	rd.BackfillContact(doc.Text)
	return &rd
}

func (s *Service) extractWithVision(ctx context.Context, fileData []byte) (*analysis.ResumeData, error) {
	pages, err := pdf.ConvertPDFToImages(fileData)
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("PDF contains no pages")
	}

	parsed, err := s.pageParser.ParseResumePages(ctx, pages)
	if err != nil {
		return nil, fmt.Errorf("vision parsing failed: %w", err)
	}

	return &analysis.ResumeData{
		Name:           parsed.Name,
		Email:          parsed.Email,
		Phone:          parsed.Phone,
		Skills:         parsed.Skills,
		Projects:       parsed.Projects,
		Education:      parsed.Education,
		Experience:     parsed.Experience,
		Certifications: parsed.Certifications,
		Others:         parsed.Others,
	}, nil
}

// formatResumeForAdvice serializes the resume buckets for the advice prompt
func formatResumeForAdvice(rd *analysis.ResumeData) (string, error) {
	data, err := json.MarshalIndent(rd, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal resume data: %w", err)
	}
	return string(data), nil
}

// generateAnalysisEmbedding embeds the resume text for semantic search.
// An empty resume yields an empty embedding rather than an error.
func (s *Service) generateAnalysisEmbedding(ctx context.Context, rd *analysis.ResumeData) (*analysis.AnalysisEmbedding, error) {
	text := strings.TrimSpace(rd.FormatForEmbedding())
	if text == "" {
		logx.Warn("No text content available for embedding generation")
		return &analysis.AnalysisEmbedding{
			ModelUsed:    embeddings.ModelName,
			EmbeddingDim: embeddings.Dimensions,
			GeneratedAt:  time.Now(),
		}, nil
	}

	vector, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	return &analysis.AnalysisEmbedding{
		Vector:       vector,
		ModelUsed:    embeddings.ModelName,
		EmbeddingDim: embeddings.Dimensions,
		GeneratedAt:  time.Now(),
	}, nil
}
