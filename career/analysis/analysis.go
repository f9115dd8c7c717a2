package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Abraxas-365/careerqr/pkg/kernel"
)

// Source identifies how the resume reached the service
type Source string

const (
	SourcePDF Source = "pdf" // Direct PDF upload
	SourceQR  Source = "qr"  // Downloaded from a QR-decoded URL
)

// ResumeData is the bucketed resume content produced by extraction
type ResumeData struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Skills         []string `json:"skills"`
	Projects       []string `json:"projects"`
	Education      []string `json:"education"`
	Experience     []string `json:"experience"`
	Certifications []string `json:"certifications"`
	Others         []string `json:"others"`
}

// IsEmpty reports whether extraction produced nothing usable
func (rd *ResumeData) IsEmpty() bool {
	return rd.Name == "" && rd.Email == "" && rd.Phone == "" &&
		len(rd.Skills) == 0 && len(rd.Projects) == 0 &&
		len(rd.Education) == 0 && len(rd.Experience) == 0 &&
		len(rd.Certifications) == 0 && len(rd.Others) == 0
}

// HasContact reports whether any contact detail was found
func (rd *ResumeData) HasContact() bool {
	return rd.Email != "" || rd.Phone != ""
}

// SectionCount counts the non-empty section buckets
func (rd *ResumeData) SectionCount() int {
	count := 0
	for _, section := range [][]string{
		rd.Skills, rd.Projects, rd.Education,
		rd.Experience, rd.Certifications, rd.Others,
	} {
		if len(section) > 0 {
			count++
		}
	}
	return count
}

// FormatForEmbedding creates a text representation for embedding
func (rd *ResumeData) FormatForEmbedding() string {
	var b strings.Builder

	if rd.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", rd.Name)
	}
	if rd.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", rd.Email)
	}

	sections := []struct {
		label string
		items []string
	}{
		{"Skills", rd.Skills},
		{"Projects", rd.Projects},
		{"Education", rd.Education},
		{"Experience", rd.Experience},
		{"Certifications", rd.Certifications},
	}
	for _, section := range sections {
		if len(section.items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", section.label)
		for _, item := range section.items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}

	return b.String()
}

// AnalysisEmbedding stores the pgvector payload for semantic search
type AnalysisEmbedding struct {
	Vector       []float32 `json:"-"`
	ModelUsed    string    `json:"model_used,omitempty"`
	EmbeddingDim int       `json:"embedding_dim,omitempty"`
	GeneratedAt  time.Time `json:"generated_at,omitempty"`
}

// Analysis is one completed resume evaluation
type Analysis struct {
	ID          kernel.AnalysisID `json:"id" db:"id"`
	Source      Source            `json:"source" db:"source"`
	SourceURL   string            `json:"source_url,omitempty" db:"source_url"`
	FilePath    string            `json:"file_path" db:"file_path"`
	FileName    string            `json:"file_name" db:"file_name"`
	FileType    string            `json:"file_type" db:"file_type"`
	Resume      ResumeData        `json:"resume" db:"-"`
	Advice      string            `json:"advice" db:"advice"`
	AdviceModel string            `json:"advice_model" db:"advice_model"`
	AudioPath   string            `json:"audio_path,omitempty" db:"audio_path"`
	Embedding   AnalysisEmbedding `json:"embedding,omitempty" db:"-"`

	AnalyzedAt    time.Time `json:"analyzed_at" db:"analyzed_at"`
	LastUpdatedAt time.Time `json:"last_updated_at" db:"last_updated_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// NewAnalysis creates an Analysis shell for a stored resume file
func NewAnalysis(source Source, sourceURL, filePath, fileName, fileType string) *Analysis {
	now := time.Now()
	return &Analysis{
		ID:            kernel.AnalysisID(uuid.New().String()),
		Source:        source,
		SourceURL:     sourceURL,
		FilePath:      filePath,
		FileName:      fileName,
		FileType:      fileType,
		AnalyzedAt:    now,
		LastUpdatedAt: now,
		CreatedAt:     now,
	}
}

// HasAdvice reports whether advice generation completed
func (a *Analysis) HasAdvice() bool {
	return strings.TrimSpace(a.Advice) != ""
}

// HasEmbedding reports whether the analysis is searchable
func (a *Analysis) HasEmbedding() bool {
	return len(a.Embedding.Vector) > 0
}

// HasAudio reports whether advice audio was synthesized
func (a *Analysis) HasAudio() bool {
	return a.AudioPath != ""
}

// SetAudioPath records where the synthesized advice audio is stored
func (a *Analysis) SetAudioPath(path string) {
	a.AudioPath = path
	a.LastUpdatedAt = time.Now()
}
