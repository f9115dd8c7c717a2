package analysisinfra

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/Abraxas-365/careerqr/career/analysis"
	"github.com/Abraxas-365/careerqr/pkg/kernel"
)

// analysisRow represents a row from the analyses table
type analysisRow struct {
	ID            string         `db:"id"`
	Source        string         `db:"source"`
	SourceURL     sql.NullString `db:"source_url"`
	FilePath      string         `db:"file_path"`
	FileName      string         `db:"file_name"`
	FileType      string         `db:"file_type"`
	ResumeData    []byte         `db:"resume_data"`
	Advice        string         `db:"advice"`
	AdviceModel   string         `db:"advice_model"`
	AudioPath     sql.NullString `db:"audio_path"`
	AnalyzedAt    time.Time      `db:"analyzed_at"`
	LastUpdatedAt time.Time      `db:"last_updated_at"`
	CreatedAt     time.Time      `db:"created_at"`
}

// ToDomain converts an analysisRow to an analysis.Analysis domain model
func (r *analysisRow) ToDomain() (*analysis.Analysis, error) {
	model := &analysis.Analysis{
		ID:            kernel.AnalysisID(r.ID),
		Source:        analysis.Source(r.Source),
		FilePath:      r.FilePath,
		FileName:      r.FileName,
		FileType:      r.FileType,
		Advice:        r.Advice,
		AdviceModel:   r.AdviceModel,
		AnalyzedAt:    r.AnalyzedAt,
		LastUpdatedAt: r.LastUpdatedAt,
		CreatedAt:     r.CreatedAt,
	}

	if err := json.Unmarshal(r.ResumeData, &model.Resume); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resume_data: %w", err)
	}

	if r.SourceURL.Valid {
		model.SourceURL = r.SourceURL.String
	}
	if r.AudioPath.Valid {
		model.AudioPath = r.AudioPath.String
	}

	return model, nil
}

// embeddingRow represents a row from the analysis_embeddings table
type embeddingRow struct {
	Embedding    string    `db:"embedding"`
	ModelUsed    string    `db:"model_used"`
	EmbeddingDim int       `db:"embedding_dim"`
	GeneratedAt  time.Time `db:"generated_at"`
}

// ToDomain converts an embeddingRow to analysis.AnalysisEmbedding
func (e *embeddingRow) ToDomain() analysis.AnalysisEmbedding {
	return analysis.AnalysisEmbedding{
		Vector:       vectorToFloat32Slice(e.Embedding),
		ModelUsed:    e.ModelUsed,
		EmbeddingDim: e.EmbeddingDim,
		GeneratedAt:  e.GeneratedAt,
	}
}

// float32SliceToVector converts []float32 to pgvector.Vector
func float32SliceToVector(slice []float32) pgvector.Vector {
	if len(slice) == 0 {
		return pgvector.NewVector([]float32{})
	}
	return pgvector.NewVector(slice)
}

// vectorToFloat32Slice converts pgvector text output to []float32
func vectorToFloat32Slice(vectorStr string) []float32 {
	if vectorStr == "" || vectorStr == "[]" {
		return []float32{}
	}

	vec := pgvector.Vector{}
	if err := vec.Scan(vectorStr); err != nil {
		return []float32{}
	}

	return vec.Slice()
}
