package analysisinfra

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Abraxas-365/careerqr/career/analysis"
	"github.com/Abraxas-365/careerqr/pkg/kernel"
	"github.com/Abraxas-365/careerqr/pkg/logx"
)

type PostgresAnalysisRepository struct {
	db *sqlx.DB
}

func NewPostgresAnalysisRepository(db *sqlx.DB) *PostgresAnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

// ============================================================================
// CRUD Operations
// ============================================================================

// Create creates a new analysis
func (r *PostgresAnalysisRepository) Create(ctx context.Context, model *analysis.Analysis) error {
	query := `
		INSERT INTO analyses (
			id, source, source_url, file_path, file_name, file_type,
			resume_data, advice, advice_model, audio_path,
			analyzed_at, last_updated_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13
		)`

	resumeData, err := json.Marshal(model.Resume)
	if err != nil {
		return analysis.ErrInvalidData().
			WithDetail("field", "resume_data").
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	_, err = r.db.ExecContext(ctx, query,
		model.ID, model.Source, nullString(model.SourceURL), model.FilePath, model.FileName, model.FileType,
		resumeData, model.Advice, model.AdviceModel, nullString(model.AudioPath),
		model.AnalyzedAt, model.LastUpdatedAt, model.CreatedAt,
	)
	if err != nil {
		// Check for duplicate key error
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return analysis.ErrInvalidData().
				WithDetail("analysis_id", model.ID).
				WithDetail("reason", "duplicate")
		}
		return analysis.ErrRegistry.NewWithCause(analysis.CodeStorageFailed, err).
			WithDetail("analysis_id", model.ID).
			WithDetail("operation", "insert")
	}

	if model.HasEmbedding() {
		if err := r.upsertEmbedding(ctx, model.ID, model.Embedding); err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves an analysis by ID
func (r *PostgresAnalysisRepository) GetByID(ctx context.Context, id kernel.AnalysisID) (*analysis.Analysis, error) {
	query := `
		SELECT
			id, source, source_url, file_path, file_name, file_type,
			resume_data, advice, advice_model, audio_path,
			analyzed_at, last_updated_at, created_at
		FROM analyses
		WHERE id = $1`

	row := &analysisRow{}
	err := r.db.GetContext(ctx, row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, analysis.ErrAnalysisNotFound().
				WithDetail("analysis_id", id)
		}
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeStorageFailed, err).
			WithDetail("analysis_id", id).
			WithDetail("operation", "get")
	}

	model, err := row.ToDomain()
	if err != nil {
		return nil, analysis.ErrInvalidData().
			WithDetail("analysis_id", id).
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	// Load embedding
	embedding, err := r.getEmbedding(ctx, id)
	if err == nil && embedding != nil {
		model.Embedding = *embedding
	}

	return model, nil
}

// List retrieves analyses with pagination, newest first
func (r *PostgresAnalysisRepository) List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[analysis.Analysis], error) {
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM analyses`)
	if err != nil {
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeStorageFailed, err).
			WithDetail("operation", "count_all")
	}

	offset := (pagination.Page - 1) * pagination.PageSize

	query := `
		SELECT
			id, source, source_url, file_path, file_name, file_type,
			resume_data, advice, advice_model, audio_path,
			analyzed_at, last_updated_at, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows := []analysisRow{}
	err = r.db.SelectContext(ctx, &rows, query, pagination.PageSize, offset)
	if err != nil {
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeStorageFailed, err).
			WithDetail("operation", "list_paginated").
			WithDetails(map[string]any{
				"page":      pagination.Page,
				"page_size": pagination.PageSize,
			})
	}

	analyses := make([]analysis.Analysis, len(rows))
	for i, row := range rows {
		model, err := row.ToDomain()
		if err != nil {
			return nil, analysis.ErrInvalidData().
				WithDetail("row_index", i).
				WithDetails(map[string]any{
					"error": err.Error(),
				})
		}
		analyses[i] = *model
	}

	return &kernel.Paginated[analysis.Analysis]{
		Items: analyses,
		Page: kernel.Page{
			Number: pagination.Page,
			Size:   pagination.PageSize,
			Total:  total,
			Pages:  (total + pagination.PageSize - 1) / pagination.PageSize,
		},
		Empty: len(analyses) == 0,
	}, nil
}

// Delete deletes an analysis; the embedding row cascades
func (r *PostgresAnalysisRepository) Delete(ctx context.Context, id kernel.AnalysisID) error {
	query := `DELETE FROM analyses WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return analysis.ErrRegistry.NewWithCause(analysis.CodeStorageFailed, err).
			WithDetail("analysis_id", id).
			WithDetail("operation", "delete")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return analysis.ErrRegistry.NewWithCause(analysis.CodeStorageFailed, err).
			WithDetail("analysis_id", id)
	}
	if rows == 0 {
		return analysis.ErrAnalysisNotFound().
			WithDetail("analysis_id", id)
	}

	return nil
}

// UpdateAudioPath records the stored advice audio location
func (r *PostgresAnalysisRepository) UpdateAudioPath(ctx context.Context, id kernel.AnalysisID, audioPath string) error {
	query := `UPDATE analyses SET audio_path = $1, last_updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, nullString(audioPath), id)
	if err != nil {
		return analysis.ErrRegistry.NewWithCause(analysis.CodeStorageFailed, err).
			WithDetail("analysis_id", id).
			WithDetail("operation", "update_audio_path")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return analysis.ErrRegistry.NewWithCause(analysis.CodeStorageFailed, err).
			WithDetail("analysis_id", id)
	}
	if rows == 0 {
		return analysis.ErrAnalysisNotFound().
			WithDetail("analysis_id", id)
	}

	return nil
}

// ============================================================================
// Semantic Search with pgvector
// ============================================================================

// SearchSimilar finds the analyses closest to the query vector by cosine distance
func (r *PostgresAnalysisRepository) SearchSimilar(ctx context.Context, queryVector []float32, topK int) ([]analysis.MatchResult, error) {
	query := `
		SELECT
			a.id, a.source, a.source_url, a.file_path, a.file_name, a.file_type,
			a.resume_data, a.advice, a.advice_model, a.audio_path,
			a.analyzed_at, a.last_updated_at, a.created_at,
			1 - (e.embedding <=> $1) AS similarity_score
		FROM analyses a
		INNER JOIN analysis_embeddings e ON a.id = e.analysis_id
		ORDER BY similarity_score DESC
		LIMIT $2`

	type matchRow struct {
		analysisRow
		SimilarityScore float64 `db:"similarity_score"`
	}

	rows := []matchRow{}
	err := r.db.SelectContext(ctx, &rows, query, float32SliceToVector(queryVector), topK)
	if err != nil {
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeSearchFailed, err).
			WithDetail("operation", "search_similar").
			WithDetail("top_k", topK)
	}

	results := make([]analysis.MatchResult, len(rows))
	for i, row := range rows {
		model, err := row.ToDomain()
		if err != nil {
			return nil, analysis.ErrInvalidData().
				WithDetail("row_index", i).
				WithDetails(map[string]any{
					"error": err.Error(),
				})
		}
		results[i] = analysis.MatchResult{
			Analysis:        *model,
			SimilarityScore: row.SimilarityScore,
		}
	}

	return results, nil
}

// ============================================================================
// Private Helper Methods
// ============================================================================

func (r *PostgresAnalysisRepository) upsertEmbedding(ctx context.Context, id kernel.AnalysisID, embedding analysis.AnalysisEmbedding) error {
	query := `
		INSERT INTO analysis_embeddings (
			analysis_id, embedding, model_used, embedding_dim, generated_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (analysis_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			model_used = EXCLUDED.model_used,
			embedding_dim = EXCLUDED.embedding_dim,
			generated_at = EXCLUDED.generated_at`

	_, err := r.db.ExecContext(ctx, query,
		id,
		float32SliceToVector(embedding.Vector),
		embedding.ModelUsed,
		embedding.EmbeddingDim,
		embedding.GeneratedAt,
	)
	if err != nil {
		logx.Errorf("Failed to upsert embedding for analysis %s: %v", id, err)
		return analysis.ErrEmbeddingFailed().
			WithDetail("analysis_id", id).
			WithDetail("operation", "upsert_embedding").
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	return nil
}

func (r *PostgresAnalysisRepository) getEmbedding(ctx context.Context, id kernel.AnalysisID) (*analysis.AnalysisEmbedding, error) {
	query := `
		SELECT
			embedding::text, model_used, embedding_dim, generated_at
		FROM analysis_embeddings
		WHERE analysis_id = $1`

	row := &embeddingRow{}
	err := r.db.GetContext(ctx, row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			// No embedding yet, not an error
			return nil, nil
		}
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeEmbeddingFailed, err).
			WithDetail("analysis_id", id).
			WithDetail("operation", "get_embedding")
	}

	embedding := row.ToDomain()
	return &embedding, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
