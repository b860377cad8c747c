package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studybuddy-backend/internal/models"
)

type EmbeddingRepo struct {
	pool *pgxpool.Pool
}

func NewEmbeddingRepo(pool *pgxpool.Pool) *EmbeddingRepo {
	return &EmbeddingRepo{pool: pool}
}

// CreateBatch replaces the embeddings for a file inside one transaction, so
// a re-index never leaves a mix of old and new chunks.
func (r *EmbeddingRepo) CreateBatch(ctx context.Context, fileID uuid.UUID, embeddings []models.Embedding) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM embeddings WHERE file_id = $1", fileID); err != nil {
			return err
		}

		for i := range embeddings {
			e := &embeddings[i]
			e.ID = uuid.New()
			e.FileID = fileID

			err := tx.QueryRow(ctx, `
				INSERT INTO embeddings (id, file_id, chunk_index, chunk_text, vector)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING created_at`,
				e.ID, e.FileID, e.ChunkIndex, e.ChunkText, e.Vector,
			).Scan(&e.CreatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *EmbeddingRepo) ListByFile(ctx context.Context, fileID uuid.UUID) ([]models.Embedding, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_id, chunk_index, chunk_text, vector, created_at
		FROM embeddings WHERE file_id = $1 ORDER BY chunk_index`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	embeddings := make([]models.Embedding, 0)
	for rows.Next() {
		var e models.Embedding
		if err := rows.Scan(&e.ID, &e.FileID, &e.ChunkIndex, &e.ChunkText, &e.Vector, &e.CreatedAt); err != nil {
			return nil, err
		}
		embeddings = append(embeddings, e)
	}
	return embeddings, rows.Err()
}

func (r *EmbeddingRepo) DeleteByFile(ctx context.Context, fileID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM embeddings WHERE file_id = $1", fileID)
	return err
}
