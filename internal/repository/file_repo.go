package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studybuddy-backend/internal/models"
)

type FileRepo struct {
	pool *pgxpool.Pool
}

func NewFileRepo(pool *pgxpool.Pool) *FileRepo {
	return &FileRepo{pool: pool}
}

func (r *FileRepo) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, user_id, filename, extension, size_bytes, content_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	file.ID = uuid.New()

	return r.pool.QueryRow(ctx, query,
		file.ID, file.UserID, file.Filename, file.Extension, file.SizeBytes, file.ContentType,
	).Scan(&file.CreatedAt)
}

func (r *FileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	file := &models.File{}
	query := `SELECT id, user_id, filename, extension, size_bytes, content_type, created_at
		FROM files WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&file.ID, &file.UserID, &file.Filename, &file.Extension,
		&file.SizeBytes, &file.ContentType, &file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// GetByName looks up a user's file by its original filename. Filenames are
// unique per user.
func (r *FileRepo) GetByName(ctx context.Context, userID uuid.UUID, filename string) (*models.File, error) {
	file := &models.File{}
	query := `SELECT id, user_id, filename, extension, size_bytes, content_type, created_at
		FROM files WHERE user_id = $1 AND filename = $2`

	err := r.pool.QueryRow(ctx, query, userID, filename).Scan(
		&file.ID, &file.UserID, &file.Filename, &file.Extension,
		&file.SizeBytes, &file.ContentType, &file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (r *FileRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.File, error) {
	query := `SELECT id, user_id, filename, extension, size_bytes, content_type, created_at
		FROM files WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]models.File, 0)
	for rows.Next() {
		var f models.File
		if err := rows.Scan(
			&f.ID, &f.UserID, &f.Filename, &f.Extension,
			&f.SizeBytes, &f.ContentType, &f.CreatedAt,
		); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *FileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM files WHERE id = $1", id)
	return err
}
