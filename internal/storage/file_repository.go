package storage

import (
	"context"

	"github.com/gobarber/gobarber/internal/model"
	"github.com/gobarber/gobarber/libs/db"
)

type FileRepository struct {
	pool *db.Pool
}

func NewFileRepository(pool *db.Pool) *FileRepository {
	return &FileRepository{pool: pool}
}

func (r *FileRepository) Create(ctx context.Context, file *model.File) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO files (name, path)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, file.Name, file.Path).Scan(&file.ID, &file.CreatedAt)
}

func (r *FileRepository) GetByID(ctx context.Context, id int64) (model.File, error) {
	var f model.File
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, path, created_at
		FROM files
		WHERE id = $1
	`, id).Scan(&f.ID, &f.Name, &f.Path, &f.CreatedAt)
	if err != nil {
		return model.File{}, err
	}
	return f, nil
}
