package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"edushare-server/internal/model"
)

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

const videoColumns = `id, owner_id, title, description, url, category, approved, COALESCE(approved_by::text, ''), created_at, updated_at`

func scanVideo(row pgx.Row) (model.Video, error) {
	var v model.Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.URL,
		&v.Category, &v.Approved, &v.ApprovedBy, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *VideoRepository) Create(ctx context.Context, v model.Video) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO videos (id, owner_id, title, description, url, category, approved, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		v.ID, v.OwnerID, v.Title, v.Description, v.URL, v.Category, v.Approved, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	return nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (model.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Video{}, model.ErrVideoNotFound
	}
	if err != nil {
		return model.Video{}, fmt.Errorf("find video by id: %w", err)
	}
	return v, nil
}

// OwnerID resolves just the owning user of a video, for ownership guards.
func (r *VideoRepository) OwnerID(ctx context.Context, id string) (string, error) {
	var ownerID string
	err := r.pool.QueryRow(ctx, `SELECT owner_id FROM videos WHERE id = $1`, id).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", model.ErrVideoNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve video owner: %w", err)
	}
	return ownerID, nil
}

func (r *VideoRepository) List(ctx context.Context, approvedOnly bool) ([]model.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos`
	if approvedOnly {
		query += ` WHERE approved = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	videos := make([]model.Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *VideoRepository) Update(ctx context.Context, v model.Video) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE videos SET title = $2, description = $3, category = $4, updated_at = $5 WHERE id = $1`,
		v.ID, v.Title, v.Description, v.Category, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) Approve(ctx context.Context, id string, approverID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE videos SET approved = TRUE, approved_by = $2, updated_at = $3 WHERE id = $1`,
		id, approverID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("approve video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVideoNotFound
	}
	return nil
}
