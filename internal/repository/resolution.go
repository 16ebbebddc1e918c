package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type resolutionRepository struct {
	pool *pgxpool.Pool
}

// NewResolutionRepository creates a ResolutionRepository backed by Postgres.
func NewResolutionRepository(pool *pgxpool.Pool) ResolutionRepository {
	return &resolutionRepository{pool: pool}
}

func (r *resolutionRepository) Create(ctx context.Context, res *Resolution) error {
	const q = `
		INSERT INTO resolutions (id, identifier, kind, tier, score, notice_id, found, duration_ms, trace, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, q,
		res.ID,
		res.Identifier,
		res.Kind,
		res.Tier,
		res.Score,
		res.NoticeID,
		res.Found,
		res.DurationMS,
		res.Trace,
	).Scan(&res.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting resolution: %w", err)
	}
	return nil
}

func (r *resolutionRepository) GetByID(ctx context.Context, id int64) (*Resolution, error) {
	const q = `
		SELECT id, identifier, kind, tier, score, notice_id, found, duration_ms, trace, created_at
		FROM resolutions
		WHERE id = $1`

	res, err := scanResolution(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *resolutionRepository) ListRecent(ctx context.Context, limit int) ([]Resolution, error) {
	const q = `
		SELECT id, identifier, kind, tier, score, notice_id, found, duration_ms, trace, created_at
		FROM resolutions
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("listing resolutions: %w", err)
	}
	defer rows.Close()

	var out []Resolution
	for rows.Next() {
		res, err := scanResolution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func scanResolution(row pgx.Row) (*Resolution, error) {
	var res Resolution
	err := row.Scan(
		&res.ID,
		&res.Identifier,
		&res.Kind,
		&res.Tier,
		&res.Score,
		&res.NoticeID,
		&res.Found,
		&res.DurationMS,
		&res.Trace,
		&res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
