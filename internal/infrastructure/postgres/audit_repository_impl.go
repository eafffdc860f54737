package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rizkypratama/authguard/internal/domain/entity"
	"github.com/rizkypratama/authguard/internal/domain/repository"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, e *entity.AuditEntry) error {
	md, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO audit_log (user_id, email, action, ip, user_agent, metadata)
		VALUES (NULLIF($1, '')::uuid, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING id, created_at
	`, e.UserID, e.Email, e.Action, e.IP, e.UserAgent, md)
	return row.Scan(&e.ID, &e.CreatedAt)
}

func (r *AuditRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*entity.AuditEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, COALESCE(user_id::text, ''), COALESCE(email, ''), action,
		       COALESCE(ip, ''), COALESCE(user_agent, ''), metadata, created_at
		FROM audit_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.AuditEntry
	for rows.Next() {
		e := &entity.AuditEntry{}
		var md []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Email, &e.Action, &e.IP, &e.UserAgent, &md, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(md) > 0 {
			_ = json.Unmarshal(md, &e.Metadata)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
