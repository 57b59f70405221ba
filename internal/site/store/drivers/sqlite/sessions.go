package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/paymall/site-api/internal/site/domain"
)

type sessionsRepo struct {
	db DBTX
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES (?, ?, ?)`,
		s.ID, s.UserID, s.ExpiresAt)
	return mapUnique(err)
}

func (r *sessionsRepo) GetSessionByID(ctx context.Context, id string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, expires_at, revoked_at, created_at
		FROM sessions WHERE id = ?`, id)

	var (
		s         domain.Session
		revokedAt sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &revokedAt, &s.CreatedAt); err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.RevokedAt = mapNullTimePtr(revokedAt)
	return s, nil
}

func (r *sessionsRepo) ListSessionsByUserID(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, expires_at, revoked_at, created_at
		FROM sessions WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var (
			s         domain.Session
			revokedAt sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &revokedAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.RevokedAt = mapNullTimePtr(revokedAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = ?
		WHERE id = ? AND revoked_at IS NULL`,
		time.Now().UTC(), id)
	return err
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	return err
}
