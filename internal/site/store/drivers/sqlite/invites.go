package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/paymall/site-api/internal/site/domain"
	"github.com/paymall/site-api/internal/site/store"
)

type invitesRepo struct {
	db DBTX
}

func (r *invitesRepo) CreateInviteCode(ctx context.Context, inv domain.InviteCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invite_codes (id, code, created_by)
		VALUES (?, ?, ?)`,
		inv.ID, inv.Code, inv.CreatedBy)
	return mapUnique(err)
}

func (r *invitesRepo) GetUnusedInviteCode(ctx context.Context, code string) (domain.InviteCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, used, used_by, used_at, created_by, created_at
		FROM invite_codes
		WHERE code = ? AND used = FALSE`, code)

	return scanInvite(row)
}

// ConsumeInviteCode flips used false->true. The used = FALSE guard makes the
// transition exactly-once: the loser of a race sees zero rows affected and
// gets ErrNotFound.
func (r *invitesRepo) ConsumeInviteCode(ctx context.Context, inviteID, usedByUserID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invite_codes
		SET used = TRUE, used_by = ?, used_at = ?
		WHERE id = ? AND used = FALSE`,
		usedByUserID, at, inviteID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitesRepo) ListInviteCodes(ctx context.Context) ([]domain.InviteCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, used, used_by, used_at, created_by, created_at
		FROM invite_codes
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InviteCode
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvite(row rowScanner) (domain.InviteCode, error) {
	var (
		id, code, createdBy string
		used                bool
		usedBy              sql.NullString
		usedAt              sql.NullTime
		createdAt           time.Time
	)
	if err := row.Scan(&id, &code, &used, &usedBy, &usedAt, &createdBy, &createdAt); err != nil {
		return domain.InviteCode{}, mapNotFound(err)
	}
	return mapInvite(id, code, used, usedBy, usedAt, createdBy, createdAt), nil
}
