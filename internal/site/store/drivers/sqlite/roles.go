package sqlite

import (
	"context"

	"github.com/paymall/site-api/internal/site/domain"
)

type rolesRepo struct {
	db DBTX
}

func (r *rolesRepo) GrantRole(ctx context.Context, g domain.RoleGrant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO role_grants (id, user_id, role)
		VALUES (?, ?, ?)`,
		g.ID, g.UserID, g.Role.String())
	return mapUnique(err)
}

func (r *rolesRepo) HasRole(ctx context.Context, userID string, role domain.Role) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM role_grants
		WHERE user_id = ? AND role = ?`, userID, role.String())

	var count int
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
