package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/feedback-api/internal/models"
)

// AdminRepository manages persistence for administrator accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByUsername fetches an admin by exact username match.
// Returns sql.ErrNoRows when no such admin exists.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	const query = `SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, username); err != nil {
		return nil, err
	}
	return &admin, nil
}
