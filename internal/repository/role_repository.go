package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/ecommerce-auth/internal/model"
)

// RoleRepo provides read access to the roles reference table.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// GetByName fetches a role by its unique name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name FROM roles WHERE name=? LIMIT 1", name).Scan(&role.ID, &role.Name)
	if err == sql.ErrNoRows {
		return model.Role{}, ErrNotFound
	}
	if err != nil {
		return model.Role{}, err
	}
	return role, nil
}
