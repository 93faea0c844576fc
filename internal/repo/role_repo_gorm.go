package repo

import (
	"context"

	"gorm.io/gorm"

	"library-api/internal/domain"
)

type RoleRepo struct{ db *gorm.DB }

func NewRoleRepo(db *gorm.DB) *RoleRepo { return &RoleRepo{db: db} }

var _ domain.RoleRepository = (*RoleRepo)(nil)

func (r *RoleRepo) Ensure(ctx context.Context, name string) (*domain.Role, error) {
	role := domain.Role{Name: name}
	if err := r.db.WithContext(ctx).Where(domain.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
