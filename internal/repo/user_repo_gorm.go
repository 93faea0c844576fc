package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library-api/internal/core/database"
	"library-api/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

// Save inserts u when it has no id (roles included) and otherwise updates
// its columns, leaving role links alone.
func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	var err error
	if u.ID == 0 {
		err = r.db.WithContext(ctx).Create(u).Error
	} else {
		err = r.db.WithContext(ctx).Omit(clause.Associations).Save(u).Error
	}
	return translate(err)
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Preload("Roles").First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Preload("Roles").First(&u, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Preload("Roles").Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteByID removes the user, its role links, and releases any books it holds.
func (r *UserRepo) DeleteByID(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Book{}).Where("borrower_id = ?", id).Update("borrower_id", nil).Error; err != nil {
			return err
		}
		return tx.Select("Roles").Delete(&domain.User{ID: id}).Error
	})
}

func (r *UserRepo) AddRole(ctx context.Context, userID int64, role *domain.Role) error {
	u := &domain.User{ID: userID}
	return r.db.WithContext(ctx).Model(u).Association("Roles").Append(role)
}

func translate(err error) error {
	if database.IsDuplicateKey(err) {
		return errors.Join(domain.ErrAlreadyExists, err)
	}
	return err
}
