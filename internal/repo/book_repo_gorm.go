package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library-api/internal/domain"
)

type BookRepo struct{ db *gorm.DB }

func NewBookRepo(db *gorm.DB) *BookRepo { return &BookRepo{db: db} }

var _ domain.BookRepository = (*BookRepo)(nil)

func (r *BookRepo) Save(ctx context.Context, b *domain.Book) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error)
}

func (r *BookRepo) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	var b domain.Book
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepo) FindAll(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	if err := r.db.WithContext(ctx).Order("created_at").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *BookRepo) DeleteByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Book{}).Error
}

// AssignBorrower is a single conditional UPDATE, so two concurrent borrows
// of the same book cannot both succeed.
func (r *BookRepo) AssignBorrower(ctx context.Context, bookID string, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Book{}).
		Where("id = ? AND borrower_id IS NULL", bookID).
		Update("borrower_id", userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *BookRepo) ClearBorrower(ctx context.Context, bookID string) error {
	return r.db.WithContext(ctx).Model(&domain.Book{}).
		Where("id = ?", bookID).
		Update("borrower_id", nil).Error
}
