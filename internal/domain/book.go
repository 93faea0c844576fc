package domain

import (
	"context"
	"time"
)

type Book struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	ISBN       string    `gorm:"size:32;not null" json:"isbn"`
	BorrowerID *int64    `gorm:"index" json:"borrowerId,omitempty"`
	Borrower   *User     `gorm:"foreignKey:BorrowerID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Book) TableName() string { return "books" }

func (b *Book) IsBorrowed() bool { return b.BorrowerID != nil }

// BookRepository finders return (nil, nil) when no row matches.
type BookRepository interface {
	Save(ctx context.Context, b *Book) error
	FindByID(ctx context.Context, id string) (*Book, error)
	DeleteByID(ctx context.Context, id string) error
	FindAll(ctx context.Context) ([]Book, error)
	// AssignBorrower sets the borrower only while the book has none.
	// It reports false when another borrower already holds the book.
	AssignBorrower(ctx context.Context, bookID string, userID int64) (bool, error)
	ClearBorrower(ctx context.Context, bookID string) error
}
