// Package service holds the lending, account and authentication use cases.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"library-api/internal/domain"
	"library-api/pkg/utils"
)

// BookView is the public projection of a book.
type BookView struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ISBN       string `json:"isbn"`
	Borrowed   bool   `json:"borrowed"`
	BorrowerID *int64 `json:"borrowerId,omitempty"`
}

func toBookView(b *domain.Book) BookView {
	return BookView{ID: b.ID, Title: b.Title, ISBN: b.ISBN, Borrowed: b.IsBorrowed(), BorrowerID: b.BorrowerID}
}

// UserFinder is the slice of the user store the lending service needs.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

type BookService struct {
	books domain.BookRepository
	users UserFinder
	log   *zap.Logger
}

func NewBookService(books domain.BookRepository, users UserFinder, l *zap.Logger) *BookService {
	if l == nil {
		l = zap.NewNop()
	}
	return &BookService{books: books, users: users, log: l}
}

func (s *BookService) Save(ctx context.Context, title, isbn string) (*domain.Book, error) {
	b := &domain.Book{ID: utils.NewID(), Title: title, ISBN: isbn}
	if err := s.books.Save(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("book created", zap.String("book_id", b.ID))
	return b, nil
}

func (s *BookService) DeleteByID(ctx context.Context, id string) error {
	if _, err := s.mustFindBook(ctx, id); err != nil {
		return err
	}
	return s.books.DeleteByID(ctx, id)
}

func (s *BookService) ShowByID(ctx context.Context, id string) (BookView, error) {
	b, err := s.mustFindBook(ctx, id)
	if err != nil {
		return BookView{}, err
	}
	return toBookView(b), nil
}

func (s *BookService) FindAll(ctx context.Context) ([]BookView, error) {
	books, err := s.books.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BookView, 0, len(books))
	for i := range books {
		out = append(out, toBookView(&books[i]))
	}
	return out, nil
}

// BorrowBook lends bookID to userID. Nothing is written unless both exist
// and the book is on the shelf.
func (s *BookService) BorrowBook(ctx context.Context, bookID string, userID int64) (err error) {
	defer func() { borrowTotal.WithLabelValues(outcome(err)).Inc() }()

	b, err := s.mustFindBook(ctx, bookID)
	if err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("user %d: %w", userID, domain.ErrElementNotFound)
	}
	if b.IsBorrowed() {
		return fmt.Errorf("book %s: %w", bookID, domain.ErrBookNotAvailable)
	}
	ok, err := s.books.AssignBorrower(ctx, bookID, userID)
	if err != nil {
		return err
	}
	if !ok {
		// lost the race against a concurrent borrow, or the book vanished
		return fmt.Errorf("book %s: %w", bookID, domain.ErrBookNotAvailable)
	}
	s.log.Info("book borrowed", zap.String("book_id", bookID), zap.Int64("user_id", userID))
	return nil
}

// ReturnBook puts bookID back on the shelf. Returning a book nobody holds succeeds.
func (s *BookService) ReturnBook(ctx context.Context, bookID string) (err error) {
	defer func() { returnTotal.WithLabelValues(outcome(err)).Inc() }()

	if _, err = s.mustFindBook(ctx, bookID); err != nil {
		return err
	}
	if err = s.books.ClearBorrower(ctx, bookID); err != nil {
		return err
	}
	s.log.Info("book returned", zap.String("book_id", bookID))
	return nil
}

func (s *BookService) mustFindBook(ctx context.Context, id string) (*domain.Book, error) {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("book %s: %w", id, domain.ErrElementNotFound)
	}
	return b, nil
}

func isNotFound(err error) bool     { return errors.Is(err, domain.ErrElementNotFound) }
func isNotAvailable(err error) bool { return errors.Is(err, domain.ErrBookNotAvailable) }
