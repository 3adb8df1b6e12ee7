package service

import (
	"context"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/logger"
	"library-circulation-backend/internal/repository"
)

// BookUpdate is a descriptive patch plus the optional stock and status
// changes, which are routed through the availability state machine.
type BookUpdate struct {
	domain.BookPatch
	TotalCopies *int32
	Status      *domain.BookStatus
}

type bookService struct {
	store repository.Store
	sm    bookStateMachine
	opts  options
}

func NewBookService(store repository.Store, opts ...Option) BookService {
	return &bookService{store: store, opts: buildOptions(opts)}
}

// CreateBook stores a new book. The status is derived from the copy count;
// whatever the caller put in book.Status is overwritten.
func (s *bookService) CreateBook(ctx context.Context, book *domain.Book) error {
	logger.EnterMethod("bookService.CreateBook", "isbn", book.ISBN)

	if book.TotalCopies < 1 {
		return domain.InvalidOperation("total copies must be at least 1")
	}
	if book.AvailableCopies < 0 || book.AvailableCopies > book.TotalCopies {
		return domain.InvalidOperation("available copies must be between 0 and %d", book.TotalCopies)
	}
	if book.AvailableCopies == 0 {
		book.Status = domain.BookStatusBorrowed
	} else {
		book.Status = domain.BookStatusAvailable
	}

	if err := s.store.Repositories().Books.Create(ctx, book); err != nil {
		logger.ExitMethodWithError("bookService.CreateBook", err, "isbn", book.ISBN)
		return err
	}
	logger.ExitMethod("bookService.CreateBook", "bookID", book.ID)
	return nil
}

func (s *bookService) GetBook(ctx context.Context, id int32) (*domain.Book, error) {
	return s.store.Repositories().Books.GetByID(ctx, id)
}

func (s *bookService) UpdateBook(ctx context.Context, id int32, update BookUpdate) (*domain.Book, error) {
	logger.EnterMethod("bookService.UpdateBook", "bookID", id)

	var book *domain.Book
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Books.Update(ctx, id, update.BookPatch)
		if err != nil {
			return err
		}
		if update.TotalCopies != nil && *update.TotalCopies != b.TotalCopies {
			if b, err = s.sm.SetTotalCopies(ctx, repos.Books, id, *update.TotalCopies); err != nil {
				return err
			}
		}
		if update.Status != nil && *update.Status != b.Status {
			if b, err = s.sm.SetStatus(ctx, repos.Books, id, *update.Status); err != nil {
				return err
			}
		}
		book = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookService.UpdateBook", err, "bookID", id)
		return nil, err
	}
	logger.ExitMethod("bookService.UpdateBook", "bookID", id)
	return book, nil
}

func (s *bookService) DeleteBook(ctx context.Context, id int32) error {
	return s.store.Repositories().Books.Delete(ctx, id)
}

func (s *bookService) ListBooks(ctx context.Context, filter repository.BookFilter) ([]domain.Book, int, error) {
	repos := s.store.Repositories()
	books, err := repos.Books.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := repos.Books.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (s *bookService) ListAvailableBooks(ctx context.Context) ([]domain.Book, error) {
	return s.store.Repositories().Books.List(ctx, repository.BookFilter{AvailableOnly: true})
}

func (s *bookService) UpdateBookStatus(ctx context.Context, id int32, status domain.BookStatus) (*domain.Book, error) {
	logger.EnterMethod("bookService.UpdateBookStatus", "bookID", id, "status", status)

	var book *domain.Book
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := s.sm.SetStatus(ctx, repos.Books, id, status)
		book = b
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("bookService.UpdateBookStatus", err, "bookID", id)
		return nil, err
	}
	logger.ExitMethod("bookService.UpdateBookStatus", "bookID", id, "status", book.Status)
	return book, nil
}
