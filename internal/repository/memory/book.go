package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository"
)

type bookRepository struct {
	a   access
	now func() time.Time
}

func isbnTaken(st *state, isbn string, except int32) bool {
	for id, b := range st.books {
		if id != except && b.ISBN == isbn {
			return true
		}
	}
	return false
}

func (r *bookRepository) Create(_ context.Context, b *domain.Book) error {
	return r.a.write(func(st *state) error {
		if isbnTaken(st, b.ISBN, 0) {
			return domain.Conflict("isbn already exists")
		}
		if b.TotalCopies < 0 || b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
			return domain.InvalidOperation("constraint books_copies_check violated")
		}
		st.nextBookID++
		now := r.now()
		b.ID = st.nextBookID
		b.CreatedAt, b.UpdatedAt = now, now
		st.books[b.ID] = *b
		return nil
	})
}

func (r *bookRepository) GetByID(_ context.Context, id int32) (*domain.Book, error) {
	var out domain.Book
	err := r.a.read(func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return domain.NotFound("book", id)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *bookRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error) {
	return r.GetByID(ctx, id)
}

func (r *bookRepository) Update(_ context.Context, id int32, patch domain.BookPatch) (*domain.Book, error) {
	var out domain.Book
	err := r.a.write(func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return domain.NotFound("book", id)
		}
		if patch.Empty() {
			out = b
			return nil
		}
		if patch.ISBN != nil {
			if isbnTaken(st, *patch.ISBN, id) {
				return domain.Conflict("isbn already exists")
			}
			b.ISBN = *patch.ISBN
		}
		if patch.Title != nil {
			b.Title = *patch.Title
		}
		if patch.Author != nil {
			b.Author = *patch.Author
		}
		if patch.Category != nil {
			b.Category = *patch.Category
		}
		b.UpdatedAt = r.now()
		st.books[id] = b
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *bookRepository) UpdateAvailability(_ context.Context, id int32, a domain.BookAvailability) error {
	return r.a.write(func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return domain.NotFound("book", id)
		}
		if a.TotalCopies < 0 || a.AvailableCopies < 0 || a.AvailableCopies > a.TotalCopies {
			return domain.InvalidOperation("constraint books_copies_check violated")
		}
		b.TotalCopies, b.AvailableCopies, b.Status = a.TotalCopies, a.AvailableCopies, a.Status
		b.UpdatedAt = r.now()
		st.books[id] = b
		return nil
	})
}

func (r *bookRepository) Delete(_ context.Context, id int32) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.books[id]; !ok {
			return domain.NotFound("book", id)
		}
		for _, t := range st.transactions {
			if t.BookID == id {
				return domain.Conflict("book is referenced by other records")
			}
		}
		delete(st.books, id)
		return nil
	})
}

func bookMatches(b domain.Book, f repository.BookFilter) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Category != "" && b.Category != f.Category {
		return false
	}
	if f.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(f.Author)) {
		return false
	}
	if f.AvailableOnly && b.AvailableCopies <= 0 {
		return false
	}
	return true
}

func (r *bookRepository) List(_ context.Context, f repository.BookFilter) ([]domain.Book, error) {
	books := []domain.Book{}
	err := r.a.read(func(st *state) error {
		for _, b := range st.books {
			if bookMatches(b, f) {
				books = append(books, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(books, func(i, j int) bool {
		if books[i].Title != books[j].Title {
			return books[i].Title < books[j].Title
		}
		return books[i].ID < books[j].ID
	})
	return page(books, f.Limit, f.Offset), nil
}

func (r *bookRepository) Count(_ context.Context, f repository.BookFilter) (int, error) {
	n := 0
	err := r.a.read(func(st *state) error {
		for _, b := range st.books {
			if bookMatches(b, f) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
