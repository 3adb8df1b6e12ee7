package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/logger"
	"library-circulation-backend/internal/repository"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type rowScanner interface {
	Scan(dest ...any) error
}

var bookFields = []string{"id", "isbn", "title", "author", "category", "total_copies", "available_copies", "status", "created_at", "updated_at"}

var bookColumns = strings.Join(bookFields, ", ")

type bookRepository struct {
	db querier
}

func NewBookRepository(db querier) repository.BookRepository {
	return &bookRepository{db: db}
}

func scanBook(row rowScanner) (*domain.Book, error) {
	b := &domain.Book{}
	err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Category, &b.TotalCopies, &b.AvailableCopies, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `INSERT INTO books (isbn, title, author, category, total_copies, available_copies, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now().UTC()
	logger.DatabaseCall("INSERT", "books", "isbn", b.ISBN)
	err := r.db.QueryRowContext(ctx, query, b.ISBN, b.Title, b.Author, b.Category, b.TotalCopies, b.AvailableCopies, b.Status, now, now).Scan(&b.ID)
	logger.DatabaseResult("INSERT", 1, err, "bookID", b.ID)
	if err != nil {
		return mapError(err, "book", 0)
	}
	b.CreatedAt, b.UpdatedAt = now, now
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	b, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "book", id)
	}
	return b, nil
}

func (r *bookRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 FOR UPDATE`
	b, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "book", id)
	}
	return b, nil
}

func (r *bookRepository) Update(ctx context.Context, id int32, patch domain.BookPatch) (*domain.Book, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	record := goqu.Record{"updated_at": time.Now().UTC()}
	if patch.ISBN != nil {
		record["isbn"] = *patch.ISBN
	}
	if patch.Title != nil {
		record["title"] = *patch.Title
	}
	if patch.Author != nil {
		record["author"] = *patch.Author
	}
	if patch.Category != nil {
		record["category"] = *patch.Category
	}

	query, args, err := dialect().Update("books").Prepared(true).
		Set(record).
		Where(goqu.C("id").Eq(id)).
		Returning(columns(bookFields)...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build book update: %w", err)
	}

	logger.DatabaseCall("UPDATE", "books", "bookID", id)
	b, err := scanBook(r.db.QueryRowContext(ctx, query, args...))
	logger.DatabaseResult("UPDATE", 1, err, "bookID", id)
	if err != nil {
		return nil, mapError(err, "book", id)
	}
	return b, nil
}

func (r *bookRepository) UpdateAvailability(ctx context.Context, id int32, a domain.BookAvailability) error {
	query := `UPDATE books SET total_copies = $1, available_copies = $2, status = $3, updated_at = $4 WHERE id = $5`
	logger.DatabaseCall("UPDATE", "books", "bookID", id, "availableCopies", a.AvailableCopies, "status", a.Status)
	res, err := r.db.ExecContext(ctx, query, a.TotalCopies, a.AvailableCopies, a.Status, time.Now().UTC(), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "bookID", id)
		return mapError(err, "book", id)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "bookID", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("book", id)
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "book", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("book", id)
	}
	return nil
}

func bookWhere(f repository.BookFilter) []exp.Expression {
	var where []exp.Expression
	if f.Status != "" {
		where = append(where, goqu.C("status").Eq(string(f.Status)))
	}
	if f.Category != "" {
		where = append(where, goqu.C("category").Eq(f.Category))
	}
	if f.Author != "" {
		where = append(where, goqu.C("author").ILike("%"+f.Author+"%"))
	}
	if f.AvailableOnly {
		where = append(where, goqu.C("available_copies").Gt(0))
	}
	return where
}

func (r *bookRepository) List(ctx context.Context, f repository.BookFilter) ([]domain.Book, error) {
	ds := dialect().From("books").Prepared(true).
		Select(columns(bookFields)...).
		Where(bookWhere(f)...).
		Order(goqu.C("title").Asc(), goqu.C("id").Asc())
	ds = applyPage(ds, f.Limit, f.Offset)

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build book list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

func (r *bookRepository) Count(ctx context.Context, f repository.BookFilter) (int, error) {
	query, args, err := dialect().From("books").Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(bookWhere(f)...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build book count query: %w", err)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
