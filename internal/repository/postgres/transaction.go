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

var transactionFields = []string{"id", "book_id", "member_id", "borrowed_at", "due_date", "returned_at", "status", "created_at", "updated_at"}

var transactionColumns = strings.Join(transactionFields, ", ")

type transactionRepository struct {
	db querier
}

func NewTransactionRepository(db querier) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func transactionDest(t *domain.Transaction) []any {
	return []any{&t.ID, &t.BookID, &t.MemberID, &t.BorrowedAt, &t.DueDate, &t.ReturnedAt, &t.Status, &t.CreatedAt, &t.UpdatedAt}
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	if err := row.Scan(transactionDest(t)...); err != nil {
		return nil, err
	}
	return t, nil
}

func scanTransactionDetails(row rowScanner) (*domain.TransactionDetails, error) {
	d := &domain.TransactionDetails{}
	dest := transactionDest(&d.Transaction)
	b, m := &d.Book, &d.Member
	dest = append(dest, &b.ID, &b.ISBN, &b.Title, &b.Author, &b.Category, &b.TotalCopies, &b.AvailableCopies, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	dest = append(dest, &m.ID, &m.Name, &m.Email, &m.MembershipNumber, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (book_id, member_id, borrowed_at, due_date, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now().UTC()
	logger.DatabaseCall("INSERT", "transactions", "bookID", t.BookID, "memberID", t.MemberID)
	err := r.db.QueryRowContext(ctx, query, t.BookID, t.MemberID, t.BorrowedAt, t.DueDate, t.Status, now, now).Scan(&t.ID)
	logger.DatabaseResult("INSERT", 1, err, "transactionID", t.ID)
	if err != nil {
		return mapError(err, "transaction", 0)
	}
	t.CreatedAt, t.UpdatedAt = now, now
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "transaction", id)
	}
	return t, nil
}

func (r *transactionRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(err, "transaction", id)
	}
	return t, nil
}

func detailsSelect() *goqu.SelectDataset {
	cols := qualified("t", transactionFields)
	cols = append(cols, qualified("b", bookFields)...)
	cols = append(cols, qualified("m", memberFields)...)
	return dialect().From(goqu.T("transactions").As("t")).Prepared(true).
		Select(cols...).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("t.book_id")))).
		Join(goqu.T("members").As("m"), goqu.On(goqu.I("m.id").Eq(goqu.I("t.member_id"))))
}

func (r *transactionRepository) GetDetails(ctx context.Context, id int32) (*domain.TransactionDetails, error) {
	query, args, err := detailsSelect().Where(goqu.I("t.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction details query: %w", err)
	}
	d, err := scanTransactionDetails(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "transaction", id)
	}
	return d, nil
}

func (r *transactionRepository) Update(ctx context.Context, id int32, patch domain.TransactionPatch) (*domain.Transaction, error) {
	record := goqu.Record{"updated_at": time.Now().UTC()}
	if patch.Status != nil {
		record["status"] = string(*patch.Status)
	}
	if patch.ReturnedAt != nil {
		record["returned_at"] = *patch.ReturnedAt
	}

	query, args, err := dialect().Update("transactions").Prepared(true).
		Set(record).
		Where(goqu.C("id").Eq(id)).
		Returning(columns(transactionFields)...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction update: %w", err)
	}

	logger.DatabaseCall("UPDATE", "transactions", "transactionID", id)
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, args...))
	logger.DatabaseResult("UPDATE", 1, err, "transactionID", id)
	if err != nil {
		return nil, mapError(err, "transaction", id)
	}
	return t, nil
}

func transactionWhere(f repository.TransactionFilter) []exp.Expression {
	var where []exp.Expression
	if f.MemberID != 0 {
		where = append(where, goqu.I("t.member_id").Eq(f.MemberID))
	}
	if f.BookID != 0 {
		where = append(where, goqu.I("t.book_id").Eq(f.BookID))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, goqu.I("t.status").In(statuses))
	}
	if f.DueBefore != nil {
		where = append(where, goqu.I("t.due_date").Lt(*f.DueBefore))
	}
	if f.Unreturned {
		where = append(where, goqu.I("t.returned_at").IsNull())
	}
	return where
}

func transactionOrder(f repository.TransactionFilter) []exp.OrderedExpression {
	if f.OrderByDue {
		return []exp.OrderedExpression{goqu.I("t.due_date").Asc(), goqu.I("t.id").Asc()}
	}
	return []exp.OrderedExpression{goqu.I("t.borrowed_at").Desc(), goqu.I("t.id").Desc()}
}

func (r *transactionRepository) List(ctx context.Context, f repository.TransactionFilter) ([]domain.Transaction, error) {
	query, args, err := dialect().From(goqu.T("transactions").As("t")).Prepared(true).
		Select(qualified("t", transactionFields)...).
		Where(transactionWhere(f)...).
		Order(transactionOrder(f)...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction list query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

func (r *transactionRepository) ListDetails(ctx context.Context, f repository.TransactionFilter) ([]domain.TransactionDetails, error) {
	query, args, err := detailsSelect().
		Where(transactionWhere(f)...).
		Order(transactionOrder(f)...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction details list query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.TransactionDetails{}
	for rows.Next() {
		d, err := scanTransactionDetails(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *transactionRepository) Count(ctx context.Context, f repository.TransactionFilter) (int, error) {
	query, args, err := dialect().From(goqu.T("transactions").As("t")).Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(transactionWhere(f)...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build transaction count query: %w", err)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkOverdue relies on the UPDATE re-checking its WHERE clause against rows
// that a concurrent return locked and then committed, so those rows are
// skipped rather than flipped back from returned.
func (r *transactionRepository) MarkOverdue(ctx context.Context, asOf time.Time) ([]domain.Transaction, error) {
	query := `UPDATE transactions
	          SET status = $1, updated_at = $2
	          WHERE status = $3 AND returned_at IS NULL AND due_date < $2
	          RETURNING ` + transactionColumns

	logger.DatabaseCall("UPDATE", "transactions", "operation", "mark_overdue", "asOf", asOf)
	rows, err := r.db.QueryContext(ctx, query, domain.TransactionStatusOverdue, asOf, domain.TransactionStatusActive)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return nil, err
	}
	defer rows.Close()

	marked := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		marked = append(marked, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("UPDATE", int64(len(marked)), nil)
	return marked, nil
}
