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

var fineFields = []string{"id", "member_id", "transaction_id", "amount_cents", "paid_at", "created_at"}

var fineColumns = strings.Join(fineFields, ", ")

type fineRepository struct {
	db querier
}

func NewFineRepository(db querier) repository.FineRepository {
	return &fineRepository{db: db}
}

func scanFine(row rowScanner) (*domain.Fine, error) {
	f := &domain.Fine{}
	if err := row.Scan(&f.ID, &f.MemberID, &f.TransactionID, &f.AmountCents, &f.PaidAt, &f.CreatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *fineRepository) Create(ctx context.Context, f *domain.Fine) error {
	query := `INSERT INTO fines (member_id, transaction_id, amount_cents, created_at)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	now := time.Now().UTC()
	logger.DatabaseCall("INSERT", "fines", "memberID", f.MemberID, "transactionID", f.TransactionID, "amountCents", f.AmountCents)
	err := r.db.QueryRowContext(ctx, query, f.MemberID, f.TransactionID, f.AmountCents, now).Scan(&f.ID)
	logger.DatabaseResult("INSERT", 1, err, "fineID", f.ID)
	if err != nil {
		return mapError(err, "fine", 0)
	}
	f.CreatedAt = now
	return nil
}

func (r *fineRepository) GetByID(ctx context.Context, id int32) (*domain.Fine, error) {
	f, err := scanFine(r.db.QueryRowContext(ctx, `SELECT `+fineColumns+` FROM fines WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "fine", id)
	}
	return f, nil
}

func (r *fineRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Fine, error) {
	f, err := scanFine(r.db.QueryRowContext(ctx, `SELECT `+fineColumns+` FROM fines WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(err, "fine", id)
	}
	return f, nil
}

func (r *fineRepository) Update(ctx context.Context, id int32, patch domain.FinePatch) (*domain.Fine, error) {
	if patch.PaidAt == nil {
		return r.GetByID(ctx, id)
	}
	query := `UPDATE fines SET paid_at = $1 WHERE id = $2 RETURNING ` + fineColumns
	logger.DatabaseCall("UPDATE", "fines", "fineID", id)
	f, err := scanFine(r.db.QueryRowContext(ctx, query, *patch.PaidAt, id))
	logger.DatabaseResult("UPDATE", 1, err, "fineID", id)
	if err != nil {
		return nil, mapError(err, "fine", id)
	}
	return f, nil
}

func fineWhere(f repository.FineFilter) []exp.Expression {
	var where []exp.Expression
	if f.MemberID != 0 {
		where = append(where, goqu.C("member_id").Eq(f.MemberID))
	}
	if f.TransactionID != 0 {
		where = append(where, goqu.C("transaction_id").Eq(f.TransactionID))
	}
	if f.UnpaidOnly {
		where = append(where, goqu.C("paid_at").IsNull())
	}
	return where
}

func (r *fineRepository) List(ctx context.Context, f repository.FineFilter) ([]domain.Fine, error) {
	query, args, err := dialect().From("fines").Prepared(true).
		Select(columns(fineFields)...).
		Where(fineWhere(f)...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build fine list query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fines := []domain.Fine{}
	for rows.Next() {
		fn, err := scanFine(rows)
		if err != nil {
			return nil, err
		}
		fines = append(fines, *fn)
	}
	return fines, rows.Err()
}

func (r *fineRepository) Count(ctx context.Context, f repository.FineFilter) (int, error) {
	query, args, err := dialect().From("fines").Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(fineWhere(f)...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build fine count query: %w", err)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
