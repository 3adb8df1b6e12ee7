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

var memberFields = []string{"id", "name", "email", "membership_number", "status", "created_at", "updated_at"}

var memberColumns = strings.Join(memberFields, ", ")

type memberRepository struct {
	db querier
}

func NewMemberRepository(db querier) repository.MemberRepository {
	return &memberRepository{db: db}
}

func scanMember(row rowScanner) (*domain.Member, error) {
	m := &domain.Member{}
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.MembershipNumber, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *memberRepository) Create(ctx context.Context, m *domain.Member) error {
	query := `INSERT INTO members (name, email, membership_number, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now().UTC()
	logger.DatabaseCall("INSERT", "members", "membershipNumber", m.MembershipNumber)
	err := r.db.QueryRowContext(ctx, query, m.Name, m.Email, m.MembershipNumber, m.Status, now, now).Scan(&m.ID)
	logger.DatabaseResult("INSERT", 1, err, "memberID", m.ID)
	if err != nil {
		return mapError(err, "member", 0)
	}
	m.CreatedAt, m.UpdatedAt = now, now
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "member", id)
	}
	return m, nil
}

func (r *memberRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Member, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(err, "member", id)
	}
	return m, nil
}

func (r *memberRepository) Update(ctx context.Context, id int32, patch domain.MemberPatch) (*domain.Member, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	record := goqu.Record{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		record["name"] = *patch.Name
	}
	if patch.Email != nil {
		record["email"] = *patch.Email
	}
	if patch.MembershipNumber != nil {
		record["membership_number"] = *patch.MembershipNumber
	}

	query, args, err := dialect().Update("members").Prepared(true).
		Set(record).
		Where(goqu.C("id").Eq(id)).
		Returning(columns(memberFields)...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build member update: %w", err)
	}

	m, err := scanMember(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "member", id)
	}
	return m, nil
}

func (r *memberRepository) UpdateStatus(ctx context.Context, id int32, status domain.MemberStatus) error {
	logger.DatabaseCall("UPDATE", "members", "memberID", id, "status", status)
	res, err := r.db.ExecContext(ctx, `UPDATE members SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "memberID", id)
		return mapError(err, "member", id)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "memberID", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("member", id)
	}
	return nil
}

func (r *memberRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "member", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("member", id)
	}
	return nil
}

func memberWhere(f repository.MemberFilter) []exp.Expression {
	var where []exp.Expression
	if f.Status != "" {
		where = append(where, goqu.C("status").Eq(string(f.Status)))
	}
	return where
}

func (r *memberRepository) List(ctx context.Context, f repository.MemberFilter) ([]domain.Member, error) {
	ds := dialect().From("members").Prepared(true).
		Select(columns(memberFields)...).
		Where(memberWhere(f)...).
		Order(goqu.C("name").Asc(), goqu.C("id").Asc())
	ds = applyPage(ds, f.Limit, f.Offset)

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build member list query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []domain.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (r *memberRepository) Count(ctx context.Context, f repository.MemberFilter) (int, error) {
	query, args, err := dialect().From("members").Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(memberWhere(f)...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build member count query: %w", err)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
