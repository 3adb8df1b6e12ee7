package memory

import (
	"context"
	"sort"
	"time"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository"
)

type fineRepository struct {
	a   access
	now func() time.Time
}

func (r *fineRepository) Create(_ context.Context, f *domain.Fine) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.members[f.MemberID]; !ok {
			return domain.Conflict("member %d does not exist", f.MemberID)
		}
		if _, ok := st.transactions[f.TransactionID]; !ok {
			return domain.Conflict("transaction %d does not exist", f.TransactionID)
		}
		if f.AmountCents < 0 {
			return domain.InvalidOperation("constraint fines_amount_cents_check violated")
		}
		st.nextFineID++
		f.ID = st.nextFineID
		f.CreatedAt = r.now()
		st.fines[f.ID] = *f
		return nil
	})
}

func (r *fineRepository) GetByID(_ context.Context, id int32) (*domain.Fine, error) {
	var out domain.Fine
	err := r.a.read(func(st *state) error {
		f, ok := st.fines[id]
		if !ok {
			return domain.NotFound("fine", id)
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *fineRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Fine, error) {
	return r.GetByID(ctx, id)
}

func (r *fineRepository) Update(_ context.Context, id int32, patch domain.FinePatch) (*domain.Fine, error) {
	var out domain.Fine
	err := r.a.write(func(st *state) error {
		f, ok := st.fines[id]
		if !ok {
			return domain.NotFound("fine", id)
		}
		if patch.PaidAt != nil {
			paid := *patch.PaidAt
			f.PaidAt = &paid
			st.fines[id] = f
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func fineMatches(fn domain.Fine, f repository.FineFilter) bool {
	if f.MemberID != 0 && fn.MemberID != f.MemberID {
		return false
	}
	if f.TransactionID != 0 && fn.TransactionID != f.TransactionID {
		return false
	}
	if f.UnpaidOnly && fn.PaidAt != nil {
		return false
	}
	return true
}

func (r *fineRepository) List(_ context.Context, f repository.FineFilter) ([]domain.Fine, error) {
	fines := []domain.Fine{}
	err := r.a.read(func(st *state) error {
		for _, fn := range st.fines {
			if fineMatches(fn, f) {
				fines = append(fines, fn)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(fines, func(i, j int) bool {
		if !fines[i].CreatedAt.Equal(fines[j].CreatedAt) {
			return fines[i].CreatedAt.After(fines[j].CreatedAt)
		}
		return fines[i].ID > fines[j].ID
	})
	return fines, nil
}

func (r *fineRepository) Count(_ context.Context, f repository.FineFilter) (int, error) {
	n := 0
	err := r.a.read(func(st *state) error {
		for _, fn := range st.fines {
			if fineMatches(fn, f) {
				n++
			}
		}
		return nil
	})
	return n, err
}
