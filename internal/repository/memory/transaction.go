package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository"
)

type transactionRepository struct {
	a   access
	now func() time.Time
}

func (r *transactionRepository) Create(_ context.Context, t *domain.Transaction) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.books[t.BookID]; !ok {
			return domain.Conflict("book %d does not exist", t.BookID)
		}
		if _, ok := st.members[t.MemberID]; !ok {
			return domain.Conflict("member %d does not exist", t.MemberID)
		}
		st.nextTransactionID++
		now := r.now()
		t.ID = st.nextTransactionID
		t.CreatedAt, t.UpdatedAt = now, now
		st.transactions[t.ID] = *t
		return nil
	})
}

func (r *transactionRepository) GetByID(_ context.Context, id int32) (*domain.Transaction, error) {
	var out domain.Transaction
	err := r.a.read(func(st *state) error {
		t, ok := st.transactions[id]
		if !ok {
			return domain.NotFound("transaction", id)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *transactionRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Transaction, error) {
	return r.GetByID(ctx, id)
}

func details(st *state, t domain.Transaction) domain.TransactionDetails {
	return domain.TransactionDetails{Transaction: t, Book: st.books[t.BookID], Member: st.members[t.MemberID]}
}

func (r *transactionRepository) GetDetails(_ context.Context, id int32) (*domain.TransactionDetails, error) {
	var out domain.TransactionDetails
	err := r.a.read(func(st *state) error {
		t, ok := st.transactions[id]
		if !ok {
			return domain.NotFound("transaction", id)
		}
		out = details(st, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *transactionRepository) Update(_ context.Context, id int32, patch domain.TransactionPatch) (*domain.Transaction, error) {
	var out domain.Transaction
	err := r.a.write(func(st *state) error {
		t, ok := st.transactions[id]
		if !ok {
			return domain.NotFound("transaction", id)
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.ReturnedAt != nil {
			returned := *patch.ReturnedAt
			t.ReturnedAt = &returned
		}
		t.UpdatedAt = r.now()
		st.transactions[id] = t
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func transactionMatches(t domain.Transaction, f repository.TransactionFilter) bool {
	if f.MemberID != 0 && t.MemberID != f.MemberID {
		return false
	}
	if f.BookID != 0 && t.BookID != f.BookID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, t.Status) {
		return false
	}
	if f.DueBefore != nil && !t.DueDate.Before(*f.DueBefore) {
		return false
	}
	if f.Unreturned && t.ReturnedAt != nil {
		return false
	}
	return true
}

func sortTransactions(txs []domain.Transaction, byDue bool) {
	sort.Slice(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if byDue {
			if !a.DueDate.Equal(b.DueDate) {
				return a.DueDate.Before(b.DueDate)
			}
			return a.ID < b.ID
		}
		if !a.BorrowedAt.Equal(b.BorrowedAt) {
			return a.BorrowedAt.After(b.BorrowedAt)
		}
		return a.ID > b.ID
	})
}

func (r *transactionRepository) List(_ context.Context, f repository.TransactionFilter) ([]domain.Transaction, error) {
	txs := []domain.Transaction{}
	err := r.a.read(func(st *state) error {
		for _, t := range st.transactions {
			if transactionMatches(t, f) {
				txs = append(txs, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortTransactions(txs, f.OrderByDue)
	return txs, nil
}

func (r *transactionRepository) ListDetails(ctx context.Context, f repository.TransactionFilter) ([]domain.TransactionDetails, error) {
	out := []domain.TransactionDetails{}
	err := r.a.read(func(st *state) error {
		var txs []domain.Transaction
		for _, t := range st.transactions {
			if transactionMatches(t, f) {
				txs = append(txs, t)
			}
		}
		sortTransactions(txs, f.OrderByDue)
		for _, t := range txs {
			out = append(out, details(st, t))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *transactionRepository) Count(_ context.Context, f repository.TransactionFilter) (int, error) {
	n := 0
	err := r.a.read(func(st *state) error {
		for _, t := range st.transactions {
			if transactionMatches(t, f) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *transactionRepository) MarkOverdue(_ context.Context, asOf time.Time) ([]domain.Transaction, error) {
	marked := []domain.Transaction{}
	err := r.a.write(func(st *state) error {
		now := r.now()
		for id, t := range st.transactions {
			if t.Status != domain.TransactionStatusActive || t.ReturnedAt != nil || !t.DueDate.Before(asOf) {
				continue
			}
			t.Status = domain.TransactionStatusOverdue
			t.UpdatedAt = now
			st.transactions[id] = t
			marked = append(marked, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(marked, func(i, j int) bool { return marked[i].ID < marked[j].ID })
	return marked, nil
}
