package service

import (
	"context"
	"slices"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/logger"
	"library-circulation-backend/internal/repository"
)

var bookTransitions = map[domain.BookStatus][]domain.BookStatus{
	domain.BookStatusAvailable:   {domain.BookStatusBorrowed, domain.BookStatusMaintenance, domain.BookStatusReserved},
	domain.BookStatusBorrowed:    {domain.BookStatusAvailable},
	domain.BookStatusMaintenance: {domain.BookStatusAvailable},
	domain.BookStatusReserved:    {domain.BookStatusBorrowed, domain.BookStatusAvailable},
}

// CanTransition reports whether the availability table allows moving a book
// from one status to another.
func CanTransition(from, to domain.BookStatus) bool {
	return slices.Contains(bookTransitions[from], to)
}

// bookStateMachine is the only writer of a book's status and copy counters.
// Every method locks the book row through the repositories it is given, so
// callers run it inside an atomic unit.
type bookStateMachine struct{}

func (bookStateMachine) save(ctx context.Context, books repository.BookRepository, b *domain.Book, from domain.BookStatus) error {
	err := books.UpdateAvailability(ctx, b.ID, domain.BookAvailability{
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Status:          b.Status,
	})
	if err != nil {
		return err
	}
	if from != b.Status {
		logger.StateTransition(ctx, "book", b.ID, string(from), string(b.Status))
	}
	return nil
}

// Decrement takes one copy off the shelf. Reaching zero copies forces the
// status to borrowed whatever the previous status was.
func (m bookStateMachine) Decrement(ctx context.Context, books repository.BookRepository, id int32) (*domain.Book, error) {
	b, err := books.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.AvailableCopies <= 0 {
		return nil, domain.ErrNoCopiesAvailable
	}

	from := b.Status
	b.AvailableCopies--
	if b.AvailableCopies == 0 {
		b.Status = domain.BookStatusBorrowed
	}
	if err := m.save(ctx, books, b, from); err != nil {
		return nil, err
	}
	return b, nil
}

func (m bookStateMachine) Increment(ctx context.Context, books repository.BookRepository, id int32) (*domain.Book, error) {
	b, err := books.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.AvailableCopies >= b.TotalCopies {
		return nil, domain.ErrAllCopiesAvailable
	}

	from := b.Status
	b.AvailableCopies++
	if from == domain.BookStatusBorrowed {
		b.Status = domain.BookStatusAvailable
	}
	if err := m.save(ctx, books, b, from); err != nil {
		return nil, err
	}
	return b, nil
}

// SetStatus applies a manual transition. Besides the table, borrowed is
// tied to the copy count: it can only be entered with no copies left and
// only be left once a copy is back.
func (m bookStateMachine) SetStatus(ctx context.Context, books repository.BookRepository, id int32, to domain.BookStatus) (*domain.Book, error) {
	if !to.Valid() {
		return nil, domain.InvalidOperation("unknown book status %q", to)
	}
	b, err := books.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	from := b.Status
	if !CanTransition(from, to) {
		return nil, domain.InvalidTransition("book", from, to)
	}
	if to == domain.BookStatusBorrowed && b.AvailableCopies > 0 {
		return nil, &domain.Error{
			Kind:    domain.KindInvalidStateTransition,
			Message: "book cannot be marked borrowed while copies are available",
		}
	}
	if from == domain.BookStatusBorrowed && b.AvailableCopies == 0 {
		return nil, &domain.Error{
			Kind:    domain.KindInvalidStateTransition,
			Message: "book cannot leave borrowed while no copies are available",
		}
	}

	b.Status = to
	if err := m.save(ctx, books, b, from); err != nil {
		return nil, err
	}
	return b, nil
}

// SetTotalCopies changes the stock size, shifting available copies by the
// same amount. Copies currently on loan cannot be removed.
func (m bookStateMachine) SetTotalCopies(ctx context.Context, books repository.BookRepository, id int32, total int32) (*domain.Book, error) {
	b, err := books.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	onLoan := b.TotalCopies - b.AvailableCopies
	if total < onLoan {
		return nil, domain.InvalidOperation("total copies cannot be lower than the %d copies on loan", onLoan)
	}

	from := b.Status
	b.TotalCopies = total
	b.AvailableCopies = total - onLoan
	switch {
	case b.AvailableCopies == 0:
		b.Status = domain.BookStatusBorrowed
	case from == domain.BookStatusBorrowed:
		b.Status = domain.BookStatusAvailable
	}
	if err := m.save(ctx, books, b, from); err != nil {
		return nil, err
	}
	return b, nil
}
