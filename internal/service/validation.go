package service

import (
	"context"
	"errors"
	"fmt"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository"
)

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// BorrowingSnapshot is everything the eligibility rules look at. A nil
// Member or Book means the row does not exist.
type BorrowingSnapshot struct {
	Member           *domain.Member
	OpenTransactions int
	UnpaidFines      int
	Book             *domain.Book
}

// EvaluateBorrowing checks every rule and collects every failure.
func EvaluateBorrowing(snap BorrowingSnapshot, policy domain.LendingPolicy) ValidationResult {
	errs := []string{}

	switch {
	case snap.Member == nil:
		errs = append(errs, "member does not exist")
	case snap.Member.Status != domain.MemberStatusActive:
		errs = append(errs, "member is not active")
	}
	if snap.OpenTransactions >= policy.MaxBooksPerMember {
		errs = append(errs, fmt.Sprintf("member has reached the maximum limit of %d books", policy.MaxBooksPerMember))
	}
	if snap.UnpaidFines > 0 {
		errs = append(errs, "member has unpaid fines")
	}
	switch {
	case snap.Book == nil:
		errs = append(errs, "book does not exist")
	case snap.Book.AvailableCopies <= 0:
		errs = append(errs, "book has no available copies")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// loadBorrowingSnapshot reads the snapshot through repos. With lock set the
// member and book rows are locked for the rest of the atomic unit.
func loadBorrowingSnapshot(ctx context.Context, repos repository.Repositories, memberID, bookID int32, lock bool) (BorrowingSnapshot, error) {
	var snap BorrowingSnapshot

	getMember, getBook := repos.Members.GetByID, repos.Books.GetByID
	if lock {
		getMember, getBook = repos.Members.GetByIDForUpdate, repos.Books.GetByIDForUpdate
	}

	member, err := getMember(ctx, memberID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return snap, err
	}
	snap.Member = member

	book, err := getBook(ctx, bookID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return snap, err
	}
	snap.Book = book

	if snap.OpenTransactions, err = repos.Transactions.Count(ctx, repository.TransactionFilter{
		MemberID: memberID,
		Statuses: domain.OpenTransactionStatuses,
	}); err != nil {
		return snap, err
	}
	if snap.UnpaidFines, err = repos.Fines.Count(ctx, repository.FineFilter{MemberID: memberID, UnpaidOnly: true}); err != nil {
		return snap, err
	}
	return snap, nil
}
