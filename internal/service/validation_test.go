package service

import (
	"testing"

	"library-circulation-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateBorrowing(t *testing.T) {
	active := &domain.Member{ID: 1, Status: domain.MemberStatusActive}
	suspended := &domain.Member{ID: 1, Status: domain.MemberStatusSuspended}
	onShelf := &domain.Book{ID: 2, TotalCopies: 1, AvailableCopies: 1}
	gone := &domain.Book{ID: 2, TotalCopies: 1, AvailableCopies: 0}

	tests := []struct {
		name string
		snap BorrowingSnapshot
		want []string
	}{
		{
			name: "eligible",
			snap: BorrowingSnapshot{Member: active, OpenTransactions: 2, Book: onShelf},
			want: []string{},
		},
		{
			name: "missing member and book",
			snap: BorrowingSnapshot{},
			want: []string{"member does not exist", "book does not exist"},
		},
		{
			name: "limit reached",
			snap: BorrowingSnapshot{Member: active, OpenTransactions: 3, Book: onShelf},
			want: []string{"member has reached the maximum limit of 3 books"},
		},
		{
			name: "every rule fails",
			snap: BorrowingSnapshot{Member: suspended, OpenTransactions: 3, UnpaidFines: 1, Book: gone},
			want: []string{
				"member is not active",
				"member has reached the maximum limit of 3 books",
				"member has unpaid fines",
				"book has no available copies",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := EvaluateBorrowing(tt.snap, domain.DefaultLendingPolicy)
			assert.Equal(t, len(tt.want) == 0, res.Valid)
			assert.Equal(t, tt.want, res.Errors)
		})
	}
}

func TestEvaluateBorrowing_CustomPolicy(t *testing.T) {
	policy := domain.DefaultLendingPolicy
	policy.MaxBooksPerMember = 5

	res := EvaluateBorrowing(BorrowingSnapshot{
		Member:           &domain.Member{Status: domain.MemberStatusActive},
		OpenTransactions: 4,
		Book:             &domain.Book{AvailableCopies: 1},
	}, policy)
	assert.True(t, res.Valid)
}
