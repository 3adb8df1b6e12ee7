package service

import (
	"context"
	"testing"
	"time"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overdueReturn(t *testing.T, f *fixture, memberID int32, lateDays int) *domain.Fine {
	t.Helper()
	ctx := context.Background()
	d, err := f.circulation.BorrowBook(ctx, memberID, f.addBook(t, 1).ID)
	require.NoError(t, err)
	f.clock.Advance(time.Duration(14+lateDays) * day)
	res, err := f.circulation.ReturnBook(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Fine)
	return res.Fine
}

func TestPayFine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t)
	fine := overdueReturn(t, f, member.ID, 3)
	assert.Equal(t, int32(150), fine.AmountCents)

	res, err := f.circulation.ValidateBorrowing(ctx, member.ID, f.addBook(t, 1).ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"member has unpaid fines"}, res.Errors)

	paid, err := f.fines.PayFine(ctx, fine.ID)
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, f.clock.Now(), *paid.PaidAt)

	_, err = f.fines.PayFine(ctx, fine.ID)
	assert.ErrorIs(t, err, domain.ErrFineAlreadyPaid)

	_, err = f.fines.PayFine(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	res, err = f.circulation.ValidateBorrowing(ctx, member.ID, f.addBook(t, 1).ID)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestListFines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t)
	other := f.addMember(t)
	first := overdueReturn(t, f, member.ID, 1)
	_, err := f.fines.PayFine(ctx, first.ID)
	require.NoError(t, err)

	overdueReturn(t, f, member.ID, 2)
	overdueReturn(t, f, other.ID, 1)

	all, err := f.fines.ListMemberFines(ctx, member.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unpaid, err := f.fines.ListUnpaidFines(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, int32(100), unpaid[0].AmountCents)

	everyone, err := f.fines.ListFines(ctx, repository.FineFilter{UnpaidOnly: true})
	require.NoError(t, err)
	assert.Len(t, everyone, 2)

	_, err = f.fines.ListMemberFines(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.fines.GetFine(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.Paid())
}
