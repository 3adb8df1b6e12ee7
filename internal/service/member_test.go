package service

import (
	"context"
	"testing"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSuspendAndActivateMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t)
	assert.Equal(t, domain.MemberStatusActive, member.Status)

	_, err := f.members.ActivateMember(ctx, member.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	got, err := f.members.SuspendMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberStatusSuspended, got.Status)
	f.email.AssertCalled(t, "SendSuspensionNotification", mock.Anything, memberWithID(member.ID))

	_, err = f.members.SuspendMember(ctx, member.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	got, err = f.members.ActivateMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberStatusActive, got.Status)

	_, err = f.members.SuspendMember(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvaluateSuspension_NoChange(t *testing.T) {
	f := newFixture(t)
	member := f.addMember(t)

	got, err := f.members.EvaluateSuspension(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberStatusActive, got.Status)
	f.email.AssertNotCalled(t, "SendSuspensionNotification", mock.Anything, mock.Anything)
}

func TestEvaluateSuspension_ReactivatesManuallySuspendedMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t)
	_, err := f.members.SuspendMember(ctx, member.ID)
	require.NoError(t, err)

	got, err := f.members.EvaluateSuspension(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberStatusActive, got.Status)
}

func TestEvaluateAllSuspensions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	heavy := f.addMember(t)
	light := f.addMember(t)
	for i := 0; i < 3; i++ {
		_, err := f.circulation.BorrowBook(ctx, heavy.ID, f.addBook(t, 1).ID)
		require.NoError(t, err)
	}
	_, err := f.circulation.BorrowBook(ctx, light.ID, f.addBook(t, 1).ID)
	require.NoError(t, err)

	// Flag the loans without going through the service so the members are
	// not evaluated yet.
	f.clock.Advance(15 * day)
	_, err = f.store.Repositories().Transactions.MarkOverdue(ctx, f.clock.Now())
	require.NoError(t, err)

	changed, err := f.members.EvaluateAllSuspensions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, domain.MemberStatusSuspended, f.member(t, heavy.ID).Status)
	assert.Equal(t, domain.MemberStatusActive, f.member(t, light.ID).Status)

	changed, err = f.members.EvaluateAllSuspensions(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestMemberCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t)

	dup := &domain.Member{Name: "X", Email: member.Email, MembershipNumber: "M-X"}
	assert.ErrorIs(t, f.members.CreateMember(ctx, dup), domain.ErrConflict)

	name := "Renamed"
	got, err := f.members.UpdateMember(ctx, member.ID, domain.MemberPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, member.Email, got.Email)

	_, err = f.members.SuspendMember(ctx, member.ID)
	require.NoError(t, err)
	suspended, total, err := f.members.ListMembers(ctx, repository.MemberFilter{Status: domain.MemberStatusSuspended})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, member.ID, suspended[0].ID)

	require.NoError(t, f.members.DeleteMember(ctx, member.ID))
	_, err = f.members.GetMember(ctx, member.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
