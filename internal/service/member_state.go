package service

import (
	"context"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/logger"
	"library-circulation-backend/internal/repository"
)

// memberStateMachine is the only writer of a member's status.
type memberStateMachine struct {
	policy domain.LendingPolicy
}

func (m memberStateMachine) transition(ctx context.Context, members repository.MemberRepository, id int32, to domain.MemberStatus) (*domain.Member, error) {
	member, err := members.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if member.Status == to {
		if to == domain.MemberStatusSuspended {
			return nil, &domain.Error{Kind: domain.KindInvalidStateTransition, Message: "member is already suspended"}
		}
		return nil, &domain.Error{Kind: domain.KindInvalidStateTransition, Message: "member is already active"}
	}
	if err := members.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	logger.StateTransition(ctx, "member", id, string(member.Status), string(to))
	member.Status = to
	return member, nil
}

func (m memberStateMachine) Suspend(ctx context.Context, members repository.MemberRepository, id int32) (*domain.Member, error) {
	return m.transition(ctx, members, id, domain.MemberStatusSuspended)
}

func (m memberStateMachine) Activate(ctx context.Context, members repository.MemberRepository, id int32) (*domain.Member, error) {
	return m.transition(ctx, members, id, domain.MemberStatusActive)
}

// Evaluate applies the suspension rule: an active member with at least the
// threshold of overdue loans is suspended, a suspended member below it with
// no unpaid fines is reactivated. It reports whether the status changed.
func (m memberStateMachine) Evaluate(ctx context.Context, repos repository.Repositories, id int32) (*domain.Member, bool, error) {
	member, err := repos.Members.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, false, err
	}

	overdue, err := repos.Transactions.Count(ctx, repository.TransactionFilter{
		MemberID:   id,
		Statuses:   []domain.TransactionStatus{domain.TransactionStatusOverdue},
		Unreturned: true,
	})
	if err != nil {
		return nil, false, err
	}

	switch {
	case overdue >= m.policy.SuspensionOverdueThreshold && member.Status == domain.MemberStatusActive:
		member, err = m.Suspend(ctx, repos.Members, id)
		return member, err == nil, err

	case overdue < m.policy.SuspensionOverdueThreshold && member.Status == domain.MemberStatusSuspended:
		unpaid, err := repos.Fines.Count(ctx, repository.FineFilter{MemberID: id, UnpaidOnly: true})
		if err != nil {
			return nil, false, err
		}
		if unpaid > 0 {
			return member, false, nil
		}
		member, err = m.Activate(ctx, repos.Members, id)
		return member, err == nil, err
	}
	return member, false, nil
}
