package service

import (
	"context"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/logger"
	"library-circulation-backend/internal/repository"
)

type memberService struct {
	store repository.Store
	sm    memberStateMachine
	opts  options
}

func NewMemberService(store repository.Store, opts ...Option) MemberService {
	o := buildOptions(opts)
	return &memberService{store: store, sm: memberStateMachine{policy: o.policy}, opts: o}
}

// CreateMember stores a new member. New members always start active.
func (s *memberService) CreateMember(ctx context.Context, member *domain.Member) error {
	member.Status = domain.MemberStatusActive
	if err := s.store.Repositories().Members.Create(ctx, member); err != nil {
		logger.Warn("Failed to create member", "membershipNumber", member.MembershipNumber, "error", err)
		return err
	}
	logger.Info("Member created", "memberID", member.ID)
	return nil
}

func (s *memberService) GetMember(ctx context.Context, id int32) (*domain.Member, error) {
	return s.store.Repositories().Members.GetByID(ctx, id)
}

func (s *memberService) UpdateMember(ctx context.Context, id int32, patch domain.MemberPatch) (*domain.Member, error) {
	return s.store.Repositories().Members.Update(ctx, id, patch)
}

func (s *memberService) DeleteMember(ctx context.Context, id int32) error {
	return s.store.Repositories().Members.Delete(ctx, id)
}

func (s *memberService) ListMembers(ctx context.Context, filter repository.MemberFilter) ([]domain.Member, int, error) {
	repos := s.store.Repositories()
	members, err := repos.Members.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := repos.Members.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (s *memberService) SuspendMember(ctx context.Context, id int32) (*domain.Member, error) {
	logger.EnterMethod("memberService.SuspendMember", "memberID", id)

	var member *domain.Member
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		m, err := s.sm.Suspend(ctx, repos.Members, id)
		member = m
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("memberService.SuspendMember", err, "memberID", id)
		return nil, err
	}
	notifyStatusChange(ctx, s.opts.email, *member)
	logger.ExitMethod("memberService.SuspendMember", "memberID", id)
	return member, nil
}

func (s *memberService) ActivateMember(ctx context.Context, id int32) (*domain.Member, error) {
	logger.EnterMethod("memberService.ActivateMember", "memberID", id)

	var member *domain.Member
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		m, err := s.sm.Activate(ctx, repos.Members, id)
		member = m
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("memberService.ActivateMember", err, "memberID", id)
		return nil, err
	}
	notifyStatusChange(ctx, s.opts.email, *member)
	logger.ExitMethod("memberService.ActivateMember", "memberID", id)
	return member, nil
}

func (s *memberService) EvaluateSuspension(ctx context.Context, id int32) (*domain.Member, error) {
	var (
		member  *domain.Member
		changed bool
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		member, changed, err = s.sm.Evaluate(ctx, repos, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		notifyStatusChange(ctx, s.opts.email, *member)
	}
	return member, nil
}

// EvaluateAllSuspensions re-applies the suspension rule to every member, one
// atomic unit per member, and returns how many changed status. A failure on
// one member is logged and does not stop the pass.
func (s *memberService) EvaluateAllSuspensions(ctx context.Context) (int, error) {
	members, err := s.store.Repositories().Members.List(ctx, repository.MemberFilter{})
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		before := m.Status
		updated, err := s.EvaluateSuspension(ctx, m.ID)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to evaluate member suspension", "memberID", m.ID, "error", err)
			continue
		}
		if updated.Status != before {
			changed++
		}
	}
	return changed, nil
}

// notifyStatusChange is best effort: the status change is already committed.
func notifyStatusChange(ctx context.Context, email EmailService, member domain.Member) {
	var err error
	switch member.Status {
	case domain.MemberStatusSuspended:
		err = email.SendSuspensionNotification(ctx, member)
	case domain.MemberStatusActive:
		err = email.SendReactivationNotification(ctx, member)
	}
	if err != nil {
		logger.WarnContext(ctx, "Failed to send member status notification", "memberID", member.ID, "status", member.Status, "error", err)
	}
}
