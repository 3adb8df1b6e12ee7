package service

import (
	"context"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/logger"
	"library-circulation-backend/internal/repository"
)

type fineService struct {
	store   repository.Store
	members memberStateMachine
	opts    options
}

func NewFineService(store repository.Store, opts ...Option) FineService {
	o := buildOptions(opts)
	return &fineService{store: store, members: memberStateMachine{policy: o.policy}, opts: o}
}

func (s *fineService) GetFine(ctx context.Context, id int32) (*domain.Fine, error) {
	return s.store.Repositories().Fines.GetByID(ctx, id)
}

// PayFine settles a fine and re-evaluates its member, which reactivates a
// suspended member once the last unpaid fine is gone and the overdue count
// is below the threshold.
func (s *fineService) PayFine(ctx context.Context, id int32) (*domain.Fine, error) {
	logger.EnterMethod("fineService.PayFine", "fineID", id)

	var (
		fine    *domain.Fine
		member  *domain.Member
		changed bool
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		f, err := repos.Fines.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if f.Paid() {
			return domain.ErrFineAlreadyPaid
		}

		paidAt := s.opts.clock()
		if fine, err = repos.Fines.Update(ctx, id, domain.FinePatch{PaidAt: &paidAt}); err != nil {
			return err
		}

		member, changed, err = s.members.Evaluate(ctx, repos, f.MemberID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("fineService.PayFine", err, "fineID", id)
		return nil, err
	}

	if changed {
		notifyStatusChange(ctx, s.opts.email, *member)
	}
	logger.ExitMethod("fineService.PayFine", "fineID", id, "amountCents", fine.AmountCents)
	return fine, nil
}

func (s *fineService) ListFines(ctx context.Context, filter repository.FineFilter) ([]domain.Fine, error) {
	return s.store.Repositories().Fines.List(ctx, filter)
}

func (s *fineService) ListMemberFines(ctx context.Context, memberID int32) ([]domain.Fine, error) {
	return s.listForMember(ctx, repository.FineFilter{MemberID: memberID})
}

func (s *fineService) ListUnpaidFines(ctx context.Context, memberID int32) ([]domain.Fine, error) {
	return s.listForMember(ctx, repository.FineFilter{MemberID: memberID, UnpaidOnly: true})
}

func (s *fineService) listForMember(ctx context.Context, filter repository.FineFilter) ([]domain.Fine, error) {
	repos := s.store.Repositories()
	if _, err := repos.Members.GetByID(ctx, filter.MemberID); err != nil {
		return nil, err
	}
	return repos.Fines.List(ctx, filter)
}
