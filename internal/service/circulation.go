package service

import (
	"context"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/logger"
	"library-circulation-backend/internal/repository"
)

type circulationService struct {
	store   repository.Store
	books   bookStateMachine
	members memberStateMachine
	opts    options
}

func NewCirculationService(store repository.Store, opts ...Option) CirculationService {
	o := buildOptions(opts)
	return &circulationService{
		store:   store,
		members: memberStateMachine{policy: o.policy},
		opts:    o,
	}
}

func (s *circulationService) ValidateBorrowing(ctx context.Context, memberID, bookID int32) (*ValidationResult, error) {
	snap, err := loadBorrowingSnapshot(ctx, s.store.Repositories(), memberID, bookID, false)
	if err != nil {
		return nil, err
	}
	res := EvaluateBorrowing(snap, s.opts.policy)
	return &res, nil
}

// BorrowBook locks the member and the book, re-validates inside the same
// unit and only then takes a copy and opens the loan.
func (s *circulationService) BorrowBook(ctx context.Context, memberID, bookID int32) (*domain.TransactionDetails, error) {
	logger.EnterMethod("circulationService.BorrowBook", "memberID", memberID, "bookID", bookID)

	var details *domain.TransactionDetails
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		snap, err := loadBorrowingSnapshot(ctx, repos, memberID, bookID, true)
		if err != nil {
			return err
		}
		if res := EvaluateBorrowing(snap, s.opts.policy); !res.Valid {
			return domain.ValidationFailed(res.Errors)
		}

		if _, err := s.books.Decrement(ctx, repos.Books, bookID); err != nil {
			return err
		}

		borrowedAt := s.opts.clock()
		tx := &domain.Transaction{
			BookID:     bookID,
			MemberID:   memberID,
			BorrowedAt: borrowedAt,
			DueDate:    s.opts.policy.DueDate(borrowedAt),
			Status:     domain.TransactionStatusActive,
		}
		if err := repos.Transactions.Create(ctx, tx); err != nil {
			return err
		}

		details, err = repos.Transactions.GetDetails(ctx, tx.ID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("circulationService.BorrowBook", err, "memberID", memberID, "bookID", bookID)
		return nil, err
	}

	logger.InfoContext(ctx, "Book borrowed", "transactionID", details.ID, "memberID", memberID, "bookID", bookID, "dueDate", details.DueDate)
	logger.ExitMethod("circulationService.BorrowBook", "transactionID", details.ID)
	return details, nil
}

// ReturnBook closes a loan, puts the copy back, raises a fine for every
// overdue calendar day and re-evaluates the member, all in one unit. Rows are
// locked transaction, member, book.
func (s *circulationService) ReturnBook(ctx context.Context, transactionID int32) (*domain.ReturnResult, error) {
	logger.EnterMethod("circulationService.ReturnBook", "transactionID", transactionID)

	var (
		result        domain.ReturnResult
		member        *domain.Member
		memberChanged bool
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		tx, err := repos.Transactions.GetByIDForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx.Returned() {
			return domain.ErrAlreadyReturned
		}
		// Member before book, the order borrow takes them in.
		if _, err := repos.Members.GetByIDForUpdate(ctx, tx.MemberID); err != nil {
			return err
		}

		returnedAt := s.opts.clock()
		returned := domain.TransactionStatusReturned
		updated, err := repos.Transactions.Update(ctx, tx.ID, domain.TransactionPatch{
			Status:     &returned,
			ReturnedAt: &returnedAt,
		})
		if err != nil {
			return err
		}
		result.Transaction = *updated

		if _, err := s.books.Increment(ctx, repos.Books, tx.BookID); err != nil {
			return err
		}

		result.OverdueDays = s.opts.policy.OverdueDays(tx.DueDate, returnedAt)
		if result.OverdueDays > 0 {
			fine := &domain.Fine{
				MemberID:      tx.MemberID,
				TransactionID: tx.ID,
				AmountCents:   s.opts.policy.FineAmountCents(result.OverdueDays),
			}
			if err := repos.Fines.Create(ctx, fine); err != nil {
				return err
			}
			result.Fine = fine
		}

		member, memberChanged, err = s.members.Evaluate(ctx, repos, tx.MemberID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("circulationService.ReturnBook", err, "transactionID", transactionID)
		return nil, err
	}

	if result.Fine != nil {
		if err := s.opts.email.SendFineNotification(ctx, *member, *result.Fine, result.OverdueDays); err != nil {
			logger.WarnContext(ctx, "Failed to send fine notification", "fineID", result.Fine.ID, "error", err)
		}
	}
	if memberChanged {
		notifyStatusChange(ctx, s.opts.email, *member)
	}

	logger.InfoContext(ctx, "Book returned", "transactionID", transactionID, "overdueDays", result.OverdueDays)
	logger.ExitMethod("circulationService.ReturnBook", "transactionID", transactionID)
	return &result, nil
}

// UpdateOverdueStatuses flags every past-due active loan as overdue and
// re-evaluates the affected members. Running it again without new past-due
// loans returns 0.
func (s *circulationService) UpdateOverdueStatuses(ctx context.Context) (int, error) {
	logger.EnterMethod("circulationService.UpdateOverdueStatuses")

	var (
		marked  []domain.Transaction
		changed []domain.Member
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		marked, err = repos.Transactions.MarkOverdue(ctx, s.opts.clock())
		if err != nil {
			return err
		}

		seen := make(map[int32]bool, len(marked))
		for _, tx := range marked {
			if seen[tx.MemberID] {
				continue
			}
			seen[tx.MemberID] = true
			member, ok, err := s.members.Evaluate(ctx, repos, tx.MemberID)
			if err != nil {
				return err
			}
			if ok {
				changed = append(changed, *member)
			}
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("circulationService.UpdateOverdueStatuses", err)
		return 0, err
	}

	for _, m := range changed {
		notifyStatusChange(ctx, s.opts.email, m)
	}
	logger.ExitMethod("circulationService.UpdateOverdueStatuses", "marked", len(marked), "membersChanged", len(changed))
	return len(marked), nil
}

func (s *circulationService) GetTransaction(ctx context.Context, id int32) (*domain.TransactionDetails, error) {
	return s.store.Repositories().Transactions.GetDetails(ctx, id)
}

// ListOverdueTransactions returns open loans past their due date, whether or
// not the sweep has flagged them yet, oldest due date first.
func (s *circulationService) ListOverdueTransactions(ctx context.Context) ([]domain.TransactionDetails, error) {
	now := s.opts.clock()
	return s.store.Repositories().Transactions.ListDetails(ctx, repository.TransactionFilter{
		Statuses:   domain.OpenTransactionStatuses,
		DueBefore:  &now,
		Unreturned: true,
		OrderByDue: true,
	})
}

func (s *circulationService) ListMemberTransactions(ctx context.Context, memberID int32) ([]domain.TransactionDetails, error) {
	repos := s.store.Repositories()
	if _, err := repos.Members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	return repos.Transactions.ListDetails(ctx, repository.TransactionFilter{
		MemberID:   memberID,
		Statuses:   domain.OpenTransactionStatuses,
		OrderByDue: true,
	})
}
