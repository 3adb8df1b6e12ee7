package service

import (
	"context"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository"
)

type BookService interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id int32) (*domain.Book, error)
	UpdateBook(ctx context.Context, id int32, update BookUpdate) (*domain.Book, error)
	DeleteBook(ctx context.Context, id int32) error
	ListBooks(ctx context.Context, filter repository.BookFilter) ([]domain.Book, int, error)
	ListAvailableBooks(ctx context.Context) ([]domain.Book, error)
	UpdateBookStatus(ctx context.Context, id int32, status domain.BookStatus) (*domain.Book, error)
}

type MemberService interface {
	CreateMember(ctx context.Context, member *domain.Member) error
	GetMember(ctx context.Context, id int32) (*domain.Member, error)
	UpdateMember(ctx context.Context, id int32, patch domain.MemberPatch) (*domain.Member, error)
	DeleteMember(ctx context.Context, id int32) error
	ListMembers(ctx context.Context, filter repository.MemberFilter) ([]domain.Member, int, error)
	SuspendMember(ctx context.Context, id int32) (*domain.Member, error)
	ActivateMember(ctx context.Context, id int32) (*domain.Member, error)
	EvaluateSuspension(ctx context.Context, id int32) (*domain.Member, error)
	EvaluateAllSuspensions(ctx context.Context) (int, error)
}

type CirculationService interface {
	ValidateBorrowing(ctx context.Context, memberID, bookID int32) (*ValidationResult, error)
	BorrowBook(ctx context.Context, memberID, bookID int32) (*domain.TransactionDetails, error)
	ReturnBook(ctx context.Context, transactionID int32) (*domain.ReturnResult, error)
	UpdateOverdueStatuses(ctx context.Context) (int, error)
	GetTransaction(ctx context.Context, id int32) (*domain.TransactionDetails, error)
	ListOverdueTransactions(ctx context.Context) ([]domain.TransactionDetails, error)
	ListMemberTransactions(ctx context.Context, memberID int32) ([]domain.TransactionDetails, error)
}

type FineService interface {
	GetFine(ctx context.Context, id int32) (*domain.Fine, error)
	PayFine(ctx context.Context, id int32) (*domain.Fine, error)
	ListFines(ctx context.Context, filter repository.FineFilter) ([]domain.Fine, error)
	ListMemberFines(ctx context.Context, memberID int32) ([]domain.Fine, error)
	ListUnpaidFines(ctx context.Context, memberID int32) ([]domain.Fine, error)
}

// EmailService delivers member notifications. Failures are logged by the
// caller and never undo the operation that triggered them.
type EmailService interface {
	SendFineNotification(ctx context.Context, member domain.Member, fine domain.Fine, overdueDays int) error
	SendSuspensionNotification(ctx context.Context, member domain.Member) error
	SendReactivationNotification(ctx context.Context, member domain.Member) error
}
