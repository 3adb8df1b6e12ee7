package repository

import (
	"context"
	"time"

	"library-circulation-backend/internal/domain"
)

// BookFilter narrows book listings. Zero values mean "no constraint".
type BookFilter struct {
	Status        domain.BookStatus
	Category      string
	Author        string
	AvailableOnly bool
	Limit         int
	Offset        int
}

type MemberFilter struct {
	Status domain.MemberStatus
	Limit  int
	Offset int
}

type TransactionFilter struct {
	MemberID   int32
	BookID     int32
	Statuses   []domain.TransactionStatus
	DueBefore  *time.Time
	Unreturned bool
	OrderByDue bool
}

type FineFilter struct {
	MemberID      int32
	TransactionID int32
	UnpaidOnly    bool
}

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id int32) (*domain.Book, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error)
	Update(ctx context.Context, id int32, patch domain.BookPatch) (*domain.Book, error)
	// UpdateAvailability writes the copy counters and status. Only the book
	// availability state machine calls it.
	UpdateAvailability(ctx context.Context, id int32, a domain.BookAvailability) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter BookFilter) ([]domain.Book, error)
	Count(ctx context.Context, filter BookFilter) (int, error)
}

type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id int32) (*domain.Member, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Member, error)
	Update(ctx context.Context, id int32, patch domain.MemberPatch) (*domain.Member, error)
	// UpdateStatus is reserved for the member state machine.
	UpdateStatus(ctx context.Context, id int32, status domain.MemberStatus) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter MemberFilter) ([]domain.Member, error)
	Count(ctx context.Context, filter MemberFilter) (int, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id int32) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Transaction, error)
	GetDetails(ctx context.Context, id int32) (*domain.TransactionDetails, error)
	Update(ctx context.Context, id int32, patch domain.TransactionPatch) (*domain.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	ListDetails(ctx context.Context, filter TransactionFilter) ([]domain.TransactionDetails, error)
	Count(ctx context.Context, filter TransactionFilter) (int, error)
	// MarkOverdue moves every active, unreturned transaction due before asOf
	// to overdue in one statement and returns the rows it changed.
	MarkOverdue(ctx context.Context, asOf time.Time) ([]domain.Transaction, error)
}

type FineRepository interface {
	Create(ctx context.Context, fine *domain.Fine) error
	GetByID(ctx context.Context, id int32) (*domain.Fine, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Fine, error)
	Update(ctx context.Context, id int32, patch domain.FinePatch) (*domain.Fine, error)
	List(ctx context.Context, filter FineFilter) ([]domain.Fine, error)
	Count(ctx context.Context, filter FineFilter) (int, error)
}

// Repositories groups the entity repositories bound to one connection or
// one transaction.
type Repositories struct {
	Books        BookRepository
	Members      MemberRepository
	Transactions TransactionRepository
	Fines        FineRepository
}

// TxFunc runs inside an atomic unit. Returning an error rolls back every
// write made through repos.
type TxFunc func(ctx context.Context, repos Repositories) error

type Store interface {
	Repositories() Repositories
	WithTx(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
}
