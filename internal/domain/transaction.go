package domain

import "time"

type TransactionStatus string

const (
	TransactionStatusActive   TransactionStatus = "active"
	TransactionStatusOverdue  TransactionStatus = "overdue"
	TransactionStatusReturned TransactionStatus = "returned"
)

// OpenTransactionStatuses are the statuses that count against a member's
// borrowing limit.
var OpenTransactionStatuses = []TransactionStatus{TransactionStatusActive, TransactionStatusOverdue}

type Transaction struct {
	ID         int32             `json:"id"`
	BookID     int32             `json:"book_id"`
	MemberID   int32             `json:"member_id"`
	BorrowedAt time.Time         `json:"borrowed_at"`
	DueDate    time.Time         `json:"due_date"`
	ReturnedAt *time.Time        `json:"returned_at"`
	Status     TransactionStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (t Transaction) Returned() bool {
	return t.ReturnedAt != nil || t.Status == TransactionStatusReturned
}

type TransactionPatch struct {
	Status     *TransactionStatus
	ReturnedAt *time.Time
}

// TransactionDetails is a transaction joined with snapshots of its book and
// member.
type TransactionDetails struct {
	Transaction
	Book   Book   `json:"book"`
	Member Member `json:"member"`
}

type ReturnResult struct {
	Transaction Transaction `json:"transaction"`
	Fine        *Fine       `json:"fine"`
	OverdueDays int         `json:"overdue_days"`
}
