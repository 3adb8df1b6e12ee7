package domain

import "time"

type Fine struct {
	ID            int32      `json:"id"`
	MemberID      int32      `json:"member_id"`
	TransactionID int32      `json:"transaction_id"`
	AmountCents   int32      `json:"amount_cents"`
	PaidAt        *time.Time `json:"paid_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Amount returns the fine in currency units.
func (f Fine) Amount() float64 {
	return float64(f.AmountCents) / 100
}

func (f Fine) Paid() bool {
	return f.PaidAt != nil
}

type FinePatch struct {
	PaidAt *time.Time
}
