package http

import (
	"time"

	"library-circulation-backend/internal/domain"
)

// fineResponse exposes the amount in currency units next to the stored cents.
type fineResponse struct {
	ID            int32      `json:"id"`
	MemberID      int32      `json:"member_id"`
	TransactionID int32      `json:"transaction_id"`
	Amount        float64    `json:"amount"`
	AmountCents   int32      `json:"amount_cents"`
	Paid          bool       `json:"paid"`
	PaidAt        *time.Time `json:"paid_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

func mapFine(f *domain.Fine) *fineResponse {
	if f == nil {
		return nil
	}
	return &fineResponse{
		ID:            f.ID,
		MemberID:      f.MemberID,
		TransactionID: f.TransactionID,
		Amount:        f.Amount(),
		AmountCents:   f.AmountCents,
		Paid:          f.Paid(),
		PaidAt:        f.PaidAt,
		CreatedAt:     f.CreatedAt,
	}
}

func mapFines(fines []domain.Fine) []*fineResponse {
	out := make([]*fineResponse, 0, len(fines))
	for i := range fines {
		out = append(out, mapFine(&fines[i]))
	}
	return out
}

type returnResponse struct {
	Transaction domain.Transaction `json:"transaction"`
	Fine        *fineResponse      `json:"fine"`
	OverdueDays int                `json:"overdue_days"`
}

func mapReturnResult(r *domain.ReturnResult) returnResponse {
	return returnResponse{
		Transaction: r.Transaction,
		Fine:        mapFine(r.Fine),
		OverdueDays: r.OverdueDays,
	}
}
