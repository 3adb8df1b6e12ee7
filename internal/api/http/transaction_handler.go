package http

import (
	"fmt"
	"net/http"

	"library-circulation-backend/internal/service"
)

type TransactionHandler struct {
	circulationSvc service.CirculationService
}

func NewTransactionHandler(circulationSvc service.CirculationService) *TransactionHandler {
	return &TransactionHandler{circulationSvc: circulationSvc}
}

func (h *TransactionHandler) BorrowBook(w http.ResponseWriter, r *http.Request) {
	var req borrowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.MemberID <= 0 || req.BookID <= 0 {
		writeBadRequest(w, "member_id and book_id are required")
		return
	}

	details, err := h.circulationSvc.BorrowBook(r.Context(), req.MemberID, req.BookID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Book borrowed successfully", details)
}

func (h *TransactionHandler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid transaction id")
		return
	}
	result, err := h.circulationSvc.ReturnBook(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Book returned successfully", mapReturnResult(result))
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid transaction id")
		return
	}
	details, err := h.circulationSvc.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", details)
}

func (h *TransactionHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	txs, err := h.circulationSvc.ListOverdueTransactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, txs, len(txs))
}

// UpdateOverdue runs the overdue sweep on demand.
func (h *TransactionHandler) UpdateOverdue(w http.ResponseWriter, r *http.Request) {
	count, err := h.circulationSvc.UpdateOverdueStatuses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: fmt.Sprintf("Updated %d transactions to overdue status", count),
		Count:   &count,
	})
}
