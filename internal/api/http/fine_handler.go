package http

import (
	"net/http"

	"library-circulation-backend/internal/repository"
	"library-circulation-backend/internal/service"
)

type FineHandler struct {
	fineSvc service.FineService
}

func NewFineHandler(fineSvc service.FineService) *FineHandler {
	return &FineHandler{fineSvc: fineSvc}
}

func (h *FineHandler) ListFines(w http.ResponseWriter, r *http.Request) {
	memberID, ok := queryInt32(r, "member_id")
	if !ok {
		writeBadRequest(w, "invalid member_id filter")
		return
	}
	unpaid, ok := queryBool(r, "unpaid")
	if !ok {
		writeBadRequest(w, "invalid unpaid filter")
		return
	}

	fines, err := h.fineSvc.ListFines(r.Context(), repository.FineFilter{MemberID: memberID, UnpaidOnly: unpaid})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, mapFines(fines), len(fines))
}

func (h *FineHandler) GetFine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid fine id")
		return
	}
	fine, err := h.fineSvc.GetFine(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", mapFine(fine))
}

func (h *FineHandler) PayFine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid fine id")
		return
	}
	fine, err := h.fineSvc.PayFine(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Fine paid successfully", mapFine(fine))
}

func (h *FineHandler) ListMemberFines(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(r, "memberId")
	if !ok {
		writeBadRequest(w, "invalid member id")
		return
	}
	fines, err := h.fineSvc.ListMemberFines(r.Context(), memberID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, mapFines(fines), len(fines))
}

func (h *FineHandler) ListUnpaidFines(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(r, "memberId")
	if !ok {
		writeBadRequest(w, "invalid member id")
		return
	}
	fines, err := h.fineSvc.ListUnpaidFines(r.Context(), memberID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, mapFines(fines), len(fines))
}
