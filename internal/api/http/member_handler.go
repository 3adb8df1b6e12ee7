package http

import (
	"context"
	"net/http"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository"
	"library-circulation-backend/internal/service"
)

type MemberHandler struct {
	memberSvc      service.MemberService
	circulationSvc service.CirculationService
}

func NewMemberHandler(memberSvc service.MemberService, circulationSvc service.CirculationService) *MemberHandler {
	return &MemberHandler{memberSvc: memberSvc, circulationSvc: circulationSvc}
}

func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeBadRequest(w, "validation error", errs...)
		return
	}

	member := &domain.Member{
		Name:             req.Name,
		Email:            req.Email,
		MembershipNumber: req.MembershipNumber,
	}
	if err := h.memberSvc.CreateMember(r.Context(), member); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Member created successfully", member)
}

func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	filter := repository.MemberFilter{Status: domain.MemberStatus(r.URL.Query().Get("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		writeBadRequest(w, "invalid status filter")
		return
	}
	var ok bool
	if filter.Limit, filter.Offset, ok = queryPage(r); !ok {
		writeBadRequest(w, "invalid pagination")
		return
	}

	members, total, err := h.memberSvc.ListMembers(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, members, total)
}

func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid member id")
		return
	}
	member, err := h.memberSvc.GetMember(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", member)
}

func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid member id")
		return
	}
	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeBadRequest(w, "validation error", errs...)
		return
	}

	member, err := h.memberSvc.UpdateMember(r.Context(), id, domain.MemberPatch{
		Name:             req.Name,
		Email:            req.Email,
		MembershipNumber: req.MembershipNumber,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Member updated successfully", member)
}

func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid member id")
		return
	}
	if err := h.memberSvc.DeleteMember(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Member deleted successfully"})
}

// ListBorrowedBooks returns the member's active and overdue loans.
func (h *MemberHandler) ListBorrowedBooks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid member id")
		return
	}
	txs, err := h.circulationSvc.ListMemberTransactions(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, txs, len(txs))
}

func (h *MemberHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid member id")
		return
	}
	bookID, ok := queryInt32(r, "book_id")
	if !ok || bookID == 0 {
		writeBadRequest(w, "book_id query parameter is required")
		return
	}

	result, err := h.circulationSvc.ValidateBorrowing(r.Context(), id, bookID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", result)
}

func (h *MemberHandler) SuspendMember(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.memberSvc.SuspendMember, "Member suspended successfully")
}

func (h *MemberHandler) ActivateMember(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.memberSvc.ActivateMember, "Member activated successfully")
}

func (h *MemberHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, int32) (*domain.Member, error), message string) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid member id")
		return
	}
	member, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, message, member)
}
