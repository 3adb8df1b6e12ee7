package http

import (
	"net/http"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository"
	"library-circulation-backend/internal/service"
)

type BookHandler struct {
	bookSvc service.BookService
}

func NewBookHandler(bookSvc service.BookService) *BookHandler {
	return &BookHandler{bookSvc: bookSvc}
}

func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeBadRequest(w, "validation error", errs...)
		return
	}

	book := req.toDomain()
	if err := h.bookSvc.CreateBook(r.Context(), book); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Book created successfully", book)
}

func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.BookFilter{
		Status:   domain.BookStatus(q.Get("status")),
		Category: q.Get("category"),
		Author:   q.Get("author"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		writeBadRequest(w, "invalid status filter")
		return
	}
	var ok bool
	if filter.AvailableOnly, ok = queryBool(r, "available"); !ok {
		writeBadRequest(w, "invalid available filter")
		return
	}
	if filter.Limit, filter.Offset, ok = queryPage(r); !ok {
		writeBadRequest(w, "invalid pagination")
		return
	}

	books, total, err := h.bookSvc.ListBooks(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, books, total)
}

func (h *BookHandler) ListAvailableBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.bookSvc.ListAvailableBooks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, books, len(books))
}

func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid book id")
		return
	}
	book, err := h.bookSvc.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", book)
}

func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid book id")
		return
	}
	var req updateBookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeBadRequest(w, "validation error", errs...)
		return
	}

	book, err := h.bookSvc.UpdateBook(r.Context(), id, req.toUpdate())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Book updated successfully", book)
}

func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid book id")
		return
	}
	if err := h.bookSvc.DeleteBook(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Book deleted successfully"})
}

// UpdateBookStatus drives a manual availability transition, e.g. sending a
// book to maintenance.
func (h *BookHandler) UpdateBookStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid book id")
		return
	}
	var req bookStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeBadRequest(w, "validation error", errs...)
		return
	}

	book, err := h.bookSvc.UpdateBookStatus(r.Context(), id, domain.BookStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Book status updated successfully", book)
}
