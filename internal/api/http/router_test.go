package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"library-circulation-backend/internal/repository/memory"
	"library-circulation-backend/internal/service"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    jsoniter.RawMessage `json:"data"`
	Count   *int               `json:"count"`
	Errors  []string           `json:"errors"`
}

type apiFixture struct {
	t      *testing.T
	now    time.Time
	router http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	f := &apiFixture{t: t, now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := memory.NewStore()
	opts := []service.Option{service.WithClock(func() time.Time { return f.now })}
	f.router = NewRouter(Services{
		Book:        service.NewBookService(store, opts...),
		Member:      service.NewMemberService(store, opts...),
		Circulation: service.NewCirculationService(store, opts...),
		Fine:        service.NewFineService(store, opts...),
		DB:          store,
	})
	return f
}

func (f *apiFixture) do(method, path string, body any) (*httptest.ResponseRecorder, testResponse) {
	f.t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var resp testResponse
	require.NoError(f.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func (f *apiFixture) createBook(isbn string, copies int32) int32 {
	f.t.Helper()
	rec, resp := f.do("POST", "/api/books", map[string]any{
		"isbn": isbn, "title": "Title " + isbn, "author": "Author", "total_copies": copies,
	})
	require.Equal(f.t, http.StatusCreated, rec.Code, resp.Message)
	var out struct{ ID int32 }
	require.NoError(f.t, json.Unmarshal(resp.Data, &out))
	return out.ID
}

func (f *apiFixture) createMember(n int) int32 {
	f.t.Helper()
	rec, resp := f.do("POST", "/api/members", map[string]any{
		"name":              fmt.Sprintf("Member %d", n),
		"email":             fmt.Sprintf("member%d@library.test", n),
		"membership_number": fmt.Sprintf("M-%03d", n),
	})
	require.Equal(f.t, http.StatusCreated, rec.Code, resp.Message)
	var out struct{ ID int32 }
	require.NoError(f.t, json.Unmarshal(resp.Data, &out))
	return out.ID
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)
	rec, resp := f.do("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	router := NewRouter(Services{DB: failingPinger{}})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newAPIFixture(t)
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestCreateBook_Validation(t *testing.T) {
	f := newAPIFixture(t)

	rec, resp := f.do("POST", "/api/books", map[string]any{"isbn": "123", "total_copies": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.ElementsMatch(t, []string{
		"ISBN must be 10-20 characters",
		"Title is required",
		"Author is required",
		"Total copies must be at least 1",
	}, resp.Errors)

	rec, _ = f.do("POST", "/api/books", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBook_DefaultsAndConflict(t *testing.T) {
	f := newAPIFixture(t)

	rec, resp := f.do("POST", "/api/books", map[string]any{
		"isbn": "9780000000001", "title": "Dune", "author": "Herbert", "total_copies": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var book struct {
		AvailableCopies int32  `json:"available_copies"`
		Status          string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &book))
	assert.Equal(t, int32(3), book.AvailableCopies)
	assert.Equal(t, "available", book.Status)

	rec, _ = f.do("POST", "/api/books", map[string]any{
		"isbn": "9780000000001", "title": "Dune again", "author": "Herbert",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetBook_NotFound(t *testing.T) {
	f := newAPIFixture(t)
	rec, resp := f.do("GET", "/api/books/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, resp.Message, "not found")

	rec, resp = f.do("GET", "/api/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", resp.Message)
}

func TestListBooks_Filters(t *testing.T) {
	f := newAPIFixture(t)
	f.createBook("9780000000001", 1)
	f.createBook("9780000000002", 2)
	member := f.createMember(1)
	first := f.createBook("9780000000003", 1)

	rec, _ := f.do("POST", "/api/transactions/borrow", map[string]any{"member_id": member, "book_id": first})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := f.do("GET", "/api/books?available=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, *resp.Count)

	_, resp = f.do("GET", "/api/books?status=borrowed", nil)
	assert.Equal(t, 1, *resp.Count)

	_, resp = f.do("GET", "/api/books/available", nil)
	assert.Equal(t, 2, *resp.Count)

	rec, _ = f.do("GET", "/api/books?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateBookStatus(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createBook("9780000000001", 1)

	rec, _ := f.do("PUT", fmt.Sprintf("/api/books/%d/status", id), map[string]string{"status": "maintenance"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do("PUT", fmt.Sprintf("/api/books/%d/status", id), map[string]string{"status": "borrowed"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp := f.do("PUT", fmt.Sprintf("/api/books/%d/status", id), map[string]string{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Invalid status"}, resp.Errors)
}

func TestBorrowReturnAndPayFine(t *testing.T) {
	f := newAPIFixture(t)
	book := f.createBook("9780000000001", 1)
	alice := f.createMember(1)
	bob := f.createMember(2)

	rec, resp := f.do("POST", "/api/transactions/borrow", map[string]any{"member_id": alice, "book_id": book})
	require.Equal(t, http.StatusCreated, rec.Code, resp.Message)
	var tx struct {
		ID   int32 `json:"id"`
		Book struct {
			AvailableCopies int32 `json:"available_copies"`
		} `json:"book"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &tx))
	assert.Equal(t, int32(0), tx.Book.AvailableCopies)

	rec, resp = f.do("POST", "/api/transactions/borrow", map[string]any{"member_id": bob, "book_id": book})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, resp.Errors, "book has no available copies")

	rec, resp = f.do("GET", fmt.Sprintf("/api/members/%d/eligibility?book_id=%d", bob, book), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var eligibility service.ValidationResult
	require.NoError(t, json.Unmarshal(resp.Data, &eligibility))
	assert.False(t, eligibility.Valid)

	_, resp = f.do("GET", fmt.Sprintf("/api/members/%d/books", alice), nil)
	assert.Equal(t, 1, *resp.Count)

	f.now = f.now.Add(19 * 24 * time.Hour)
	rec, resp = f.do("POST", "/api/transactions/update-overdue", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *resp.Count)

	_, resp = f.do("GET", "/api/transactions/overdue", nil)
	assert.Equal(t, 1, *resp.Count)

	rec, resp = f.do("POST", fmt.Sprintf("/api/transactions/%d/return", tx.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, resp.Message)
	var result struct {
		OverdueDays int `json:"overdue_days"`
		Fine        struct {
			ID     int32   `json:"id"`
			Amount float64 `json:"amount"`
			Paid   bool    `json:"paid"`
		} `json:"fine"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, 5, result.OverdueDays)
	assert.Equal(t, 2.5, result.Fine.Amount)
	assert.False(t, result.Fine.Paid)

	rec, _ = f.do("POST", fmt.Sprintf("/api/transactions/%d/return", tx.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	_, resp = f.do("GET", fmt.Sprintf("/api/fines/member/%d/unpaid", alice), nil)
	assert.Equal(t, 1, *resp.Count)

	rec, _ = f.do("POST", fmt.Sprintf("/api/fines/%d/pay", result.Fine.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp = f.do("GET", fmt.Sprintf("/api/fines/%d", result.Fine.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var paid struct {
		Paid bool `json:"paid"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &paid))
	assert.True(t, paid.Paid)

	rec, resp = f.do("POST", fmt.Sprintf("/api/fines/%d/pay", result.Fine.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "fine already paid", resp.Message)

	_, resp = f.do("GET", fmt.Sprintf("/api/fines?member_id=%d&unpaid=true", alice), nil)
	assert.Equal(t, 0, *resp.Count)
}

func TestBorrow_MissingIDs(t *testing.T) {
	f := newAPIFixture(t)
	rec, resp := f.do("POST", "/api/transactions/borrow", map[string]any{"member_id": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "member_id and book_id are required", resp.Message)
}

func TestMemberLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	rec, resp := f.do("POST", "/api/members", map[string]any{"name": "", "email": "nope", "membership_number": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, resp.Errors, 3)

	id := f.createMember(1)

	rec, _ = f.do("POST", fmt.Sprintf("/api/members/%d/suspend", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, resp = f.do("GET", "/api/members?status=suspended", nil)
	assert.Equal(t, 1, *resp.Count)

	rec, _ = f.do("POST", fmt.Sprintf("/api/members/%d/suspend", id), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = f.do("POST", fmt.Sprintf("/api/members/%d/activate", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp = f.do("PUT", fmt.Sprintf("/api/members/%d", id), map[string]any{"email": "renamed@library.test"})
	require.Equal(t, http.StatusOK, rec.Code)
	var member struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &member))
	assert.Equal(t, "renamed@library.test", member.Email)

	rec, _ = f.do("DELETE", fmt.Sprintf("/api/members/%d", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do("GET", fmt.Sprintf("/api/members/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBook_Referenced(t *testing.T) {
	f := newAPIFixture(t)
	book := f.createBook("9780000000001", 2)
	member := f.createMember(1)
	rec, _ := f.do("POST", "/api/transactions/borrow", map[string]any{"member_id": member, "book_id": book})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = f.do("DELETE", fmt.Sprintf("/api/books/%d", book), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
