package http

import (
	"net/http"

	"library-circulation-backend/internal/service"

	"github.com/gorilla/mux"
)

// Services are the dependencies of the HTTP API.
type Services struct {
	Book        service.BookService
	Member      service.MemberService
	Circulation service.CirculationService
	Fine        service.FineService
	DB          Pinger
}

// NewRouter registers every route. Fixed paths are registered before their
// {id} siblings so mux matches them first.
func NewRouter(svc Services) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware, LoggingMiddleware, RecoveryMiddleware)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Message: "Route not found"})
	})

	health := NewHealthHandler(svc.DB)
	router.HandleFunc("/health", health.Health).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	books := NewBookHandler(svc.Book)
	api.HandleFunc("/books", books.CreateBook).Methods("POST")
	api.HandleFunc("/books", books.ListBooks).Methods("GET")
	api.HandleFunc("/books/available", books.ListAvailableBooks).Methods("GET")
	api.HandleFunc("/books/{id:[0-9]+}", books.GetBook).Methods("GET")
	api.HandleFunc("/books/{id:[0-9]+}", books.UpdateBook).Methods("PUT")
	api.HandleFunc("/books/{id:[0-9]+}", books.DeleteBook).Methods("DELETE")
	api.HandleFunc("/books/{id:[0-9]+}/status", books.UpdateBookStatus).Methods("PUT")

	members := NewMemberHandler(svc.Member, svc.Circulation)
	api.HandleFunc("/members", members.CreateMember).Methods("POST")
	api.HandleFunc("/members", members.ListMembers).Methods("GET")
	api.HandleFunc("/members/{id:[0-9]+}", members.GetMember).Methods("GET")
	api.HandleFunc("/members/{id:[0-9]+}", members.UpdateMember).Methods("PUT")
	api.HandleFunc("/members/{id:[0-9]+}", members.DeleteMember).Methods("DELETE")
	api.HandleFunc("/members/{id:[0-9]+}/books", members.ListBorrowedBooks).Methods("GET")
	api.HandleFunc("/members/{id:[0-9]+}/eligibility", members.CheckEligibility).Methods("GET")
	api.HandleFunc("/members/{id:[0-9]+}/suspend", members.SuspendMember).Methods("POST")
	api.HandleFunc("/members/{id:[0-9]+}/activate", members.ActivateMember).Methods("POST")

	txs := NewTransactionHandler(svc.Circulation)
	api.HandleFunc("/transactions/borrow", txs.BorrowBook).Methods("POST")
	api.HandleFunc("/transactions/overdue", txs.ListOverdue).Methods("GET")
	api.HandleFunc("/transactions/update-overdue", txs.UpdateOverdue).Methods("POST")
	api.HandleFunc("/transactions/{id:[0-9]+}", txs.GetTransaction).Methods("GET")
	api.HandleFunc("/transactions/{id:[0-9]+}/return", txs.ReturnBook).Methods("POST")

	fines := NewFineHandler(svc.Fine)
	api.HandleFunc("/fines", fines.ListFines).Methods("GET")
	api.HandleFunc("/fines/member/{memberId:[0-9]+}", fines.ListMemberFines).Methods("GET")
	api.HandleFunc("/fines/member/{memberId:[0-9]+}/unpaid", fines.ListUnpaidFines).Methods("GET")
	api.HandleFunc("/fines/{id:[0-9]+}", fines.GetFine).Methods("GET")
	api.HandleFunc("/fines/{id:[0-9]+}/pay", fines.PayFine).Methods("POST")

	return router
}
