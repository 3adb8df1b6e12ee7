package http

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/service"
)

type createBookRequest struct {
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Category        string `json:"category"`
	TotalCopies     *int32 `json:"total_copies"`
	AvailableCopies *int32 `json:"available_copies"`
}

func validISBN(isbn string) bool {
	n := utf8.RuneCountInString(isbn)
	return n >= 10 && n <= 20
}

func (req createBookRequest) validate() []string {
	var errs []string
	if strings.TrimSpace(req.ISBN) == "" {
		errs = append(errs, "ISBN is required")
	} else if !validISBN(req.ISBN) {
		errs = append(errs, "ISBN must be 10-20 characters")
	}
	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, "Title is required")
	}
	if strings.TrimSpace(req.Author) == "" {
		errs = append(errs, "Author is required")
	}
	if req.TotalCopies != nil && *req.TotalCopies < 1 {
		errs = append(errs, "Total copies must be at least 1")
	}
	if req.AvailableCopies != nil && *req.AvailableCopies < 0 {
		errs = append(errs, "Available copies must be 0 or more")
	}
	return errs
}

// toDomain applies the defaults: one copy, all of them on the shelf.
func (req createBookRequest) toDomain() *domain.Book {
	b := &domain.Book{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		TotalCopies: 1,
	}
	if req.TotalCopies != nil {
		b.TotalCopies = *req.TotalCopies
	}
	b.AvailableCopies = b.TotalCopies
	if req.AvailableCopies != nil {
		b.AvailableCopies = *req.AvailableCopies
	}
	return b
}

type updateBookRequest struct {
	ISBN        *string `json:"isbn"`
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Category    *string `json:"category"`
	TotalCopies *int32  `json:"total_copies"`
	Status      *string `json:"status"`
}

func (req updateBookRequest) validate() []string {
	var errs []string
	if req.ISBN != nil && !validISBN(*req.ISBN) {
		errs = append(errs, "ISBN must be 10-20 characters")
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		errs = append(errs, "Title cannot be empty")
	}
	if req.Author != nil && strings.TrimSpace(*req.Author) == "" {
		errs = append(errs, "Author cannot be empty")
	}
	if req.TotalCopies != nil && *req.TotalCopies < 1 {
		errs = append(errs, "Total copies must be at least 1")
	}
	if req.Status != nil && !domain.BookStatus(*req.Status).Valid() {
		errs = append(errs, "Invalid status")
	}
	return errs
}

func (req updateBookRequest) toUpdate() service.BookUpdate {
	u := service.BookUpdate{
		BookPatch: domain.BookPatch{
			ISBN:     req.ISBN,
			Title:    req.Title,
			Author:   req.Author,
			Category: req.Category,
		},
		TotalCopies: req.TotalCopies,
	}
	if req.Status != nil {
		s := domain.BookStatus(*req.Status)
		u.Status = &s
	}
	return u
}

type bookStatusRequest struct {
	Status string `json:"status"`
}

func (req bookStatusRequest) validate() []string {
	if req.Status == "" {
		return []string{"Status is required"}
	}
	if !domain.BookStatus(req.Status).Valid() {
		return []string{"Invalid status"}
	}
	return nil
}

type createMemberRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	MembershipNumber string `json:"membership_number"`
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (req createMemberRequest) validate() []string {
	var errs []string
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "Name is required")
	}
	if !validEmail(req.Email) {
		errs = append(errs, "Valid email is required")
	}
	if strings.TrimSpace(req.MembershipNumber) == "" {
		errs = append(errs, "Membership number is required")
	}
	return errs
}

type updateMemberRequest struct {
	Name             *string `json:"name"`
	Email            *string `json:"email"`
	MembershipNumber *string `json:"membership_number"`
}

func (req updateMemberRequest) validate() []string {
	var errs []string
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errs = append(errs, "Name cannot be empty")
	}
	if req.Email != nil && !validEmail(*req.Email) {
		errs = append(errs, "Valid email is required")
	}
	if req.MembershipNumber != nil && strings.TrimSpace(*req.MembershipNumber) == "" {
		errs = append(errs, "Membership number cannot be empty")
	}
	return errs
}

type borrowRequest struct {
	MemberID int32 `json:"member_id"`
	BookID   int32 `json:"book_id"`
}
