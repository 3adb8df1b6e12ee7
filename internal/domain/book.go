package domain

import "time"

type BookStatus string

const (
	BookStatusAvailable   BookStatus = "available"
	BookStatusBorrowed    BookStatus = "borrowed"
	BookStatusMaintenance BookStatus = "maintenance"
	BookStatusReserved    BookStatus = "reserved"
)

func (s BookStatus) Valid() bool {
	switch s {
	case BookStatusAvailable, BookStatusBorrowed, BookStatusMaintenance, BookStatusReserved:
		return true
	}
	return false
}

type Book struct {
	ID              int32      `json:"id"`
	ISBN            string     `json:"isbn"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Category        string     `json:"category"`
	TotalCopies     int32      `json:"total_copies"`
	AvailableCopies int32      `json:"available_copies"`
	Status          BookStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BookPatch holds the descriptive fields a client may change. Nil fields are
// left untouched.
type BookPatch struct {
	ISBN     *string
	Title    *string
	Author   *string
	Category *string
}

func (p BookPatch) Empty() bool {
	return p.ISBN == nil && p.Title == nil && p.Author == nil && p.Category == nil
}

// BookAvailability is the slice of a book owned by the availability state
// machine.
type BookAvailability struct {
	TotalCopies     int32
	AvailableCopies int32
	Status          BookStatus
}
