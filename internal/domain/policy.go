package domain

import "time"

// LendingPolicy holds the circulation constants.
type LendingPolicy struct {
	LoanPeriod                 time.Duration
	MaxBooksPerMember          int
	FinePerDayCents            int32
	SuspensionOverdueThreshold int
}

var DefaultLendingPolicy = LendingPolicy{
	LoanPeriod:                 14 * 24 * time.Hour,
	MaxBooksPerMember:          3,
	FinePerDayCents:            50,
	SuspensionOverdueThreshold: 3,
}

func (p LendingPolicy) DueDate(borrowedAt time.Time) time.Time {
	return borrowedAt.Add(p.LoanPeriod)
}

// OverdueDays counts whole UTC calendar days between the due date and the
// return. Returns on or before the due date are never overdue.
func (p LendingPolicy) OverdueDays(dueDate, returnedAt time.Time) int {
	if !returnedAt.After(dueDate) {
		return 0
	}
	days := int(utcDay(returnedAt).Sub(utcDay(dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func (p LendingPolicy) FineAmountCents(overdueDays int) int32 {
	if overdueDays <= 0 {
		return 0
	}
	return int32(overdueDays) * p.FinePerDayCents
}

func utcDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
