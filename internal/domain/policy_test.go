package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLendingPolicy_DueDate(t *testing.T) {
	borrowed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC), DefaultLendingPolicy.DueDate(borrowed))
}

func TestLendingPolicy_OverdueDays(t *testing.T) {
	due := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		returned time.Time
		want     int
	}{
		{"before due", due.Add(-time.Hour), 0},
		{"exactly due", due, 0},
		{"later same day", due.Add(5 * time.Hour), 0},
		{"next morning", time.Date(2025, 3, 16, 1, 0, 0, 0, time.UTC), 1},
		{"five days", due.Add(5 * 24 * time.Hour), 5},
		{"non-utc zone", due.Add(48 * time.Hour).In(time.FixedZone("X", -11*3600)), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultLendingPolicy.OverdueDays(due, tt.returned))
		})
	}
}

func TestLendingPolicy_FineAmountCents(t *testing.T) {
	assert.Equal(t, int32(0), DefaultLendingPolicy.FineAmountCents(0))
	assert.Equal(t, int32(250), DefaultLendingPolicy.FineAmountCents(5))
	assert.Equal(t, 2.5, Fine{AmountCents: DefaultLendingPolicy.FineAmountCents(5)}.Amount())
}

func TestError_Is(t *testing.T) {
	err := InvalidOperation("book already returned")
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.ErrorIs(t, err, ErrAlreadyReturned)
	assert.NotErrorIs(t, err, ErrFineAlreadyPaid)
	assert.NotErrorIs(t, NotFound("book", 1), ErrInvalidOperation)

	kind, ok := KindOf(ValidationFailed([]string{"a", "b"}))
	assert.True(t, ok)
	assert.Equal(t, KindValidationFailed, kind)
	assert.Equal(t, "validation failed: a; b", ValidationFailed([]string{"a", "b"}).Error())
}
