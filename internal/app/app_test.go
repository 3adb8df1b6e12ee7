package app

import (
	"context"
	"testing"

	"library-circulation-backend/internal/config"
	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailService_Providers(t *testing.T) {
	for _, provider := range []string{"none", "smtp", "sendgrid"} {
		cfg := config.EmailConfig{
			Provider:       provider,
			From:           "desk@library.test",
			SMTP:           config.SMTPConfig{Host: "localhost", Port: 2525},
			SendGridAPIKey: "SG.test",
		}
		assert.NotNil(t, NewEmailService(cfg, "City Library"), provider)
	}
}

func TestNewServices_UsesConfiguredPolicy(t *testing.T) {
	cfg := &config.Config{Library: config.LibraryConfig{MaxBooksPerMember: 1}}
	svc := NewServices(cfg, memory.NewStore())
	ctx := context.Background()

	member := &domain.Member{Name: "Ada", Email: "ada@library.test", MembershipNumber: "M-1"}
	require.NoError(t, svc.Member.CreateMember(ctx, member))
	first := &domain.Book{ISBN: "9780000000001", Title: "One", Author: "A", TotalCopies: 1, AvailableCopies: 1}
	second := &domain.Book{ISBN: "9780000000002", Title: "Two", Author: "A", TotalCopies: 1, AvailableCopies: 1}
	require.NoError(t, svc.Book.CreateBook(ctx, first))
	require.NoError(t, svc.Book.CreateBook(ctx, second))

	_, err := svc.Circulation.BorrowBook(ctx, member.ID, first.ID)
	require.NoError(t, err)

	result, err := svc.Circulation.ValidateBorrowing(ctx, member.ID, second.ID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "member has reached the maximum limit of 1 books")
}
