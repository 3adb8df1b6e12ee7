package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"library-circulation-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestEmailService_FineNotification(t *testing.T) {
	sender := &MockMailSender{}
	svc := NewEmailService(sender, "City Library")
	member := domain.Member{ID: 1, Name: "Ada", Email: "ada@example.com", MembershipNumber: "M-1"}
	fine := domain.Fine{ID: 9, AmountCents: 250}

	sender.On("Send", mock.Anything, "ada@example.com", "Ada", "Overdue fine of 2.50 issued",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "5 day(s) late") && strings.Contains(body, "City Library")
		})).Return(nil).Once()

	assert.NoError(t, svc.SendFineNotification(context.Background(), member, fine, 5))
	sender.AssertExpectations(t)
}

func TestEmailService_StatusNotifications(t *testing.T) {
	sender := &MockMailSender{}
	svc := NewEmailService(sender, "")
	member := domain.Member{ID: 1, Name: "Ada", Email: "ada@example.com", MembershipNumber: "M-1"}

	sender.On("Send", mock.Anything, member.Email, member.Name, "Membership suspended", mock.Anything).Return(nil).Once()
	sender.On("Send", mock.Anything, member.Email, member.Name, "Membership reactivated", mock.Anything).Return(errors.New("smtp down")).Once()

	assert.NoError(t, svc.SendSuspensionNotification(context.Background(), member))
	assert.EqualError(t, svc.SendReactivationNotification(context.Background(), member), "smtp down")
	sender.AssertExpectations(t)
}

func TestLogEmailService(t *testing.T) {
	svc := NewLogEmailService()
	assert.NoError(t, svc.SendSuspensionNotification(context.Background(), domain.Member{Email: "x@example.com"}))
}
