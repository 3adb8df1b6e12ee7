package service

import (
	"context"
	"fmt"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"
)

// MailSender delivers one plain-text message.
type MailSender interface {
	Send(ctx context.Context, to, toName, subject, body string) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) MailSender {
	return &smtpSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *smtpSender) Send(ctx context.Context, to, toName, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", to, toName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	logger.ExternalServiceCall("smtp", "send", "to", to)
	err := s.dialer.DialAndSend(m)
	logger.ExternalServiceResult("smtp", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

type sendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) MailSender {
	return &sendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridSender) Send(ctx context.Context, to, toName, subject, body string) error {
	msg := mail.NewSingleEmail(mail.NewEmail(s.fromName, s.fromEmail), subject, mail.NewEmail(toName, to), body, "")

	logger.ExternalServiceCall("sendgrid", "send", "to", to)
	resp, err := s.client.Send(msg)
	if err == nil && resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	return nil
}

// logSender only records what would have been sent.
type logSender struct{}

func (logSender) Send(ctx context.Context, to, toName, subject, body string) error {
	logger.InfoContext(ctx, "Email suppressed", "to", to, "subject", subject)
	return nil
}

type emailService struct {
	sender      MailSender
	libraryName string
}

func NewEmailService(sender MailSender, libraryName string) EmailService {
	if libraryName == "" {
		libraryName = "The Library"
	}
	return &emailService{sender: sender, libraryName: libraryName}
}

// NewLogEmailService returns an EmailService that logs instead of sending.
func NewLogEmailService() EmailService {
	return NewEmailService(logSender{}, "")
}

func (s *emailService) SendFineNotification(ctx context.Context, member domain.Member, fine domain.Fine, overdueDays int) error {
	subject := fmt.Sprintf("Overdue fine of %.2f issued", fine.Amount())
	body := fmt.Sprintf("Hello %s,\n\nA book was returned %d day(s) late, so a fine of %.2f has been added to your account (fine #%d).\nBorrowing stays blocked until it is paid.\n\nBest regards,\n%s",
		member.Name, overdueDays, fine.Amount(), fine.ID, s.libraryName)
	return s.sender.Send(ctx, member.Email, member.Name, subject, body)
}

func (s *emailService) SendSuspensionNotification(ctx context.Context, member domain.Member) error {
	body := fmt.Sprintf("Hello %s,\n\nYour membership %s has been suspended because of overdue loans. Return the overdue books and settle any fines to have it reactivated.\n\nBest regards,\n%s",
		member.Name, member.MembershipNumber, s.libraryName)
	return s.sender.Send(ctx, member.Email, member.Name, "Membership suspended", body)
}

func (s *emailService) SendReactivationNotification(ctx context.Context, member domain.Member) error {
	body := fmt.Sprintf("Hello %s,\n\nYour membership %s is active again. You can borrow books as usual.\n\nBest regards,\n%s",
		member.Name, member.MembershipNumber, s.libraryName)
	return s.sender.Send(ctx, member.Email, member.Name, "Membership reactivated", body)
}
