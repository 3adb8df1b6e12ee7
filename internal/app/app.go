// Package app wires configuration into the database handle and the service
// graph shared by the server and the cron runner.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"library-circulation-backend/internal/config"
	"library-circulation-backend/internal/logger"
	"library-circulation-backend/internal/repository"
	"library-circulation-backend/internal/service"

	_ "github.com/lib/pq"
)

type Services struct {
	Book        service.BookService
	Member      service.MemberService
	Circulation service.CirculationService
	Fine        service.FineService
}

// OpenDatabase opens the Postgres pool and verifies the connection.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if cfg.Database.ConnMaxLifetimeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established", "host", cfg.Database.Host, "database", cfg.Database.Database)
	return db, nil
}

// NewEmailService picks the notification transport from the email provider.
func NewEmailService(cfg config.EmailConfig, libraryName string) service.EmailService {
	switch cfg.Provider {
	case "smtp":
		logger.Info("SMTP configuration", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)
		return service.NewEmailService(
			service.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.From),
			libraryName,
		)
	case "sendgrid":
		logger.Info("Using SendGrid for notifications", "from", cfg.From)
		return service.NewEmailService(service.NewSendGridSender(cfg.SendGridAPIKey, cfg.From, cfg.FromName), libraryName)
	default:
		logger.Info("Email delivery disabled, notifications are logged only")
		return service.NewLogEmailService()
	}
}

func NewServices(cfg *config.Config, store repository.Store) *Services {
	opts := []service.Option{
		service.WithPolicy(cfg.LendingPolicy()),
		service.WithEmailService(NewEmailService(cfg.Email, cfg.Library.Name)),
	}
	return &Services{
		Book:        service.NewBookService(store, opts...),
		Member:      service.NewMemberService(store, opts...),
		Circulation: service.NewCirculationService(store, opts...),
		Fine:        service.NewFineService(store, opts...),
	}
}
