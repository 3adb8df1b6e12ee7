package config

import (
	"fmt"
	"os"
	"time"

	"library-circulation-backend/internal/domain"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Email     EmailConfig     `yaml:"email"`
	Library   LibraryConfig   `yaml:"library"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ReadTimeoutSeconds     int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	User                   string `yaml:"user"`
	Password               string `yaml:"password"`
	Database               string `yaml:"database"`
	SSLMode                string `yaml:"ssl_mode"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// EmailConfig selects how member notifications are delivered
type EmailConfig struct {
	Provider       string     `yaml:"provider"` // "none", "smtp" or "sendgrid"
	From           string     `yaml:"from"`
	FromName       string     `yaml:"from_name"`
	SMTP           SMTPConfig `yaml:"smtp"`
	SendGridAPIKey string     `yaml:"sendgrid_api_key"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// LibraryConfig overrides the lending policy. Zero values keep the defaults.
type LibraryConfig struct {
	Name                       string `yaml:"name"`
	LoanPeriodDays             int    `yaml:"loan_period_days"`
	MaxBooksPerMember          int    `yaml:"max_books_per_member"`
	FinePerDayCents            int32  `yaml:"fine_per_day_cents"`
	SuspensionOverdueThreshold int    `yaml:"suspension_overdue_threshold"`
}

// SchedulerConfig contains cron schedule settings (seconds precision, UTC)
type SchedulerConfig struct {
	MarkOverdueTransactions string `yaml:"mark_overdue_transactions"`
	EvaluateSuspensions     string `yaml:"evaluate_suspensions"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes, applies environment overrides and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		fmt.Sscanf(val, "%d", dst)
	}
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	envString("SERVER_HOST", &c.Server.Host)
	envInt("SERVER_PORT", &c.Server.Port)

	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Database)
	envString("DB_SSL_MODE", &c.Database.SSLMode)

	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)

	envString("EMAIL_PROVIDER", &c.Email.Provider)
	envString("EMAIL_FROM", &c.Email.From)
	envString("SMTP_HOST", &c.Email.SMTP.Host)
	envInt("SMTP_PORT", &c.Email.SMTP.Port)
	envString("SMTP_USER", &c.Email.SMTP.User)
	envString("SMTP_PASSWORD", &c.Email.SMTP.Password)
	envString("SENDGRID_API_KEY", &c.Email.SendGridAPIKey)
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 15
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	switch c.Email.Provider {
	case "", "none":
		c.Email.Provider = "none"
	case "smtp":
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.Email.SMTP.Port <= 0 || c.Email.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Email.SMTP.Port)
		}
	case "sendgrid":
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("SendGrid API key is required")
		}
	default:
		return fmt.Errorf("unknown email provider: %q", c.Email.Provider)
	}
	if c.Email.Provider != "none" && c.Email.From == "" {
		return fmt.Errorf("email from address is required")
	}

	if c.Library.LoanPeriodDays < 0 || c.Library.MaxBooksPerMember < 0 ||
		c.Library.FinePerDayCents < 0 || c.Library.SuspensionOverdueThreshold < 0 {
		return fmt.Errorf("library policy values must not be negative")
	}

	if c.Scheduler.MarkOverdueTransactions == "" {
		c.Scheduler.MarkOverdueTransactions = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.EvaluateSuspensions == "" {
		c.Scheduler.EvaluateSuspensions = "0 30 1 * * *" // 1:30 AM UTC
	}

	return nil
}

// LendingPolicy returns the default policy with the configured overrides.
func (c *Config) LendingPolicy() domain.LendingPolicy {
	p := domain.DefaultLendingPolicy
	if c.Library.LoanPeriodDays > 0 {
		p.LoanPeriod = time.Duration(c.Library.LoanPeriodDays) * 24 * time.Hour
	}
	if c.Library.MaxBooksPerMember > 0 {
		p.MaxBooksPerMember = c.Library.MaxBooksPerMember
	}
	if c.Library.FinePerDayCents > 0 {
		p.FinePerDayCents = c.Library.FinePerDayCents
	}
	if c.Library.SuspensionOverdueThreshold > 0 {
		p.SuspensionOverdueThreshold = c.Library.SuspensionOverdueThreshold
	}
	return p
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
