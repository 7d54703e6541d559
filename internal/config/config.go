package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Bank      BankConfig      `yaml:"bank"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BankConfig contains ledger policy settings
type BankConfig struct {
	InitialReserveCents      int64 `yaml:"initial_reserve_cents"`
	DefaultTxnLimitCents     int64 `yaml:"default_transaction_limit_cents"`
	CardBillDueDays          int   `yaml:"card_bill_due_days"`
	CardBillCycleDays        int   `yaml:"card_bill_cycle_days"`
	CardBillMinimumDuePct    int   `yaml:"card_bill_minimum_due_pct"`
	EMIUpcomingWindowDays    int   `yaml:"emi_upcoming_window_days"`
	LoanInterestDueDays      int   `yaml:"loan_interest_due_days"`
	LoanInterestPeriodDays   int   `yaml:"loan_interest_period_days"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	GenerateCardBills         string `yaml:"generate_card_bills"`
	GenerateLoanInterestBills string `yaml:"generate_loan_interest_bills"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

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

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Bank policy defaults
	if c.Bank.InitialReserveCents == 0 {
		c.Bank.InitialReserveCents = 10_000_000_000 // 100,000,000.00
	}
	if c.Bank.DefaultTxnLimitCents == 0 {
		c.Bank.DefaultTxnLimitCents = 5_000_000 // 50,000.00
	}
	if c.Bank.CardBillDueDays == 0 {
		c.Bank.CardBillDueDays = 20
	}
	if c.Bank.CardBillCycleDays == 0 {
		c.Bank.CardBillCycleDays = 30
	}
	if c.Bank.CardBillMinimumDuePct == 0 {
		c.Bank.CardBillMinimumDuePct = 5
	}
	if c.Bank.EMIUpcomingWindowDays == 0 {
		c.Bank.EMIUpcomingWindowDays = 30
	}
	if c.Bank.LoanInterestDueDays == 0 {
		c.Bank.LoanInterestDueDays = 15
	}
	if c.Bank.LoanInterestPeriodDays == 0 {
		c.Bank.LoanInterestPeriodDays = 30
	}

	// Scheduler defaults
	if c.Scheduler.GenerateCardBills == "" {
		c.Scheduler.GenerateCardBills = "0 0 0 * * *" // midnight UTC
	}
	if c.Scheduler.GenerateLoanInterestBills == "" {
		c.Scheduler.GenerateLoanInterestBills = "0 0 2 * * *" // 2 AM UTC
	}

	return nil
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

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
