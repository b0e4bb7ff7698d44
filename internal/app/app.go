package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"
	"time"

	"github.com/andy/studioledger/internal/config"
	"github.com/andy/studioledger/internal/crypto"
	"github.com/andy/studioledger/internal/db"
	"github.com/andy/studioledger/internal/export"
	"github.com/andy/studioledger/internal/logger"
	"github.com/andy/studioledger/internal/repository"
	"github.com/andy/studioledger/internal/service"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config     *config.Config
	ConfigPath string
	DB         *db.DB
	StudioID   uuid.UUID

	// Repositories
	ClientRepo  repository.ClientRepository
	InvoiceRepo repository.InvoiceRepository
	PaymentRepo repository.PaymentRepository

	// Services
	InvoiceService service.InvoiceService
	LedgerService  service.LedgerService
	ReportService  service.ReportService

	// Clock is the single source of "now" for services and commands
	Clock service.Clock

	logCloser io.Closer
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Setting up logging
// 3. Getting encryption key from keyring
// 4. Opening database and running migrations
// 5. Creating repositories and services
func New(ctx context.Context) (*App, error) {
	path := config.DefaultConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a, err := NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.ConfigPath = path
	return a, nil
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	// Ensure all necessary directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logCloser, err := logger.Setup(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	a := &App{Config: cfg, ConfigPath: config.DefaultConfigPath(), Clock: time.Now, logCloser: logCloser}
	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init() error {
	cfg := a.Config

	// First run gets a studio identity that sticks
	if cfg.EnsureStudioID() {
		if err := cfg.Save(a.ConfigPath); err != nil {
			return fmt.Errorf("failed to save studio id: %w", err)
		}
		log.Info().Str("studio_id", cfg.Studio.ID).Msg("studio id generated")
	}
	a.StudioID = cfg.StudioUUID()

	keys := crypto.NewKeyring()
	password, created, err := databaseKey(keys)
	if err != nil {
		return err
	}

	// Open the database with encryption
	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		forgetNewKey(keys, created)
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.DB = database

	// Run migrations to ensure schema is up to date
	if err := database.RunMigrations(); err != nil {
		forgetNewKey(keys, created)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	delimiter, err := cfg.ExportDelimiter()
	if err != nil {
		return err
	}

	// Create repositories
	a.ClientRepo = repository.NewClientRepo(database)
	a.InvoiceRepo = repository.NewInvoiceRepo(database)
	a.PaymentRepo = repository.NewPaymentRepo(database)

	// Create services with their dependencies
	a.InvoiceService = service.NewInvoiceService(a.StudioID, service.InvoiceDefaults{
		NumberPrefix: cfg.Invoice.NumberPrefix,
		DueDays:      cfg.Invoice.DefaultDueDays,
		TaxRate:      cfg.TaxRate(),
	}, a.InvoiceRepo, a.PaymentRepo, a.ClientRepo, a.Clock)

	a.LedgerService = service.NewLedgerService(a.StudioID, a.InvoiceRepo, a.PaymentRepo, a.Clock)

	a.ReportService, err = service.NewReportService(a.StudioID, service.ReportSettings{
		LedgerCurrency:  cfg.Currency.Ledger,
		DisplayCurrency: cfg.Currency.Display,
		Rates:           cfg.CurrencyRates(),
		Delimiter:       delimiter,
		Issuer: export.Issuer{
			Name:     cfg.Studio.Name,
			Email:    cfg.Studio.Email,
			Address:  cfg.Studio.Address,
			Currency: cfg.Currency.Ledger,
		},
		PDFDir: cfg.Invoice.OutputDir,
	}, a.InvoiceRepo, a.PaymentRepo, a.ClientRepo)
	if err != nil {
		return fmt.Errorf("failed to create report service: %w", err)
	}

	log.Debug().Str("db", cfg.Database.Path).Msg("app initialized")
	return nil
}

// databaseKey returns the stored encryption key, prompting for a new one on
// first run. created is true when the key was set up just now.
func databaseKey(keyring crypto.Keyring) (password string, created bool, err error) {
	password, err = keyring.GetKey()
	if err == nil {
		return password, false, nil
	}
	if !errors.Is(err, crypto.ErrKeyNotFound) {
		log.Warn().Err(err).Msg("keyring unavailable")
	}
	if !keyring.IsAvailable() {
		return "", false, fmt.Errorf("no keyring available to store the database key; set %s instead", crypto.EnvKey)
	}

	// No key exists, prompt user to set one
	fmt.Println("Setting up database encryption for the first time...")
	password, err = promptForPassword()
	if err != nil {
		return "", false, fmt.Errorf("failed to set password: %w", err)
	}

	// Store the key in keyring
	if err := keyring.SetKey(password); err != nil {
		return "", false, fmt.Errorf("failed to store encryption key: %w", err)
	}
	return password, true, nil
}

// forgetNewKey drops a key stored during a first run that never got a
// usable database, so the next start prompts again.
func forgetNewKey(keyring crypto.Keyring, created bool) {
	if !created {
		return
	}
	if err := keyring.DeleteKey(); err != nil {
		log.Warn().Err(err).Msg("failed to remove new database key")
	}
}

// Now returns the current instant from the app clock
func (a *App) Now() time.Time {
	return a.Clock()
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}

// promptForPassword prompts user for a new database password (first run)
// This should be called when keyring has no stored key
func promptForPassword() (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("no database key found; set %s or run interactively", crypto.EnvKey)
	}

	fmt.Println()
	fmt.Println("Your invoices and payments will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	// Read password securely (no echo)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	// Confirm password
	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after confirmation
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	// Check if passwords match
	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(a.ConfigPath)
}
