package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/andy/studioledger/internal/logger"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const appName = "studioledger"

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Studio that owns every invoice in this ledger
	Studio StudioConfig `yaml:"studio"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	Currency CurrencyConfig   `yaml:"currency"`
	Export   ExportConfig     `yaml:"export"`
	Log      logger.LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database
}

type StudioConfig struct {
	ID      string `yaml:"id"` // Generated on first run
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
}

type InvoiceConfig struct {
	DefaultDueDays int     `yaml:"default_due_days"` // Days until invoice due
	DefaultTaxRate float64 `yaml:"default_tax_rate"` // Tax rate as decimal (0.2 = 20%)
	OutputDir      string  `yaml:"output_dir"`       // Directory for generated PDFs
	NumberPrefix   string  `yaml:"number_prefix"`    // Invoice number prefix (e.g., "INV")
}

type CurrencyConfig struct {
	Ledger  string             `yaml:"ledger"`  // Currency invoices are issued in
	Display string             `yaml:"display"` // Currency reports are shown in
	Rates   map[string]float64 `yaml:"rates"`   // Units per common base unit
}

type ExportConfig struct {
	Delimiter string `yaml:"delimiter"` // Single character, "\t" for tab
	Dir       string `yaml:"dir"`
}

// Dir returns ~/.config/studioledger
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", appName)
	}
	return filepath.Join(homeDir, ".config", appName)
}

// DefaultConfigPath returns ~/.config/studioledger/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := Dir()

	logCfg := logger.DefaultConfig()
	// The TUI owns the terminal, so logs go to a file by default.
	logCfg.Output = filepath.Join(dir, appName+".log")

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, appName+".db"),
		},
		Invoice: InvoiceConfig{
			DefaultDueDays: 30,
			DefaultTaxRate: 0.0,
			OutputDir:      filepath.Join(dir, "invoices"),
			NumberPrefix:   "INV",
		},
		Currency: CurrencyConfig{
			Ledger:  "EUR",
			Display: "EUR",
			Rates:   map[string]float64{"EUR": 1},
		},
		Export: ExportConfig{
			Delimiter: ",",
			Dir:       filepath.Join(dir, "exports"),
		},
		Log: logCfg,
	}
}

// Load loads config from the given path, or returns defaults if file doesn't
// exist. Environment overrides are applied on top, after reading any .env
// file in the working directory or next to the config file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	loadDotEnv(".env", filepath.Join(filepath.Dir(path), ".env"))
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// loadDotEnv reads whichever files exist. godotenv never overrides a
// variable that is already set.
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"STUDIOLEDGER_DB_PATH":          &c.Database.Path,
		"STUDIOLEDGER_STUDIO_ID":        &c.Studio.ID,
		"STUDIOLEDGER_LOG_LEVEL":        &c.Log.Level,
		"STUDIOLEDGER_LOG_OUTPUT":       &c.Log.Output,
		"STUDIOLEDGER_DISPLAY_CURRENCY": &c.Currency.Display,
		"STUDIOLEDGER_EXPORT_DIR":       &c.Export.Dir,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*field = v
		}
	}
}

// Validate reports settings that would make the ledger misbehave. It also
// normalizes the invoice number prefix to upper case.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Studio.ID != "" {
		if _, err := uuid.Parse(c.Studio.ID); err != nil {
			return fmt.Errorf("studio.id: %w", err)
		}
	}
	if c.Invoice.DefaultTaxRate < 0 || c.Invoice.DefaultTaxRate > 1 {
		return errors.New("invoice.default_tax_rate must be between 0 and 1")
	}
	if c.Invoice.DefaultDueDays < 0 {
		return errors.New("invoice.default_due_days cannot be negative")
	}
	c.Invoice.NumberPrefix = strings.ToUpper(strings.TrimSpace(c.Invoice.NumberPrefix))
	if c.Invoice.NumberPrefix == "" {
		return errors.New("invoice.number_prefix is required")
	}
	if _, err := c.ExportDelimiter(); err != nil {
		return err
	}
	for code, rate := range c.Currency.Rates {
		if rate <= 0 {
			return fmt.Errorf("currency.rates.%s must be positive", code)
		}
	}
	return nil
}

// StudioUUID returns the configured studio id, or uuid.Nil if none is set.
func (c *Config) StudioUUID() uuid.UUID {
	id, err := uuid.Parse(c.Studio.ID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// EnsureStudioID assigns a fresh studio id when none is configured and
// reports whether it did.
func (c *Config) EnsureStudioID() bool {
	if c.StudioUUID() != uuid.Nil {
		return false
	}
	c.Studio.ID = uuid.NewString()
	return true
}

// TaxRate returns the default tax rate as a decimal.
func (c *Config) TaxRate() decimal.Decimal {
	return decimal.NewFromFloat(c.Invoice.DefaultTaxRate)
}

// CurrencyRates returns the configured exchange rates as decimals.
func (c *Config) CurrencyRates() map[string]decimal.Decimal {
	rates := make(map[string]decimal.Decimal, len(c.Currency.Rates))
	for code, rate := range c.Currency.Rates {
		rates[strings.ToUpper(code)] = decimal.NewFromFloat(rate)
	}
	return rates
}

// ExportDelimiter parses export.delimiter into a rune.
func (c *Config) ExportDelimiter() (rune, error) {
	d := c.Export.Delimiter
	switch d {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(d) != 1 {
		return 0, fmt.Errorf("export.delimiter must be a single character, got %q", d)
	}
	r, _ := utf8.DecodeRuneInString(d)
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("export.delimiter cannot be %q", d)
	}
	return r, nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (for database, invoices, etc.)
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{
		filepath.Dir(c.Database.Path),
		c.Invoice.OutputDir,
		c.Export.Dir,
	} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
