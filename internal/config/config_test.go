package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Invoice.DefaultDueDays)
	assert.Equal(t, "INV", cfg.Invoice.NumberPrefix)
	assert.Equal(t, "EUR", cfg.Currency.Ledger)
	assert.True(t, cfg.TaxRate().IsZero())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Studio.Name = "Studio Lumière"
	cfg.Invoice.DefaultTaxRate = 0.2
	cfg.Currency.Rates = map[string]float64{"EUR": 1, "USD": 1.08}
	require.True(t, cfg.EnsureStudioID())
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Studio Lumière", loaded.Studio.Name)
	assert.Equal(t, cfg.StudioUUID(), loaded.StudioUUID())
	assert.Equal(t, "0.2", loaded.TaxRate().String())
	assert.Equal(t, "1.08", loaded.CurrencyRates()["USD"].String())
	assert.False(t, loaded.EnsureStudioID())
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STUDIOLEDGER_DISPLAY_CURRENCY=USD\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("STUDIOLEDGER_DISPLAY_CURRENCY") })
	t.Setenv("STUDIOLEDGER_DB_PATH", filepath.Join(dir, "other.db"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "other.db"), cfg.Database.Path)
	assert.Equal(t, "USD", cfg.Currency.Display)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tax rate", func(c *Config) { c.Invoice.DefaultTaxRate = 1.2 }},
		{"studio id", func(c *Config) { c.Studio.ID = "studio-1" }},
		{"delimiter", func(c *Config) { c.Export.Delimiter = ";;" }},
		{"quote delimiter", func(c *Config) { c.Export.Delimiter = `"` }},
		{"rate", func(c *Config) { c.Currency.Rates["USD"] = 0 }},
		{"prefix", func(c *Config) { c.Invoice.NumberPrefix = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_NormalizesPrefix(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Invoice.NumberPrefix = " studio "
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "STUDIO", cfg.Invoice.NumberPrefix)
}

func TestExportDelimiter(t *testing.T) {
	cfg := DefaultConfig()
	for in, want := range map[string]rune{"": ',', ";": ';', `\t`: '\t', "tab": '\t'} {
		cfg.Export.Delimiter = in
		got, err := cfg.ExportDelimiter()
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
