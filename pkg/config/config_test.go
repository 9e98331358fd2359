package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("pricing")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "pricing", cfg.Server.ServiceName)
	assert.Equal(t, 10, cfg.Server.RequestTimeout)

	assert.Equal(t, "super-secret-key", cfg.Auth.SecretKey)
	assert.Equal(t, 60, cfg.Auth.AccessTokenExpireMinutes)

	assert.Equal(t, "model_enhanced.json", cfg.Pricing.ModelPath)
	assert.Equal(t, 200, cfg.Pricing.ScanPoints)
	assert.False(t, cfg.Pricing.AllowStubFallback)
	assert.Equal(t, 9.0, cfg.Pricing.FuelConsumptionPer100)
	assert.Equal(t, 55.0, cfg.Pricing.FuelPricePerLiter)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("PRICING_SCAN_POINTS", "120")
	t.Setenv("PRICING_ML_ALLOW_STUB_FALLBACK", "true")
	t.Setenv("PRICING_FUEL_PRICE_PER_LITER", "61.5")

	cfg, err := Load("pricing")
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 120, cfg.Pricing.ScanPoints)
	assert.True(t, cfg.Pricing.AllowStubFallback)
	assert.Equal(t, 61.5, cfg.Pricing.FuelPricePerLiter)
}

func TestScanPointsClampedToMinimum(t *testing.T) {
	t.Setenv("PRICING_SCAN_POINTS", "3")

	cfg, err := Load("pricing")
	require.NoError(t, err)
	assert.Equal(t, MinScanPoints, cfg.Pricing.ScanPoints)
}

func TestProductionRequiresRealSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load("pricing")
	require.Error(t, err)

	t.Setenv("SECRET_KEY", "an-actual-secret")
	cfg, err := Load("pricing")
	require.NoError(t, err)
	assert.Equal(t, "an-actual-secret", cfg.Auth.SecretKey)
}

func TestAllowedOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"*", []string{"*"}},
		{"", []string{"*"}},
		{"https://a.example", []string{"https://a.example"}},
		{"https://a.example, https://b.example", []string{"https://a.example", "https://b.example"}},
		{" , ", []string{"*"}},
	}

	for _, tt := range tests {
		sc := ServerConfig{CORSOrigins: tt.raw}
		assert.Equal(t, tt.want, sc.AllowedOrigins(), "raw=%q", tt.raw)
	}
}
