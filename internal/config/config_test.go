package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalTen() decimal.Decimal { return decimal.NewFromInt(10) }

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COMMISSION_RATE", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("BUSINESS_OPEN", "")
	t.Setenv("BUSINESS_CLOSE", "")
	t.Setenv("APP_TIMEZONE", "")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Addr())
	assert.True(t, cfg.CommissionRate.Equal(decimalTen()))
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Equal(t, "09:00", cfg.BusinessOpen)
	assert.Equal(t, "18:00", cfg.BusinessClose)
}

func TestLoadCommissionRate(t *testing.T) {
	t.Setenv("COMMISSION_RATE", "12.5")

	cfg := Load()

	assert.Equal(t, "12.5", cfg.CommissionRate.String())
}

func TestValidateRejectsBadCommissionRate(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "UTC")

	for _, raw := range []string{"140", "-1", "1O"} {
		t.Setenv("COMMISSION_RATE", raw)

		err := Load().Validate()

		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), "COMMISSION_RATE")
	}
}

func TestValidateRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("COMMISSION_RATE", "")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")

	assert.ErrorContains(t, Load().Validate(), "APP_TIMEZONE")
}

func TestSignedURLSecretFallsBackToJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-secret-value")
	t.Setenv("SIGNED_URL_SECRET", "")

	cfg := Load()

	assert.Equal(t, "jwt-secret-value", cfg.SignedURLSecret)
}

func TestStockAlertRecipients(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("STOCK_ALERT_TO", "a@example.com, b@example.com,,")

	cfg := Load()

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.StockAlertTo)
	assert.True(t, cfg.SMTPEnabled())
}
