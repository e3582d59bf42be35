package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "erp-api", cfg.ServiceName)
	assert.Equal(t, 1000, cfg.TaxRateBP)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,")
	t.Setenv("TAX_RATE_BP", "1100")

	cfg := Load()

	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 1100, cfg.TaxRateBP)
}

func TestLoadBadTaxRateFallsBack(t *testing.T) {
	t.Setenv("TAX_RATE_BP", "ten percent")
	assert.Equal(t, 1000, Load().TaxRateBP)
}
