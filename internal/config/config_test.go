package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitList(" a:9092, ,b:9092 "))
	assert.Nil(t, splitList(""))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_CACHE_TTL_SECONDS", "30")

	cfg := Load()
	assert.Equal(t, "production", cfg.App.Env)
	assert.False(t, cfg.Log.Pretty)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, "loyalty-events", cfg.Kafka.Topic)
	assert.Contains(t, cfg.Database.DSN(), "dbname=storefront")
}
