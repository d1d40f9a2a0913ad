package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PrefixedKeyWins(t *testing.T) {
	t.Setenv("DB_NAME", "plain")
	t.Setenv("STAYS_DB_NAME", "prefixed")
	t.Setenv("SERVICE_PORT", "9090")

	v, err := Load("STAYS")
	require.NoError(t, err)

	assert.Equal(t, "prefixed", LoadDatabaseConfig(v, "DB_NAME").DBName)
	assert.Equal(t, ":9090", GetServicePort(v, "SERVICE_PORT"))
}

func TestLoad_Defaults(t *testing.T) {
	v, err := Load("STAYS")
	require.NoError(t, err)

	db := LoadDatabaseConfig(v, "DB_NAME")
	assert.Equal(t, "localhost", db.Host)
	assert.Equal(t, "5432", db.Port)
	assert.Equal(t, "disable", db.SSLMode)
	assert.Equal(t, ":8080", GetServicePort(v, "SERVICE_PORT"))
	assert.NotEmpty(t, LoadJWTConfig(v).Secret)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("STAYS_APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("STAYS")
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	v, err := Load("STAYS")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", LoadJWTConfig(v).Secret)
}

func TestLoadKafkaConfig_SplitsBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("STAYS_KAFKA_GROUP_PREFIX", "dev-")

	v, err := Load("STAYS")
	require.NoError(t, err)

	kc := LoadKafkaConfig(v)
	assert.Equal(t, []string{"a:9092", "b:9092"}, kc.Brokers)
	assert.Equal(t, "dev-", kc.GroupPrefix)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "2")

	v, err := Load("STAYS")
	require.NoError(t, err)

	rc := LoadRedisConfig(v)
	assert.Equal(t, "cache:6379", rc.Addr)
	assert.Equal(t, 2, rc.DB)
}
