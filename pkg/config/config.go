package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// RedisConfig holds cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

var keys = []string{
	"APP_ENV", "SERVICE_PORT", "STORE_DRIVER",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"JWT_SECRET",
	"KAFKA_BROKERS", "KAFKA_GROUP_PREFIX",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
}

// Load reads .env (if present) and returns a viper instance where every key resolves from
// PREFIX_KEY first, then KEY, then the default.
func Load(prefix string) (*viper.Viper, error) {
	_ = godotenv.Load()

	v := viper.New()
	for _, key := range keys {
		if err := v.BindEnv(key, prefix+"_"+key, key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")
	v.SetDefault("REDIS_DB", 0)

	if v.GetString("APP_ENV") == "production" && v.GetString("JWT_SECRET") == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	return v, nil
}

func lookup(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

// GetString exposes a bound key that has no dedicated loader.
func GetString(v *viper.Viper, key string) string {
	return lookup(v, key)
}

// GetAppEnv returns the application environment.
func GetAppEnv(v *viper.Viper) string {
	return lookup(v, "APP_ENV")
}

// GetServicePort returns the listen address built from the given key, e.g. ":8080".
func GetServicePort(v *viper.Viper, key string) string {
	port := lookup(v, key)
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

// LoadDatabaseConfig reads DB_* settings; dbNameKey selects the service-specific database name.
func LoadDatabaseConfig(v *viper.Viper, dbNameKey string) DatabaseConfig {
	return DatabaseConfig{
		Host:     lookup(v, "DB_HOST"),
		Port:     lookup(v, "DB_PORT"),
		User:     lookup(v, "DB_USER"),
		Password: lookup(v, "DB_PASSWORD"),
		DBName:   lookup(v, dbNameKey),
		SSLMode:  lookup(v, "DB_SSLMODE"),
	}
}

// LoadJWTConfig reads the JWT secret.
func LoadJWTConfig(v *viper.Viper) JWTConfig {
	secret := lookup(v, "JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return JWTConfig{Secret: secret}
}

// LoadKafkaConfig reads a comma-separated broker list.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	var brokers []string
	for _, b := range strings.Split(lookup(v, "KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return KafkaConfig{
		Brokers:     brokers,
		GroupPrefix: lookup(v, "KAFKA_GROUP_PREFIX"),
	}
}

// LoadRedisConfig reads REDIS_* settings.
func LoadRedisConfig(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Addr:     lookup(v, "REDIS_ADDR"),
		Password: lookup(v, "REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}
}
