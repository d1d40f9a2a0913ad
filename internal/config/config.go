package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/staynest/service-booking/pkg/config"
)

// Storage backends selectable with STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	StoreDriver   string
	DBConfig      config.DatabaseConfig
	JWTConfig     config.JWTConfig
	KafkaConfig   config.KafkaConfig
	RedisConfig   config.RedisConfig
	MigrationsDir string

	// AutoDeclineConflicts runs the sweeper that declines requests overlapping an accepted stay.
	// When false the host declines them by hand.
	AutoDeclineConflicts bool
}

// Load reads configuration from the environment, STAYS_-prefixed keys first.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("STAYS")
	if err != nil {
		return nil, err
	}

	driver := strings.ToLower(config.GetString(v, "STORE_DRIVER"))
	switch driver {
	case "":
		driver = StoreDriverPostgres
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", driver)
	}

	autoDecline := true
	if raw := config.GetString(v, "AUTO_DECLINE_CONFLICTS"); raw != "" {
		autoDecline, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_DECLINE_CONFLICTS %q: %w", raw, err)
		}
	}

	dbConfig := config.LoadDatabaseConfig(v, "DB_NAME")
	if dbConfig.DBName == "" {
		dbConfig.DBName = "stays"
	}

	return &ServiceConfig{
		Port:          config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:        config.GetAppEnv(v),
		StoreDriver:   driver,
		DBConfig:      dbConfig,
		JWTConfig:     config.LoadJWTConfig(v),
		KafkaConfig:   config.LoadKafkaConfig(v),
		RedisConfig:   config.LoadRedisConfig(v),
		MigrationsDir: "migrations",

		AutoDeclineConflicts: autoDecline,
	}, nil
}
