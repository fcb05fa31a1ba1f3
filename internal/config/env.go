package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func applyEnv(cfg *Config) error {
	var err error

	cfg.OpenCatalog.Scheme = stringWithDefault("OPENCATALOG_SCHEME", cfg.OpenCatalog.Scheme)
	cfg.OpenCatalog.HTTPAuth = stringWithDefault("OPENCATALOG_HTTP_AUTH", cfg.OpenCatalog.HTTPAuth)
	cfg.OpenCatalog.HTTPURL = stringWithDefault("OPENCATALOG_HTTP_URL", cfg.OpenCatalog.HTTPURL)
	cfg.OpenCatalog.AccessToken = stringWithDefault("OPENCATALOG_ACCESS_TOKEN", cfg.OpenCatalog.AccessToken)
	cfg.OpenCatalog.DefaultLang = stringWithDefault("OPENCATALOG_LANG", cfg.OpenCatalog.DefaultLang)
	if cfg.OpenCatalog.Timeout, err = durationWithDefault("OPENCATALOG_TIMEOUT", cfg.OpenCatalog.Timeout); err != nil {
		return err
	}

	if cfg.Server.Port, err = intWithDefault("PORT", cfg.Server.Port); err != nil {
		return err
	}
	cfg.Log.Level = stringWithDefault("LOG_LEVEL", cfg.Log.Level)
	if cfg.Log.Text, err = boolWithDefault("LOG_TEXT", cfg.Log.Text); err != nil {
		return err
	}

	if cfg.Postgres.Enabled, err = boolWithDefault("POSTGRES_ENABLED", cfg.Postgres.Enabled); err != nil {
		return err
	}
	cfg.Postgres.Host = stringWithDefault("POSTGRES_HOST", cfg.Postgres.Host)
	if cfg.Postgres.Port, err = intWithDefault("POSTGRES_PORT", cfg.Postgres.Port); err != nil {
		return err
	}
	cfg.Postgres.User = stringWithDefault("POSTGRES_USER", cfg.Postgres.User)
	cfg.Postgres.Password = stringWithDefault("POSTGRES_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Database = stringWithDefault("POSTGRES_DB", cfg.Postgres.Database)

	if cfg.Redis.Enabled, err = boolWithDefault("REDIS_ENABLED", cfg.Redis.Enabled); err != nil {
		return err
	}
	cfg.Redis.Host = stringWithDefault("REDIS_HOST", cfg.Redis.Host)
	if cfg.Redis.Port, err = intWithDefault("REDIS_PORT", cfg.Redis.Port); err != nil {
		return err
	}
	if cfg.Redis.TTL, err = durationWithDefault("REDIS_TTL", cfg.Redis.TTL); err != nil {
		return err
	}

	if cfg.RabbitMQ.Enabled, err = boolWithDefault("RABBITMQ_ENABLED", cfg.RabbitMQ.Enabled); err != nil {
		return err
	}
	cfg.RabbitMQ.Host = stringWithDefault("RABBITMQ_HOST", cfg.RabbitMQ.Host)
	if cfg.RabbitMQ.Port, err = intWithDefault("RABBITMQ_PORT", cfg.RabbitMQ.Port); err != nil {
		return err
	}
	cfg.RabbitMQ.User = stringWithDefault("RABBITMQ_USER", cfg.RabbitMQ.User)
	cfg.RabbitMQ.Password = stringWithDefault("RABBITMQ_PASSWORD", cfg.RabbitMQ.Password)

	if cfg.Consul.Enabled, err = boolWithDefault("CONSUL_ENABLED", cfg.Consul.Enabled); err != nil {
		return err
	}
	cfg.Consul.Host = stringWithDefault("CONSUL_HOST", cfg.Consul.Host)
	if cfg.Consul.Port, err = intWithDefault("CONSUL_PORT", cfg.Consul.Port); err != nil {
		return err
	}

	if cfg.Worker.RequestsPerMinute, err = intWithDefault("WORKER_REQUESTS_PER_MINUTE", cfg.Worker.RequestsPerMinute); err != nil {
		return err
	}
	return nil
}

func stringWithDefault(key, def string) string {
	variable, isOk := os.LookupEnv(key)
	if !isOk || variable == "" {
		return def
	}
	return variable
}

func intWithDefault(key string, def int) (int, error) {
	variable, isOk := os.LookupEnv(key)
	if !isOk || variable == "" {
		return def, nil
	}
	number, err := strconv.Atoi(variable)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %w", key, err)
	}
	return number, nil
}

func boolWithDefault(key string, def bool) (bool, error) {
	variable, isOk := os.LookupEnv(key)
	if !isOk || variable == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(variable)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %w", key, err)
	}
	return b, nil
}

func durationWithDefault(key string, def time.Duration) (time.Duration, error) {
	variable, isOk := os.LookupEnv(key)
	if !isOk || variable == "" {
		return def, nil
	}
	d, err := time.ParseDuration(variable)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}
