package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/opencatalog"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	OpenCatalog OpenCatalogConfig `yaml:"opencatalog"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Redis       RedisConfig       `yaml:"redis"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Consul      ConsulConfig      `yaml:"consul"`
	Worker      WorkerConfig      `yaml:"worker"`
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	ServiceID string `yaml:"service_id"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Text  bool   `yaml:"text"`
}

type OpenCatalogConfig struct {
	Scheme      string        `yaml:"scheme"`
	HTTPAuth    string        `yaml:"http_auth"`
	HTTPURL     string        `yaml:"http_url"`
	AccessToken string        `yaml:"access_token"`
	DefaultLang string        `yaml:"default_lang"`
	Timeout     time.Duration `yaml:"timeout"`
}

func (c OpenCatalogConfig) Client() opencatalog.ClientConfig {
	return opencatalog.ClientConfig{
		Scheme:   c.Scheme,
		HTTPAuth: c.HTTPAuth,
		HTTPURL:  c.HTTPURL,
	}
}

type PostgresConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Enabled bool          `yaml:"enabled"`
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	TTL     time.Duration `yaml:"ttl"`
}

type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type ConsulConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type WorkerConfig struct {
	// RequestsPerMinute throttles queued lookups against the catalog.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// Default mirrors a local docker-compose setup.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8081, ServiceID: "catalog-service-1"},
		Log:    LogConfig{Level: "info", Text: true},
		OpenCatalog: OpenCatalogConfig{
			Scheme:      "https",
			HTTPURL:     "data.icecat.biz/xml_s3/xml_server3.cgi",
			DefaultLang: "en",
		},
		Postgres: PostgresConfig{Host: "localhost", Port: 5432, User: "opencatalog", Password: "opencatalog", Database: "opencatalog"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379, TTL: 24 * time.Hour},
		RabbitMQ: RabbitMQConfig{Host: "localhost", Port: 5672, User: "guest", Password: "guest"},
		Consul:   ConsulConfig{Host: "localhost", Port: 8500},
		Worker:   WorkerConfig{RequestsPerMinute: 60},
	}
}

// Load reads the YAML file at path on top of Default, then applies the
// environment. An empty path or a missing file only uses the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to open config: %w", err)
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.OpenCatalog.HTTPURL == "" {
		return nil, errors.New("opencatalog.http_url is required")
	}
	return cfg, nil
}
