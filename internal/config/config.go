package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"tourbook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BackendURLEnv overrides backend.base_url when set.
const BackendURLEnv = "TOURBOOK_API_BASE_URL"

type Config struct {
	App        AppConfig        `yaml:"app"`
	Backend    BackendConfig    `yaml:"backend"`
	Web        WebConfig        `yaml:"web"`
	DevAPI     DevAPIConfig     `yaml:"devapi"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Booking    BookingConfig    `yaml:"booking"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type WebConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type DevAPIConfig struct {
	Port        int             `yaml:"port"`
	MetricsPort int             `yaml:"metrics_port"`
	SeedPath    string          `yaml:"seed_path"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type DatabaseConfig struct {
	Path   string       `yaml:"path"`
	Backup BackupConfig `yaml:"backup"`
}

type BackupConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	StoragePath   string        `yaml:"storage_path"`
	RetentionDays int           `yaml:"retention_days"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BookingConfig struct {
	GuardTTL         time.Duration `yaml:"guard_ttl"`
	SubmitRateLimit  int           `yaml:"submit_rate_limit"`
	SubmitRateWindow time.Duration `yaml:"submit_rate_window"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(os.Getenv(BackendURLEnv)); v != "" {
		config.Backend.BaseURL = v
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend base_url %q must be an absolute http(s) URL", c.Backend.BaseURL)
	}

	ports := map[string]int{
		"web.port":    c.Web.Port,
		"devapi.port": c.DevAPI.Port,
	}
	if c.Monitoring.PrometheusEnabled {
		ports["monitoring.prometheus_port"] = c.Monitoring.PrometheusPort
		ports["devapi.metrics_port"] = c.DevAPI.MetricsPort
	}
	for name, port := range ports {
		if port < 1 || port > 65535 {
			return fmt.Errorf("%s %d out of range", name, port)
		}
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "tourbook"
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = models.DefaultBackendURL
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 10 * time.Second
	}
	if c.Web.Port == 0 {
		c.Web.Port = 3000
	}
	if c.Web.RequestTimeout == 0 {
		c.Web.RequestTimeout = 30 * time.Second
	}
	if c.DevAPI.Port == 0 {
		c.DevAPI.Port = 5000
	}
	if c.DevAPI.SeedPath == "" {
		c.DevAPI.SeedPath = "configs/experiences.yaml"
	}
	if c.DevAPI.RateLimit.RPS == 0 {
		c.DevAPI.RateLimit.RPS = 20
	}
	if c.DevAPI.RateLimit.Burst == 0 {
		c.DevAPI.RateLimit.Burst = 40
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/tourbook.db"
	}
	if c.Database.Backup.Interval == 0 {
		c.Database.Backup.Interval = 24 * time.Hour
	}
	if c.Database.Backup.StoragePath == "" {
		c.Database.Backup.StoragePath = "data/backups"
	}
	if c.Booking.GuardTTL == 0 {
		c.Booking.GuardTTL = models.DefaultGuardTTL * time.Second
	}
	if c.Booking.SubmitRateLimit == 0 {
		c.Booking.SubmitRateLimit = models.DefaultSubmitRateLimit
	}
	if c.Booking.SubmitRateWindow == 0 {
		c.Booking.SubmitRateWindow = models.DefaultSubmitRateWindow * time.Second
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Monitoring.PrometheusEnabled && c.DevAPI.MetricsPort == 0 {
		c.DevAPI.MetricsPort = 9091
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
