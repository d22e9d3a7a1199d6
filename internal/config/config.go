package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MinResolution is the smallest normalized canvas the segmenter accepts.
const MinResolution = 16

// SegmentationConfig controls the normalized canvas and the radius bands of
// the two boundary searches. Radii are canvas side divided by the divisor.
type SegmentationConfig struct {
	Resolution      int `yaml:"resolution"`
	PupilMinDivisor int `yaml:"pupilMinDivisor"`
	PupilMaxDivisor int `yaml:"pupilMaxDivisor"`
	IrisMinDivisor  int `yaml:"irisMinDivisor"`
	IrisMaxDivisor  int `yaml:"irisMaxDivisor"`
}

type Config struct {
	Host               string        `yaml:"host"`
	Port               string        `yaml:"port"`
	RequestTimeout     time.Duration `yaml:"requestTimeout"`
	ImageFetchTimeout  time.Duration `yaml:"imageFetchTimeout"`
	MaxRequestBodySize int64         `yaml:"maxRequestBodySize"`

	// DatabasePath enables SQLite persistence of results when non-empty.
	DatabasePath string `yaml:"databasePath"`

	AzureAccountName string `yaml:"azureAccountName"`
	AzureAccountKey  string `yaml:"-"`

	// Workers bounds concurrent images in batch mode; 0 means NumCPU.
	Workers int `yaml:"workers"`

	Segmentation SegmentationConfig `yaml:"segmentation"`
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether azblob:// sources can be resolved.
func (c *Config) AzureEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// Load reads the environment and then overlays the YAML file at path, or
// the one named by SEGMENTER_CONFIG when path is empty.
func Load(path string) (*Config, error) {
	cfg := fromEnv()

	if path == "" {
		path = os.Getenv("SEGMENTER_CONFIG")
	}
	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv builds the configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	cfg := fromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() *Config {
	return &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		DatabasePath:       os.Getenv("DATABASE_PATH"),
		AzureAccountName:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:    os.Getenv("AZURE_STORAGE_KEY"),
		Workers:            int(parseIntOrDefault("WORKERS", 0)),
		Segmentation: SegmentationConfig{
			Resolution:      int(parseIntOrDefault("RESOLUTION", 256)),
			PupilMinDivisor: 10,
			PupilMaxDivisor: 6,
			IrisMinDivisor:  10,
			IrisMaxDivisor:  4,
		},
	}
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	return nil
}

// Validate rejects values the server or the segmenter cannot run with.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			c.RequestTimeout, c.ImageFetchTimeout)
	}
	if c.Workers < 0 {
		return fmt.Errorf("WORKERS must be >= 0 (got %d)", c.Workers)
	}

	s := c.Segmentation
	if s.Resolution < MinResolution {
		return fmt.Errorf("resolution must be >= %d (got %d)", MinResolution, s.Resolution)
	}
	if s.PupilMinDivisor <= 0 || s.PupilMaxDivisor <= 0 || s.IrisMinDivisor <= 0 || s.IrisMaxDivisor <= 0 {
		return fmt.Errorf("radius divisors must be > 0 (got pupil=%d/%d, iris=%d/%d)",
			s.PupilMinDivisor, s.PupilMaxDivisor, s.IrisMinDivisor, s.IrisMaxDivisor)
	}
	if s.PupilMinDivisor < s.PupilMaxDivisor || s.IrisMinDivisor < s.IrisMaxDivisor {
		return fmt.Errorf("min radius divisor must be >= max radius divisor (got pupil=%d/%d, iris=%d/%d)",
			s.PupilMinDivisor, s.PupilMaxDivisor, s.IrisMinDivisor, s.IrisMaxDivisor)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
