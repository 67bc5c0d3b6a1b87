package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// ProductAPIURLEnv is the environment variable for the remote product collection endpoint.
	ProductAPIURLEnv = "PRODUCT_API_URL"

	// PlaceholderImageURLEnv is the environment variable for the image shown when a product has none.
	PlaceholderImageURLEnv = "PLACEHOLDER_IMAGE_URL"

	// HTTPClientTimeoutEnv is the environment variable for the product API request timeout (Go duration).
	HTTPClientTimeoutEnv = "HTTP_CLIENT_TIMEOUT"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// DefaultPlaceholderImageURL is used when PLACEHOLDER_IMAGE_URL is not set.
	DefaultPlaceholderImageURL = "https://via.placeholder.com/150"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for the change notification queue URL.
	// Notifications are disabled when it is empty.
	SQSQueueURLEnv = "SQS_QUEUE_URL"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	ProductAPI    ProductAPI
	HTTPServer    Server
	MetricsServer Server
	AWS           AWSConfig
}

// ProductAPI represents the remote product API settings.
type ProductAPI struct {
	URL                 string
	PlaceholderImageURL string
	// Timeout of zero keeps the HTTP client default.
	Timeout time.Duration
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// NotificationsEnabled reports whether the change notification queue is configured.
func (a AWSConfig) NotificationsEnabled() bool {
	return a.SQSQueueURL != ""
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func absoluteURL(key, value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid url for key %s: %w", key, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid url for key %s: must be absolute", key)
	}
	return nil
}

func (c *Config) validate() error {
	if err := allNonEmpty(map[string]string{
		ProductAPIURLEnv: c.ProductAPI.URL,
	}); err != nil {
		return fmt.Errorf("product API configuration incomplete: %w", err)
	}
	if err := absoluteURL(ProductAPIURLEnv, c.ProductAPI.URL); err != nil {
		return err
	}

	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	if err := allNumbers(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	if c.AWS.NotificationsEnabled() {
		if err := allNonEmpty(map[string]string{
			AWSRegionEnv: c.AWS.Region,
		}); err != nil {
			return fmt.Errorf("AWS configuration incomplete: %w", err)
		}
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(name string) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for key %s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid duration for key %s: must not be negative", name)
	}
	return d, nil
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	timeout, err := getEnvAsDuration(HTTPClientTimeoutEnv)
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		ProductAPI: ProductAPI{
			URL:                 os.Getenv(ProductAPIURLEnv),
			PlaceholderImageURL: getEnv(PlaceholderImageURLEnv, DefaultPlaceholderImageURL),
			Timeout:             timeout,
		},
		HTTPServer: Server{
			Port: os.Getenv(HTTPServerPortEnv),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
