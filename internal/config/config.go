package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage"`
	Links   LinksConfig   `mapstructure:"links"`
	Cleanup CleanupConfig `mapstructure:"cleanup"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

// MongoConfig holds MongoDB connection configuration
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// AuthConfig holds JWT configuration
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Bucket             string        `mapstructure:"bucket"`
	Region             string        `mapstructure:"region"`
	AccessKey          string        `mapstructure:"access_key"`
	SecretKey          string        `mapstructure:"secret_key"`
	Endpoint           string        `mapstructure:"endpoint"`
	CredentialEndpoint string        `mapstructure:"credential_endpoint"`
	CredentialAPIKey   string        `mapstructure:"credential_api_key"`
	CredentialMargin   time.Duration `mapstructure:"credential_margin"`
	MaxFileSize        int64         `mapstructure:"max_file_size"`
}

// LinksConfig holds link lifetime configuration
type LinksConfig struct {
	DefaultLinkTTL time.Duration `mapstructure:"default_link_ttl"`
	SignedURLTTL   time.Duration `mapstructure:"signed_url_ttl"`
}

// CleanupConfig holds the expired-link cleanup worker configuration
type CleanupConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Retention time.Duration `mapstructure:"retention"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration from config file and environment variables.
// Environment variables use the DOCVAULT_ prefix with underscores,
// e.g. DOCVAULT_MONGO_URI overrides mongo.uri.
func Load(path string) (*Config, error) {
	// .env is optional; real deployments set environment variables directly
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("DOCVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "docvault")

	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("auth.issuer", "docvault")

	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.credential_margin", 5*time.Minute)
	v.SetDefault("storage.max_file_size", int64(100<<20))

	v.SetDefault("links.default_link_ttl", 7*24*time.Hour)
	v.SetDefault("links.signed_url_ttl", 15*time.Minute)

	v.SetDefault("cleanup.interval", time.Hour)
	v.SetDefault("cleanup.retention", 30*24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Links.DefaultLinkTTL <= 0 {
		return fmt.Errorf("links.default_link_ttl must be positive")
	}
	if c.Links.SignedURLTTL <= 0 {
		return fmt.Errorf("links.signed_url_ttl must be positive")
	}
	return nil
}
