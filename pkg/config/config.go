// Package config loads and validates the ledger server configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the ledger server configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Chain       ChainConfig       `yaml:"chain"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Redis       RedisConfig       `yaml:"redis"`
	Auth        AuthConfig        `yaml:"auth"`
	Payments    PaymentsConfig    `yaml:"payments"`
	Confirmer   ConfirmerConfig   `yaml:"confirmer"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"30s"`
}

// DatabaseConfig contains Postgres connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" default:"localhost" validate:"required"`
	Port     int    `yaml:"port" default:"5432"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database" default:"tola_ledger"`
	SSLMode  string `yaml:"ssl_mode" default:"disable"`
}

// ChainConfig contains settings for the blockchain collaborator
type ChainConfig struct {
	RPCURL   string `yaml:"rpc_url" validate:"required"`
	ChainID  int64  `yaml:"chain_id" default:"1"`
	GasLimit uint64 `yaml:"gas_limit" default:"300000"`
	// SignerPrivateKey signs marketplace-originated transactions
	// (artist verification). Hex-encoded, no 0x prefix.
	SignerPrivateKey string `yaml:"signer_private_key"`
}

// MarketplaceConfig contains the token and marketplace settings that the
// original system kept in mutable global options. Loaded once at start.
type MarketplaceConfig struct {
	TokenContract string `yaml:"token_contract" validate:"required"`
	// MarketplaceContract hosts the artwork listing/purchase/verification methods.
	MarketplaceContract string        `yaml:"marketplace_contract"`
	MarketplaceWallet   string        `yaml:"marketplace_wallet"`
	CommissionRate      float64       `yaml:"commission_rate" default:"5" validate:"gte=0,lte=100"`
	Network             string        `yaml:"network" default:"ethereum"`
	MetadataCacheTTL    time.Duration `yaml:"metadata_cache_ttl" default:"24h"`
}

// RedisConfig contains settings for the token metadata cache.
// When Addr is empty an in-process cache is used instead.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig contains session token settings
type AuthConfig struct {
	// JWTSecret signs session tokens issued after wallet verification.
	JWTSecret    string        `yaml:"jwt_secret" validate:"required"`
	SessionTTL   time.Duration `yaml:"session_ttl" default:"24h"`
	ChallengeTTL time.Duration `yaml:"challenge_ttl" default:"5m"`
	// AdminWallets may call admin-only operations such as artist verification.
	AdminWallets []string `yaml:"admin_wallets"`
}

// PaymentsConfig contains payment saga settings
type PaymentsConfig struct {
	ResumeInterval time.Duration `yaml:"resume_interval" default:"1m"`
}

// ConfirmerConfig contains settings for the transaction confirmation poller
type ConfirmerConfig struct {
	Enabled   bool          `yaml:"enabled" default:"true"`
	Interval  time.Duration `yaml:"interval" default:"30s"`
	BatchSize int           `yaml:"batch_size" default:"50"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info"`
	Format     string `yaml:"format" default:"json"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// Load reads, defaults and validates configuration from a YAML file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
