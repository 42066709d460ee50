// Package config loads and validates the server configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

type DBConfig struct {
	Host     string `toml:"host" validate:"required"`
	Port     int    `toml:"port" validate:"required,min=1,max=65535"`
	User     string `toml:"user" validate:"required"`
	Password string `toml:"password"`
	DBName   string `toml:"dbname" validate:"required"`
	SSLMode  string `toml:"sslmode" validate:"oneof=disable require verify-ca verify-full"`
}

// PlatformAdminConfig is the bootstrap credential for platform
// administration. It is the only path that mints an elevated token, so
// tenants can be created before any tenant user exists. Both fields
// empty disables platform login entirely.
type PlatformAdminConfig struct {
	Email        string `toml:"email" validate:"omitempty,email"`
	PasswordHash string `toml:"password_hash"`
}

type AuthConfig struct {
	// SigningKeyFile holds a PEM-encoded Ed25519 private key. When
	// empty, an ephemeral key is generated at startup; tokens then do
	// not survive a restart.
	SigningKeyFile string `toml:"signing_key_file"`
	TokenValidity  string `toml:"token_validity" validate:"required"`
	Issuer         string `toml:"issuer" validate:"required"`
	Audience       string `toml:"audience" validate:"required"`
}

type ConfigParam struct {
	ServerPort string `toml:"server_port" validate:"required"`
	HandleCORS bool   `toml:"handle_cors"`

	// BaseDomain is the apex under which tenant subdomains live, e.g.
	// "app.example". A request host resolves by subdomain only when it
	// is exactly <slug>.<base_domain>.
	BaseDomain string `toml:"base_domain" validate:"required,fqdn"`

	// ReservedSubdomains never resolve to a tenant.
	ReservedSubdomains []string `toml:"reserved_subdomains"`

	Auth          AuthConfig          `toml:"auth"`
	PlatformAdmin PlatformAdminConfig `toml:"platform_admin"`
	DB            DBConfig            `toml:"database"`
}

var cfg *ConfigParam

func Config() *ConfigParam {
	return cfg
}

var defaultReservedSubdomains = []string{"api", "www", "app", "admin", "localhost"}

func defaultConfig() *ConfigParam {
	return &ConfigParam{
		ServerPort:         "8290",
		HandleCORS:         true,
		BaseDomain:         "counseldesk.local",
		ReservedSubdomains: defaultReservedSubdomains,
		Auth: AuthConfig{
			TokenValidity: "12h",
			Issuer:        "counseldesk",
			Audience:      "counseldesk-api",
		},
		DB: DBConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "counseldesk_api",
			DBName:  "counseldesk",
			SSLMode: "disable",
		},
	}
}

func LoadConfig(filename string) error {
	if filename == "" {
		cfg = defaultConfig()
		return nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	cp := defaultConfig()
	if _, err := toml.Decode(string(content), cp); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if err := validator.New().Struct(cp); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = cp
	return nil
}

// TestInit installs the default configuration. Tests call this instead
// of loading a file.
func TestInit() {
	cfg = defaultConfig()
}

// Dsn renders the postgres connection string.
func (d DBConfig) Dsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// ParseTokenDuration parses durations like "30m", "12h", "7d", "1y".
func ParseTokenDuration(input string) (time.Duration, error) {
	if len(input) < 2 {
		return 0, fmt.Errorf("invalid input format")
	}
	unit := input[len(input)-1:]
	value, err := strconv.Atoi(input[:len(input)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", err)
	}
	var duration time.Duration
	switch unit {
	case "m":
		duration = time.Duration(value) * time.Minute
	case "h":
		duration = time.Duration(value) * time.Hour
	case "d":
		duration = time.Duration(value) * 24 * time.Hour
	case "y":
		duration = time.Duration(value) * 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown time unit: %s", unit)
	}
	return duration, nil
}

func init() {
	if err := LoadConfig(""); err != nil {
		panic(err)
	}
}
