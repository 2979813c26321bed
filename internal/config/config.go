// Package config loads claimflow configuration from defaults, an optional
// TOML file and CLAIMFLOW_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Log       LogConfig
	Audit     AuditConfig
	Documents DocumentsConfig
	AWS       AWSConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// AuditConfig selects and tunes the audit sink.
type AuditConfig struct {
	// Sink is one of none, log, sqlite, postgres, dynamodb.
	Sink string
	DSN  string
	// Table is the DynamoDB table name.
	Table   string
	Workers int
	Buffer  int
}

// DocumentsConfig selects the document store.
type DocumentsConfig struct {
	// Backend is local or s3.
	Backend    string
	Dir        string
	Bucket     string
	Prefix     string
	PresignTTL time.Duration `mapstructure:"presign_ttl"`
}

// AWSConfig holds AWS client settings.
type AWSConfig struct {
	Region string
	// Endpoint overrides the service endpoint, e.g. for LocalStack.
	Endpoint string
}

var (
	auditSinks       = []string{"none", "log", "sqlite", "postgres", "dynamodb"}
	documentBackends = []string{"local", "s3"}
	logLevels        = []string{"debug", "info", "warn", "error"}
	logFormats       = []string{"text", "json"}
)

// Load reads configuration from file and env. Env var overrides use prefix CLAIMFLOW_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("audit.sink", "log")
	v.SetDefault("audit.dsn", filepath.Join(".data", "audit.db"))
	v.SetDefault("audit.table", "claimflow-audit")
	v.SetDefault("audit.workers", 2)
	v.SetDefault("audit.buffer", 256)
	v.SetDefault("documents.backend", "local")
	v.SetDefault("documents.dir", filepath.Join(".data", "documents"))
	v.SetDefault("documents.bucket", "")
	v.SetDefault("documents.prefix", "")
	v.SetDefault("documents.presign_ttl", 15*time.Minute)
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.endpoint", "")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("CLAIMFLOW_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "claimflow"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CLAIMFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks enumerated settings and the settings each choice needs.
func (c Config) Validate() error {
	if !oneOf(c.Log.Level, logLevels) {
		return fmt.Errorf("log.level must be one of %s", strings.Join(logLevels, ", "))
	}
	if !oneOf(c.Log.Format, logFormats) {
		return fmt.Errorf("log.format must be one of %s", strings.Join(logFormats, ", "))
	}
	if !oneOf(c.Audit.Sink, auditSinks) {
		return fmt.Errorf("audit.sink must be one of %s", strings.Join(auditSinks, ", "))
	}
	if c.Audit.Sink == "postgres" && c.Audit.DSN == "" {
		return errors.New("audit.dsn is required for the postgres sink")
	}
	if c.Audit.Workers < 1 || c.Audit.Buffer < 1 {
		return errors.New("audit.workers and audit.buffer must be positive")
	}
	if !oneOf(c.Documents.Backend, documentBackends) {
		return fmt.Errorf("documents.backend must be one of %s", strings.Join(documentBackends, ", "))
	}
	if c.Documents.Backend == "s3" && c.Documents.Bucket == "" {
		return errors.New("documents.bucket is required for the s3 backend")
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
