// Package config holds the tool configuration. Values are layered, highest
// first: command-line flags, AWSCMDLET_* environment variables, the
// awscmdlet.yaml file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AWSCMDLET_LOG_LEVEL.
const EnvPrefix = "AWSCMDLET"

// Keys shared by Load and the flag bindings in the CLI.
const (
	KeyConfigFile      = "config"
	KeyRegion          = "region"
	KeyProfile         = "profile"
	KeyEndpointURL     = "endpoint_url"
	KeyAccessKeyID     = "access_key_id"
	KeySecretAccessKey = "secret_access_key"
	KeyOutput          = "output"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyStrict          = "strict"
	KeyMaxAttempts     = "max_attempts"
	KeyAuditTable      = "audit_table"
	KeyPreflight       = "preflight"

	KeyBatchInput           = "batch.input"
	KeyBatchResume          = "batch.resume"
	KeyBatchReport          = "batch.report"
	KeyBatchCheckpoint      = "batch.checkpoint_interval"
	KeyBatchContinueOnError = "batch.continue_on_error"
	KeyBatchForce           = "batch.force"
	KeyBatchShutdownTimeout = "batch.shutdown_timeout"
)

// Config is the configuration of a single command invocation.
type Config struct {
	Region          string
	Profile         string
	EndpointURL     string // overrides every service endpoint
	AccessKeyID     string // static credentials for emulators; both or neither
	SecretAccessKey string
	Output          string // json|yaml|text
	LogLevel        string
	LogFormat       string // text|json
	Strict          bool   // missing required parameters fail instead of warn
	MaxAttempts     int    // SDK retryer attempts; 0 keeps the SDK default
	AuditTable      string // DynamoDB journal table; empty disables the journal
	Preflight       bool   // simulate IAM permissions before each call
}

// BatchConfig configures the batch command.
type BatchConfig struct {
	InputURI           string // s3://bucket/key.jsonl or a local path
	ResumeURI          string // checkpoint location: s3://bucket/key or file:///path
	ReportURI          string // s3://bucket/key for the final report
	CheckpointInterval int    // save progress every N lines
	ContinueOnError    bool
	Force              bool          // confirm every mutating line without prompting
	ShutdownTimeout    time.Duration // bound on the final checkpoint and report after cancellation

	inputBucket string
	inputKey    string
}

// InputObject returns the bucket and key of an S3 input; ok is false for a
// local file.
func (c *BatchConfig) InputObject() (bucket, key string, ok bool) {
	return c.inputBucket, c.inputKey, c.inputBucket != ""
}

var tableName = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,255}$`)

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	switch c.Output {
	case "json", "yaml", "text":
	default:
		return fmt.Errorf("output must be json, yaml or text")
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log format must be text or json")
	}

	if c.EndpointURL != "" {
		u, err := url.Parse(c.EndpointURL)
		if err != nil {
			return fmt.Errorf("invalid endpoint URL: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("endpoint URL must be an absolute http or https URL")
		}
	}

	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("access key ID and secret access key must be set together")
	}

	if c.MaxAttempts < 0 || c.MaxAttempts > 20 {
		return fmt.Errorf("max attempts must be between 0 and 20")
	}

	if c.AuditTable != "" && !tableName.MatchString(c.AuditTable) {
		return fmt.Errorf("audit table %q is not a valid DynamoDB table name", c.AuditTable)
	}

	return nil
}

// Validate checks the batch settings and records the parsed input location.
func (c *BatchConfig) Validate() error {
	if c.InputURI == "" {
		return fmt.Errorf("batch input is required")
	}
	c.inputBucket, c.inputKey = "", ""
	if strings.Contains(c.InputURI, "://") {
		u, err := url.Parse(c.InputURI)
		if err != nil {
			return fmt.Errorf("invalid batch input URI: %w", err)
		}
		if u.Scheme != "s3" {
			return fmt.Errorf("batch input must be an s3:// URI or a local path")
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return fmt.Errorf("batch input URI must name a bucket and a key")
		}
		c.inputBucket, c.inputKey = u.Host, key
	}

	if c.ResumeURI != "" && !strings.HasPrefix(c.ResumeURI, "s3://") && !strings.HasPrefix(c.ResumeURI, "file://") {
		return fmt.Errorf("resume URI must start with s3:// or file://")
	}

	if c.ReportURI != "" && !strings.HasPrefix(c.ReportURI, "s3://") {
		return fmt.Errorf("report S3 URI must start with s3://")
	}

	if c.CheckpointInterval < 1 {
		return fmt.Errorf("checkpoint interval must be at least 1")
	}

	if c.ShutdownTimeout < time.Second {
		return fmt.Errorf("shutdown timeout must be at least 1 second")
	}

	return nil
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyOutput, "json")
	v.SetDefault(KeyLogLevel, "warning")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyStrict, false)
	v.SetDefault(KeyMaxAttempts, 0)
	v.SetDefault(KeyPreflight, false)
	v.SetDefault(KeyBatchCheckpoint, 100)
	v.SetDefault(KeyBatchShutdownTimeout, time.Minute)
}

// Load reads the config file and environment into v and returns the
// validated configuration. A missing config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := readInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Region:          v.GetString(KeyRegion),
		Profile:         v.GetString(KeyProfile),
		EndpointURL:     v.GetString(KeyEndpointURL),
		AccessKeyID:     v.GetString(KeyAccessKeyID),
		SecretAccessKey: v.GetString(KeySecretAccessKey),
		Output:          v.GetString(KeyOutput),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
		Strict:          v.GetBool(KeyStrict),
		MaxAttempts:     v.GetInt(KeyMaxAttempts),
		AuditTable:      v.GetString(KeyAuditTable),
		Preflight:       v.GetBool(KeyPreflight),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadBatch returns the validated batch settings from v. Call it after Load.
func LoadBatch(v *viper.Viper) (*BatchConfig, error) {
	cfg := &BatchConfig{
		InputURI:           v.GetString(KeyBatchInput),
		ResumeURI:          v.GetString(KeyBatchResume),
		ReportURI:          v.GetString(KeyBatchReport),
		CheckpointInterval: v.GetInt(KeyBatchCheckpoint),
		ContinueOnError:    v.GetBool(KeyBatchContinueOnError),
		Force:              v.GetBool(KeyBatchForce),
		ShutdownTimeout:    v.GetDuration(KeyBatchShutdownTimeout),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batch configuration: %w", err)
	}
	return cfg, nil
}

func readInConfig(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", file, err)
		}
		return nil
	}

	v.SetConfigName("awscmdlet")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/awscmdlet")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}
