package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config represents the complete mesoscaler configuration
type Config struct {
	Marathon  MarathonConfig  `mapstructure:"marathon"`
	Scaling   ScalingConfig   `mapstructure:"scaling"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// MarathonConfig controls how the scaler talks to the Marathon API
type MarathonConfig struct {
	// URL is the base URL of the DC/OS master or Marathon endpoint
	// Examples: "https://dcos-master.example.com", "http://marathon.mesos:8080"
	URL string `mapstructure:"url"`
	// AppID is the Marathon application to monitor and scale
	// Example: "/billing/worker"
	AppID string `mapstructure:"app_id"`
	// TimeoutSeconds bounds every individual API call (default: 10)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// InsecureSkipVerify disables TLS certificate verification.
	// DC/OS masters commonly run with self-signed certificates.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
	// Auth holds cluster authentication settings
	Auth AuthConfig `mapstructure:"auth"`
}

// AuthConfig controls DC/OS authentication. Two methods are supported:
// user credentials (user_id + password) and service accounts
// (user_id + RS256 private key). Leave all fields empty for
// unauthenticated Marathon endpoints.
type AuthConfig struct {
	// UserID is the DC/OS user or service account ID
	UserID string `mapstructure:"user_id"`
	// Password authenticates a regular user account
	Password string `mapstructure:"password"`
	// PrivateKey is a PEM-encoded RSA key for service account login
	PrivateKey string `mapstructure:"private_key"`
	// PrivateKeyFile is a path to a PEM-encoded RSA key file.
	// Mutually exclusive with PrivateKey.
	PrivateKeyFile string `mapstructure:"private_key_file"`
}

// Authentication method names
const (
	AuthMethodNone           = "none"
	AuthMethodPassword       = "password"
	AuthMethodServiceAccount = "service_account"
)

// Method reports which authentication method the settings select.
func (a *AuthConfig) Method() string {
	switch {
	case a.PrivateKey != "" || a.PrivateKeyFile != "":
		return AuthMethodServiceAccount
	case a.Password != "":
		return AuthMethodPassword
	default:
		return AuthMethodNone
	}
}

// ScalingConfig controls the evaluation loop and the scaling arithmetic.
// It is fixed at startup; changing it requires a restart.
type ScalingConfig struct {
	// TriggerMode selects the registered trigger mode: "cpu", "mem", "sqs",
	// "and", "or". Combinators evaluate CPU and Memory together.
	TriggerMode string `mapstructure:"trigger_mode"`
	// Multiplier is applied to the instance count when scaling
	// (ceil(n*m) up, floor(n/m) down). Must be greater than 1.0.
	Multiplier float64 `mapstructure:"multiplier"`
	// MinInstances is the lower bound on instances (default: 1)
	MinInstances int `mapstructure:"min_instances"`
	// MaxInstances is the upper bound on instances (default: 10)
	MaxInstances int `mapstructure:"max_instances"`
	// ScaleUpFactor is the number of consecutive above-band verdicts
	// required before a scale-up fires (default: 3)
	ScaleUpFactor int `mapstructure:"scale_up_factor"`
	// CoolDownFactor is the number of consecutive below-band verdicts
	// required before a scale-down fires (default: 3)
	CoolDownFactor int `mapstructure:"cool_down_factor"`
	// IntervalSeconds is the fixed cadence of evaluation cycles (default: 60)
	IntervalSeconds int `mapstructure:"interval_seconds"`
	// MinRange holds the lower band threshold per dimension. Single-dimension
	// modes take one element; combinators take two, ordered [cpu, memory].
	MinRange []float64 `mapstructure:"min_range"`
	// MaxRange holds the upper band threshold per dimension, same ordering
	// and length as MinRange.
	MaxRange []float64 `mapstructure:"max_range"`
}

// QueueConfig controls the SQS queue used by the "sqs" trigger mode
type QueueConfig struct {
	// URL is the full queue URL. When set, Name is ignored.
	URL string `mapstructure:"url"`
	// Name is the queue name, resolved to a URL at startup
	Name string `mapstructure:"name"`
	// Region overrides the AWS region from the default credential chain
	Region string `mapstructure:"region"`
	// AccessKey and SecretKey override the default AWS credential chain.
	// Leave empty to use environment variables, shared config, or IAM roles.
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// TelemetryConfig controls the optional Prometheus endpoint
type TelemetryConfig struct {
	// Enabled turns the /metrics listener on (default: false)
	Enabled bool `mapstructure:"enabled"`
	// ListenAddr is the host:port for the metrics listener (default: ":9102")
	ListenAddr string `mapstructure:"listen_addr"`
}

// LoggingConfig controls daemon logging behavior
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the log directory. Empty logs to stderr.
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 5)
	MaxBackups int `mapstructure:"max_backups"`
}

// Timeout returns the per-call API timeout as a time.Duration
func (m *MarathonConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// Interval returns the cycle cadence as a time.Duration
func (s *ScalingConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// Dimensions returns the number of band threshold pairs configured.
func (s *ScalingConfig) Dimensions() int {
	return len(s.MinRange)
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Marathon: MarathonConfig{
			URL:                "",
			AppID:              "",
			TimeoutSeconds:     10,
			InsecureSkipVerify: false,
			Auth:               AuthConfig{},
		},
		Scaling: ScalingConfig{
			TriggerMode:     "cpu",
			Multiplier:      1.5,
			MinInstances:    1,
			MaxInstances:    10,
			ScaleUpFactor:   3,
			CoolDownFactor:  3,
			IntervalSeconds: 60,
			MinRange:        []float64{},
			MaxRange:        []float64{},
		},
		Queue: QueueConfig{
			URL:    "",
			Name:   "",
			Region: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:    false,
			ListenAddr: ":9102",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Marathon defaults
	viper.SetDefault("marathon.url", defaults.Marathon.URL)
	viper.SetDefault("marathon.app_id", defaults.Marathon.AppID)
	viper.SetDefault("marathon.timeout_seconds", defaults.Marathon.TimeoutSeconds)
	viper.SetDefault("marathon.insecure_skip_verify", defaults.Marathon.InsecureSkipVerify)
	viper.SetDefault("marathon.auth.user_id", defaults.Marathon.Auth.UserID)
	viper.SetDefault("marathon.auth.password", defaults.Marathon.Auth.Password)
	viper.SetDefault("marathon.auth.private_key", defaults.Marathon.Auth.PrivateKey)
	viper.SetDefault("marathon.auth.private_key_file", defaults.Marathon.Auth.PrivateKeyFile)

	// Scaling defaults
	viper.SetDefault("scaling.trigger_mode", defaults.Scaling.TriggerMode)
	viper.SetDefault("scaling.multiplier", defaults.Scaling.Multiplier)
	viper.SetDefault("scaling.min_instances", defaults.Scaling.MinInstances)
	viper.SetDefault("scaling.max_instances", defaults.Scaling.MaxInstances)
	viper.SetDefault("scaling.scale_up_factor", defaults.Scaling.ScaleUpFactor)
	viper.SetDefault("scaling.cool_down_factor", defaults.Scaling.CoolDownFactor)
	viper.SetDefault("scaling.interval_seconds", defaults.Scaling.IntervalSeconds)
	viper.SetDefault("scaling.min_range", defaults.Scaling.MinRange)
	viper.SetDefault("scaling.max_range", defaults.Scaling.MaxRange)

	// Queue defaults
	viper.SetDefault("queue.url", defaults.Queue.URL)
	viper.SetDefault("queue.name", defaults.Queue.Name)
	viper.SetDefault("queue.region", defaults.Queue.Region)
	viper.SetDefault("queue.access_key", defaults.Queue.AccessKey)
	viper.SetDefault("queue.secret_key", defaults.Queue.SecretKey)

	// Telemetry defaults
	viper.SetDefault("telemetry.enabled", defaults.Telemetry.Enabled)
	viper.SetDefault("telemetry.listen_addr", defaults.Telemetry.ListenAddr)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Band thresholds arrive as YAML lists from files but as CSV strings
	// from environment variables; normalize both to []float64.
	minRange, err := toFloatSlice(viper.Get("scaling.min_range"))
	if err != nil {
		return nil, fmt.Errorf("scaling.min_range: %w", err)
	}
	maxRange, err := toFloatSlice(viper.Get("scaling.max_range"))
	if err != nil {
		return nil, fmt.Errorf("scaling.max_range: %w", err)
	}
	cfg.Scaling.MinRange = minRange
	cfg.Scaling.MaxRange = maxRange

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// toFloatSlice coerces a viper value into a float slice. Accepts native
// lists ([]any, []string, []float64) and comma-separated strings.
func toFloatSlice(v any) ([]float64, error) {
	if v == nil {
		return []float64{}, nil
	}

	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return []float64{}, nil
		}
		parts := strings.Split(s, ",")
		out := make([]float64, 0, len(parts))
		for _, p := range parts {
			f, err := cast.ToFloat64E(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("invalid threshold %q: %w", p, err)
			}
			out = append(out, f)
		}
		return out, nil
	}

	raw, err := cast.ToSliceE(v)
	if err != nil {
		return nil, fmt.Errorf("invalid threshold list: %w", err)
	}
	out := make([]float64, 0, len(raw))
	for _, item := range raw {
		f, err := cast.ToFloat64E(item)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold %v: %w", item, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mesoscaler")
	}
	// Fall back to ~/.config/mesoscaler
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mesoscaler"
	}
	return filepath.Join(home, ".config", "mesoscaler")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
