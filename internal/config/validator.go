package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation failure
type ValidationError struct {
	Field   string // The configuration field that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, err.Error()))
	}
	return sb.String()
}

// Validation bounds
const (
	minTimeoutSeconds  = 1
	maxTimeoutSeconds  = 300
	minIntervalSeconds = 1
	maxIntervalSeconds = 3600
	maxInstanceCeiling = 10000
)

// Validate checks the configuration for invalid values.
// A non-empty result means the daemon must refuse to start.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, c.validateMarathon()...)
	errs = append(errs, c.validateScaling()...)
	errs = append(errs, c.validateTelemetry()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

// validateMarathon validates the Marathon API settings
func (c *Config) validateMarathon() ValidationErrors {
	var errs ValidationErrors
	m := &c.Marathon

	if m.URL == "" {
		errs = append(errs, ValidationError{
			Field:   "marathon.url",
			Value:   m.URL,
			Message: "Marathon URL is required",
		})
	} else {
		u, err := url.Parse(m.URL)
		if err != nil || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "marathon.url",
				Value:   m.URL,
				Message: "must be a valid URL",
			})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, ValidationError{
				Field:   "marathon.url",
				Value:   m.URL,
				Message: "scheme must be http or https",
			})
		}
	}

	if m.AppID == "" {
		errs = append(errs, ValidationError{
			Field:   "marathon.app_id",
			Value:   m.AppID,
			Message: "application ID is required",
		})
	}

	if m.TimeoutSeconds < minTimeoutSeconds || m.TimeoutSeconds > maxTimeoutSeconds {
		errs = append(errs, ValidationError{
			Field:   "marathon.timeout_seconds",
			Value:   m.TimeoutSeconds,
			Message: fmt.Sprintf("must be between %d and %d", minTimeoutSeconds, maxTimeoutSeconds),
		})
	}

	errs = append(errs, c.validateAuth()...)

	return errs
}

// validateAuth validates the DC/OS authentication settings
func (c *Config) validateAuth() ValidationErrors {
	var errs ValidationErrors
	a := &c.Marathon.Auth

	if a.Password != "" && (a.PrivateKey != "" || a.PrivateKeyFile != "") {
		errs = append(errs, ValidationError{
			Field:   "marathon.auth",
			Value:   "password and private key",
			Message: "password and service account key are mutually exclusive",
		})
	}

	if a.PrivateKey != "" && a.PrivateKeyFile != "" {
		errs = append(errs, ValidationError{
			Field:   "marathon.auth",
			Value:   "private_key and private_key_file",
			Message: "set at most one of private_key and private_key_file",
		})
	}

	if (a.Password != "" || a.PrivateKey != "" || a.PrivateKeyFile != "") && a.UserID == "" {
		errs = append(errs, ValidationError{
			Field:   "marathon.auth.user_id",
			Value:   a.UserID,
			Message: "user ID is required when credentials are set",
		})
	}

	return errs
}

// validateScaling validates the scaling loop settings
func (c *Config) validateScaling() ValidationErrors {
	var errs ValidationErrors
	s := &c.Scaling

	if s.TriggerMode == "" {
		errs = append(errs, ValidationError{
			Field:   "scaling.trigger_mode",
			Value:   s.TriggerMode,
			Message: "trigger mode is required",
		})
	}

	// Multiplier at or below 1.0 would make scale-up a no-op and
	// scale-down divide instances upward.
	if s.Multiplier <= 1.0 {
		errs = append(errs, ValidationError{
			Field:   "scaling.multiplier",
			Value:   s.Multiplier,
			Message: "must be greater than 1.0",
		})
	}

	if s.MinInstances < 1 {
		errs = append(errs, ValidationError{
			Field:   "scaling.min_instances",
			Value:   s.MinInstances,
			Message: "must be at least 1",
		})
	}

	if s.MaxInstances > maxInstanceCeiling {
		errs = append(errs, ValidationError{
			Field:   "scaling.max_instances",
			Value:   s.MaxInstances,
			Message: fmt.Sprintf("must be at most %d", maxInstanceCeiling),
		})
	}

	if s.MaxInstances <= s.MinInstances {
		errs = append(errs, ValidationError{
			Field:   "scaling.max_instances",
			Value:   s.MaxInstances,
			Message: fmt.Sprintf("must be greater than min_instances (%d)", s.MinInstances),
		})
	}

	if s.ScaleUpFactor < 1 {
		errs = append(errs, ValidationError{
			Field:   "scaling.scale_up_factor",
			Value:   s.ScaleUpFactor,
			Message: "must be at least 1",
		})
	}

	if s.CoolDownFactor < 1 {
		errs = append(errs, ValidationError{
			Field:   "scaling.cool_down_factor",
			Value:   s.CoolDownFactor,
			Message: "must be at least 1",
		})
	}

	if s.IntervalSeconds < minIntervalSeconds || s.IntervalSeconds > maxIntervalSeconds {
		errs = append(errs, ValidationError{
			Field:   "scaling.interval_seconds",
			Value:   s.IntervalSeconds,
			Message: fmt.Sprintf("must be between %d and %d", minIntervalSeconds, maxIntervalSeconds),
		})
	}

	errs = append(errs, c.validateRanges()...)

	return errs
}

// validateRanges validates the band thresholds. Whether the pair count
// matches the selected trigger mode's dimensions is checked by the mode
// registry at construction time; here we only check internal consistency.
func (c *Config) validateRanges() ValidationErrors {
	var errs ValidationErrors
	s := &c.Scaling

	if len(s.MinRange) == 0 {
		errs = append(errs, ValidationError{
			Field:   "scaling.min_range",
			Value:   s.MinRange,
			Message: "at least one band threshold is required",
		})
	}

	if len(s.MinRange) != len(s.MaxRange) {
		errs = append(errs, ValidationError{
			Field:   "scaling.max_range",
			Value:   s.MaxRange,
			Message: fmt.Sprintf("must have the same length as min_range (%d)", len(s.MinRange)),
		})
		return errs
	}

	for i := range s.MinRange {
		if s.MinRange[i] < 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("scaling.min_range[%d]", i),
				Value:   s.MinRange[i],
				Message: "must not be negative",
			})
		}
		if s.MinRange[i] > s.MaxRange[i] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("scaling.max_range[%d]", i),
				Value:   s.MaxRange[i],
				Message: fmt.Sprintf("must be at least min_range[%d] (%v)", i, s.MinRange[i]),
			})
		}
	}

	return errs
}

// validateTelemetry validates the Prometheus listener settings
func (c *Config) validateTelemetry() ValidationErrors {
	var errs ValidationErrors
	t := &c.Telemetry

	if !t.Enabled {
		return errs
	}

	if _, _, err := net.SplitHostPort(t.ListenAddr); err != nil {
		errs = append(errs, ValidationError{
			Field:   "telemetry.listen_addr",
			Value:   t.ListenAddr,
			Message: "must be a valid host:port address",
		})
	}

	return errs
}

// validateLogging validates the logging settings
func (c *Config) validateLogging() ValidationErrors {
	var errs ValidationErrors
	l := &c.Logging

	validLevel := false
	for _, level := range ValidLogLevels() {
		if l.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   l.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if l.MaxSizeMB < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   l.MaxSizeMB,
			Message: "must not be negative",
		})
	}

	if l.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Value:   l.MaxBackups,
			Message: "must not be negative",
		})
	}

	return errs
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}
