// Package errors provides centralized error definitions and error handling
// utilities for the mesoscaler codebase. It defines domain-specific errors,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent failures from specific collaborators:
//   - MetricError: a signal provider could not produce a usable value
//   - OrchestratorError: the Marathon API was unreachable or rejected a read
//   - ScaleError: a scale request was submitted and failed
//   - ConfigError: the assembled configuration cannot produce a valid scaler
//
// # Usage
//
// Creating errors:
//
//	// Domain-specific error
//	err := errors.NewMetricError("no statistics for app", errors.ErrMetricUnavailable)
//
//	// With context wrapping
//	err := errors.NewMetricError("empty task set", nil).WithDimension("memory")
//
// Checking errors:
//
//	// Check for specific sentinel errors
//	if errors.Is(err, errors.ErrMetricUnavailable) { ... }
//
//	// Check for error types
//	var metricErr *errors.MetricError
//	if errors.As(err, &metricErr) { ... }
//
//	// Use classification helpers
//	if errors.IsRecoverable(err) { ... }
//
// # Error Classification
//
// Errors are classified by how the control loop must react:
//   - Recoverable: the cycle is abandoned and the next tick proceeds normally
//   - Fatal: the process must not start (configuration problems)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Metric-related sentinel errors
var (
	// ErrMetricUnavailable indicates that a signal provider could not produce
	// a usable value this cycle.
	ErrMetricUnavailable = New("metric unavailable")
	// ErrNoRunningTasks indicates that the monitored application has no tasks
	// to sample statistics from.
	ErrNoRunningTasks = New("no running tasks")
)

// Orchestrator-related sentinel errors
var (
	// ErrOrchestratorUnavailable indicates that the orchestrator API was
	// unreachable or returned an unusable response.
	ErrOrchestratorUnavailable = New("orchestrator unavailable")
	// ErrAppNotFound indicates that the monitored application does not exist.
	ErrAppNotFound = New("application not found")
	// ErrScaleRequestFailed indicates that a submitted scale request was
	// rejected or never acknowledged.
	ErrScaleRequestFailed = New("scale request failed")
	// ErrAuthFailed indicates that authentication against the cluster failed.
	ErrAuthFailed = New("authentication failed")
)

// Configuration-related sentinel errors
var (
	// ErrConfigurationInvalid indicates that the supplied configuration cannot
	// produce a valid scaler. It is fatal at startup.
	ErrConfigurationInvalid = New("configuration invalid")
	// ErrUnknownMode indicates that a trigger mode name has no registered
	// constructor.
	ErrUnknownMode = New("unknown trigger mode")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// ScalerError is the base interface for all mesoscaler errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type ScalerError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRecoverable returns true if the error aborts only the current
	// evaluation cycle; the loop continues at the next tick.
	IsRecoverable() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message     string
	cause       error
	severity    Severity
	recoverable bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRecoverable returns whether the cycle may simply be skipped.
func (e *baseError) IsRecoverable() bool {
	return e.recoverable
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// MetricError represents a signal provider failure. Any MetricError means the
// current cycle produced no verdict; it always matches ErrMetricUnavailable.
//
// Example:
//
//	err := errors.NewMetricError("statistics request failed", cause)
//	err = err.WithDimension("cpu").WithValue(rawBody)
//	fmt.Println(err) // "metric error [dimension=cpu]: statistics request failed: ..."
type MetricError struct {
	baseError
	Dimension string
	Value     any
}

// NewMetricError creates a new MetricError.
func NewMetricError(message string, cause error) *MetricError {
	return &MetricError{
		baseError: baseError{
			message:     message,
			cause:       cause,
			severity:    SeverityWarning,
			recoverable: true,
		},
	}
}

// WithDimension adds the signal dimension to the error context.
func (e *MetricError) WithDimension(dimension string) *MetricError {
	e.Dimension = dimension
	return e
}

// WithValue adds the raw value involved to the error context.
func (e *MetricError) WithValue(value any) *MetricError {
	e.Value = value
	return e
}

// WithSeverity sets the error severity.
func (e *MetricError) WithSeverity(s Severity) *MetricError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *MetricError) Error() string {
	var parts []string
	if e.Dimension != "" {
		parts = append(parts, fmt.Sprintf("dimension=%s", e.Dimension))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "metric error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("metric error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target. Every MetricError matches
// ErrMetricUnavailable so the engine can classify with a single sentinel.
func (e *MetricError) Is(target error) bool {
	if _, ok := target.(*MetricError); ok {
		return true
	}
	if errors.Is(target, ErrMetricUnavailable) {
		return true
	}
	return e.baseError.Is(target)
}

// OrchestratorError represents a failed interaction with the Marathon API.
//
// Example:
//
//	err := errors.NewOrchestratorError("fetch app", errors.ErrOrchestratorUnavailable)
//	err = err.WithAppID("/billing/worker").WithStatusCode(503)
type OrchestratorError struct {
	baseError
	AppID      string
	Op         string
	StatusCode int
}

// NewOrchestratorError creates a new OrchestratorError.
func NewOrchestratorError(message string, cause error) *OrchestratorError {
	return &OrchestratorError{
		baseError: baseError{
			message:     message,
			cause:       cause,
			severity:    SeverityWarning,
			recoverable: true,
		},
	}
}

// WithAppID adds the application ID to the error context.
func (e *OrchestratorError) WithAppID(id string) *OrchestratorError {
	e.AppID = id
	return e
}

// WithOp adds the API operation name to the error context.
func (e *OrchestratorError) WithOp(op string) *OrchestratorError {
	e.Op = op
	return e
}

// WithStatusCode adds the HTTP status code to the error context.
func (e *OrchestratorError) WithStatusCode(code int) *OrchestratorError {
	e.StatusCode = code
	return e
}

// WithSeverity sets the error severity.
func (e *OrchestratorError) WithSeverity(s Severity) *OrchestratorError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *OrchestratorError) Error() string {
	var parts []string
	if e.AppID != "" {
		parts = append(parts, fmt.Sprintf("app=%s", e.AppID))
	}
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	prefix := "orchestrator error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("orchestrator error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *OrchestratorError) Is(target error) bool {
	if _, ok := target.(*OrchestratorError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ScaleError represents a scale request that was submitted and failed.
// The request is reported and never retried within the cycle; it always
// matches ErrScaleRequestFailed.
//
// Example:
//
//	err := errors.NewScaleError("scale request rejected", cause)
//	err = err.WithAppID("/billing/worker").WithInstances(4, 8)
type ScaleError struct {
	baseError
	AppID string
	From  int
	To    int
}

// NewScaleError creates a new ScaleError.
func NewScaleError(message string, cause error) *ScaleError {
	return &ScaleError{
		baseError: baseError{
			message:     message,
			cause:       cause,
			severity:    SeverityError,
			recoverable: true,
		},
		From: -1,
		To:   -1,
	}
}

// WithAppID adds the application ID to the error context.
func (e *ScaleError) WithAppID(id string) *ScaleError {
	e.AppID = id
	return e
}

// WithInstances records the instance transition that failed.
func (e *ScaleError) WithInstances(from, to int) *ScaleError {
	e.From = from
	e.To = to
	return e
}

// Error returns the formatted error message.
func (e *ScaleError) Error() string {
	var parts []string
	if e.AppID != "" {
		parts = append(parts, fmt.Sprintf("app=%s", e.AppID))
	}
	if e.From >= 0 && e.To >= 0 {
		parts = append(parts, fmt.Sprintf("instances=%d->%d", e.From, e.To))
	}

	prefix := "scale error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("scale error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target. Every ScaleError matches
// ErrScaleRequestFailed.
func (e *ScaleError) Is(target error) bool {
	if _, ok := target.(*ScaleError); ok {
		return true
	}
	if errors.Is(target, ErrScaleRequestFailed) {
		return true
	}
	return e.baseError.Is(target)
}

// ConfigError represents a configuration that cannot produce a valid scaler.
// It is fatal at startup and always matches ErrConfigurationInvalid.
//
// Example:
//
//	err := errors.NewConfigError("combinator requires one range pair per dimension", nil)
//	err = err.WithField("scaling.ranges").WithValue(ranges)
type ConfigError struct {
	baseError
	Field string
	Value any
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		baseError: baseError{
			message:     message,
			cause:       cause,
			severity:    SeverityCritical,
			recoverable: false,
		},
	}
}

// WithField adds the configuration field name to the error context.
func (e *ConfigError) WithField(field string) *ConfigError {
	e.Field = field
	return e
}

// WithValue adds the offending value to the error context.
func (e *ConfigError) WithValue(value any) *ConfigError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "config error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("config error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target. Every ConfigError matches
// ErrConfigurationInvalid.
func (e *ConfigError) Is(target error) bool {
	if _, ok := target.(*ConfigError); ok {
		return true
	}
	if errors.Is(target, ErrConfigurationInvalid) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRecoverable returns true if the error only aborts the current evaluation
// cycle. The control loop logs it, skips the cycle, and proceeds at the next
// tick. This checks for:
//   - Errors implementing ScalerError with IsRecoverable() returning true
//   - Errors wrapping the per-cycle sentinels
//
// Example:
//
//	if errors.IsRecoverable(err) {
//	    log.Warn("cycle skipped", "error", err)
//	    continue
//	}
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}

	var scalerErr ScalerError
	if As(err, &scalerErr) {
		return scalerErr.IsRecoverable()
	}

	return Is(err, ErrMetricUnavailable) ||
		Is(err, ErrOrchestratorUnavailable) ||
		Is(err, ErrScaleRequestFailed) ||
		Is(err, ErrAppNotFound)
}

// IsFatal returns true if the error must stop the process at startup.
// Configuration problems are the only fatal class.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return Is(err, ErrConfigurationInvalid) || Is(err, ErrUnknownMode)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement ScalerError.
//
// Example:
//
//	switch errors.GetSeverity(err) {
//	case errors.SeverityCritical:
//	    log.Error("fatal", "err", err)
//	case errors.SeverityWarning:
//	    log.Warn("warning", "err", err)
//	}
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var scalerErr ScalerError
	if As(err, &scalerErr) {
		return scalerErr.Severity()
	}

	return SeverityError
}

// IsDomainError returns true if the error is a domain-specific error
// (MetricError, OrchestratorError, ScaleError, or ConfigError).
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}

	var metricErr *MetricError
	var orchErr *OrchestratorError
	var scaleErr *ScaleError
	var configErr *ConfigError

	return As(err, &metricErr) || As(err, &orchErr) ||
		As(err, &scaleErr) || As(err, &configErr)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to evaluate mode")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to scale app %s", appID)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
