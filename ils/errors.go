package ils

import "fmt"

// Error taxonomy. Mutating operations report business denials as Result
// values, never as errors; errors indicate the operation could not be
// carried out at all.

// ConfigError reports an invalid or missing driver configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// TransportError reports an HTTP or protocol-level failure talking to the
// backend.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// OfflineError reports that the backend declared itself unavailable
// (database down, service timeout). Callers typically surface it as a
// temporary outage rather than a hard failure.
type OfflineError struct {
	Op     string
	Detail string
}

func (e *OfflineError) Error() string {
	return fmt.Sprintf("%s: ils offline: %s", e.Op, e.Detail)
}

// AuthError reports rejected patron credentials.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Detail
}
