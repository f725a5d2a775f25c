// Package sigerr defines the two failure kinds raised by the signature
// engine: configuration errors (programmer error, not recoverable at
// runtime) and verification errors (a message failed some part of the
// signature check).
package sigerr

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the sentinel all ConfigurationErrors wrap.
	// Use errors.Is(err, ErrConfiguration) to test for this kind.
	ErrConfiguration = errors.New("configuration error")

	// ErrVerification is the sentinel all VerificationErrors wrap.
	// Use errors.Is(err, ErrVerification) to test for this kind.
	ErrVerification = errors.New("verification error")
)

// ConfigurationError indicates structurally invalid input at construction
// or call time: unsupported algorithm, a private key required but absent,
// a version mismatch, and the like.
type ConfigurationError struct {
	Reason string
	Cause  error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %s", e.Reason, e.Cause)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrConfiguration, e.Cause}
	}
	return []error{ErrConfiguration}
}

// Configuration builds a *ConfigurationError with the given reason.
func Configuration(reason string) error {
	return &ConfigurationError{Reason: reason}
}

// Configurationf builds a *ConfigurationError from a format string.
func Configurationf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// WrapConfiguration builds a *ConfigurationError carrying an underlying cause.
func WrapConfiguration(reason string, cause error) error {
	return &ConfigurationError{Reason: reason, Cause: cause}
}

// VerificationError indicates a message failed a part of the signature
// check: absent signature, malformed parameters, bad base64, unsupported
// scheme, key not found, algorithm disagreement, MAC mismatch, digest
// mismatch, missing required header, or a created/expires slack violation.
type VerificationError struct {
	Reason string
	Cause  error
}

func (e *VerificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("verification error: %s: %s", e.Reason, e.Cause)
	}
	return fmt.Sprintf("verification error: %s", e.Reason)
}

func (e *VerificationError) Unwrap() error {
	return ErrVerification
}

// Verification builds a *VerificationError with the given reason.
func Verification(reason string) error {
	return &VerificationError{Reason: reason}
}

// Verificationf builds a *VerificationError from a format string.
func Verificationf(format string, args ...any) error {
	return &VerificationError{Reason: fmt.Sprintf(format, args...)}
}

// WrapVerification builds a *VerificationError carrying an underlying cause.
func WrapVerification(reason string, cause error) error {
	return &VerificationError{Reason: reason, Cause: cause}
}
