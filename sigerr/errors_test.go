package sigerr

import (
	"errors"
	"testing"
)

func TestConfigurationErrorIsSentinel(t *testing.T) {
	err := Configuration("bad secret")
	if !errors.Is(err, ErrConfiguration) {
		t.Error("expected errors.Is to match ErrConfiguration")
	}
	if errors.Is(err, ErrVerification) {
		t.Error("did not expect ErrVerification to match")
	}
}

func TestVerificationErrorIsSentinel(t *testing.T) {
	err := Verification("mac mismatch")
	if !errors.Is(err, ErrVerification) {
		t.Error("expected errors.Is to match ErrVerification")
	}
}

func TestWrapConfigurationUnwraps(t *testing.T) {
	cause := errors.New("disk on fire")
	err := WrapConfiguration("failed to load key", cause)

	if !errors.Is(err, ErrConfiguration) {
		t.Error("expected errors.Is to match ErrConfiguration")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}
}

func TestConfigurationfFormats(t *testing.T) {
	err := Configurationf("unsupported MAC algorithm: %s", "rot13")
	if err.Error() == "" {
		t.Fatal("expected a non-empty message")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Error("expected errors.Is to match ErrConfiguration")
	}
}
