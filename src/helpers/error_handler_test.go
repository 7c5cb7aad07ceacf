package helpers

import (
	"errors"
	"testing"
	"time"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := &DatabaseError{SimTraderError: SimTraderError{
		Message: "failed to reach postgres",
		Cause:   cause,
	}}

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable through errors.Is")
	}

	var dbErr *DatabaseError
	if !errors.As(error(err), &dbErr) {
		t.Error("errors.As failed to match DatabaseError")
	}
	var valErr *ValidationError
	if errors.As(error(err), &valErr) {
		t.Error("DatabaseError must not match ValidationError")
	}

	want := "failed to reach postgres: connection reset"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := &ValidationError{SimTraderError: SimTraderError{
		Message: "speed cannot be negative: -1",
	}}
	if err.Error() != "speed cannot be negative: -1" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("Unwrap() should be nil without a cause")
	}
}

func TestRetryWithBackoffEventualSuccess(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff("flaky op", 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	if err != nil {
		t.Errorf("RetryWithBackoff = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoffExhausted(t *testing.T) {
	last := errors.New("still broken")
	attempts := 0
	err := RetryWithBackoff("doomed op", 3, time.Millisecond, func() error {
		attempts++
		return last
	})

	if !errors.Is(err, last) {
		t.Errorf("RetryWithBackoff = %v, want last error", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}
