package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("backend.port", "must be between 1 and 65535")
	want := "config error in backend.port: must be between 1 and 65535"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	bare := NewConfigError("", "failed to load config")
	if bare.Error() != "config error: failed to load config" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestCommandError(t *testing.T) {
	cause := fmt.Errorf("listen tcp: address already in use")
	err := NewCommandError("run", cause)

	want := "command run failed: listen tcp: address already in use"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should expose the cause")
	}
}
