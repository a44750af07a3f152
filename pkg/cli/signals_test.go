package cli

import (
	"testing"
	"time"
)

func TestWaitForShutdown(t *testing.T) {
	sigChan := WaitForShutdown()
	if sigChan == nil {
		t.Fatal("WaitForShutdown returned nil channel")
	}

	select {
	case sig := <-sigChan:
		t.Errorf("unexpected signal: %v", sig)
	case <-time.After(10 * time.Millisecond):
	}
}
