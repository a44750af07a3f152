package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	if err := os.WriteFile(path, []byte("backend:\n  host: first\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	watcher, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	reloaded := make(chan *Config, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = watcher.Watch(ctx, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("backend:\n  host: second\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Backend.Host != "second" {
			t.Errorf("reloaded host = %q, want second", cfg.Backend.Host)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_InvalidChangeKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	if err := os.WriteFile(path, []byte("backend:\n  host: stable\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	initial, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("initial load failed: %v", err)
	}
	SetConfig(initial)

	watcher, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	reloaded := make(chan *Config, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = watcher.Watch(ctx, func(cfg *Config) { reloaded <- cfg })
	}()
	time.Sleep(100 * time.Millisecond)

	// Out-of-range port must not replace the running configuration.
	if err := os.WriteFile(path, []byte("backend:\n  port: 99999\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		t.Fatalf("invalid configuration was applied: %+v", cfg.Backend)
	case <-time.After(800 * time.Millisecond):
	}

	if got := GetConfig().Backend.Host; got != "stable" {
		t.Errorf("running config changed: host = %q", got)
	}
}
