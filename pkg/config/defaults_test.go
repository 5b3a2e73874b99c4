package config

import (
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Listen != DefaultListen {
		t.Errorf("Expected listen %s, got %s", DefaultListen, cfg.Listen)
	}
	if cfg.MaxHops != DefaultMaxHops {
		t.Errorf("Expected max hops %d, got %d", DefaultMaxHops, cfg.MaxHops)
	}
	if cfg.MaxHops <= 0 {
		t.Error("MaxHops must be positive or traversal never advances")
	}
	if cfg.Policy != "" {
		t.Error("No policy gate should be configured by default")
	}
}
