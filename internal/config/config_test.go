package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ProviderBaseURL != "https://api.binance.com" {
		t.Errorf("unexpected provider base URL: %q", cfg.ProviderBaseURL)
	}
	if cfg.Symbol != "BTCUSDT" {
		t.Errorf("unexpected default symbol: %q", cfg.Symbol)
	}
	if cfg.InitialCapital != 10000 || cfg.FeeRate != 0.001 {
		t.Errorf("unexpected backtest defaults: %f / %f", cfg.InitialCapital, cfg.FeeRate)
	}
	if cfg.CacheTTL != 6*time.Hour {
		t.Errorf("unexpected cache TTL: %v", cfg.CacheTTL)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("unexpected listen addr: %q", cfg.ListenAddr)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SYMBOL", "ETHUSDT")
	t.Setenv("INITIAL_CAPITAL", "2500.5")
	t.Setenv("PROVIDER_RPS", "3")
	t.Setenv("CACHE_TTL", "45m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Symbol != "ETHUSDT" {
		t.Errorf("expected ETHUSDT, got %q", cfg.Symbol)
	}
	if cfg.InitialCapital != 2500.5 {
		t.Errorf("expected 2500.5, got %f", cfg.InitialCapital)
	}
	if cfg.ProviderRPS != 3 {
		t.Errorf("expected 3, got %d", cfg.ProviderRPS)
	}
	if cfg.CacheTTL != 45*time.Minute {
		t.Errorf("expected 45m, got %v", cfg.CacheTTL)
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("INITIAL_CAPITAL", "lots")
	t.Setenv("WORKERS", "many")
	t.Setenv("CACHE_TTL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.InitialCapital != 10000 {
		t.Errorf("expected fallback 10000, got %f", cfg.InitialCapital)
	}
	if cfg.Workers != 0 {
		t.Errorf("expected fallback 0, got %d", cfg.Workers)
	}
	if cfg.CacheTTL != 6*time.Hour {
		t.Errorf("expected fallback 6h, got %v", cfg.CacheTTL)
	}
}
