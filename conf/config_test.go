package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: ":8090"
strategy:
  symbol: BTC/USDT
  barPeriod: 1d
`)
	AppConfig = Config{}
	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	sc := AppConfig.Strategy
	if sc.FastPeriod != 50 || sc.SlowPeriod != 200 {
		t.Fatalf("ema periods = %d/%d, want 50/200", sc.FastPeriod, sc.SlowPeriod)
	}
	if sc.MaxPositions != 3 {
		t.Fatalf("maxPositions = %d, want 3", sc.MaxPositions)
	}
	if sc.Timezone != "America/New_York" {
		t.Fatalf("timezone = %q", sc.Timezone)
	}
	if sc.WindowStart != "08:00" || sc.WindowEnd != "12:00" {
		t.Fatalf("window = %s-%s", sc.WindowStart, sc.WindowEnd)
	}
	if sc.ReevalInterval.Std() != 4*time.Hour {
		t.Fatalf("reevalInterval = %v, want 4h", sc.ReevalInterval.Std())
	}
}

func TestLoadConfigDurationString(t *testing.T) {
	path := writeConfig(t, `
strategy:
  symbol: BTC/USDT
  barPeriod: 4h
  reevalInterval: 30m
`)
	AppConfig = Config{}
	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if AppConfig.Strategy.ReevalInterval.Std() != 30*time.Minute {
		t.Fatalf("reevalInterval = %v, want 30m", AppConfig.Strategy.ReevalInterval.Std())
	}
}

func TestLoadConfigRejectsSlowNotGreaterThanFast(t *testing.T) {
	path := writeConfig(t, `
strategy:
  symbol: BTC/USDT
  barPeriod: 1d
  fastPeriod: 200
  slowPeriod: 50
`)
	AppConfig = Config{}
	if err := LoadConfig(path); err == nil {
		t.Fatal("expected error: slow period must be greater than fast period")
	}
}

func TestLoadConfigRejectsBadRiskFraction(t *testing.T) {
	path := writeConfig(t, `
strategy:
  symbol: BTC/USDT
  barPeriod: 1d
  riskPct: 1.5
`)
	AppConfig = Config{}
	if err := LoadConfig(path); err == nil {
		t.Fatal("expected error: riskPct must be a fraction in (0,1)")
	}
}

func TestLoadConfigRejectsBadTimezone(t *testing.T) {
	path := writeConfig(t, `
strategy:
  symbol: BTC/USDT
  barPeriod: 1d
  timezone: Mars/Olympus
`)
	AppConfig = Config{}
	if err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
