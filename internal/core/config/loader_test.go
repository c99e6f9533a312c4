package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TEST_ETH_RPC", "https://eth.example.org/v2/key")

	path := writeTempConfig(t, `
networks:
  ethereum: ${TEST_ETH_RPC}
wallets:
  treasury:
    address: "0x28c6c06298d514db089934071355e5743bf21d60"
    networks: ethereum
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Networks["ethereum"].URL; got != "https://eth.example.org/v2/key" {
		t.Errorf("Expected expanded URL, got %s", got)
	}
	if got := cfg.Wallets["treasury"].Networks; !reflect.DeepEqual(got, StringList{"ethereum"}) {
		t.Errorf("Expected scalar networks to decode as list, got %v", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, `
networks:
  ethereum: https://eth.example.org
wallets:
  treasury:
    address: "0xabc"
    networks: [ethereum]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Profile != ProfileFile {
		t.Errorf("expected file profile, got %s", cfg.Profile)
	}
	if cfg.Server.Port != 9091 {
		t.Errorf("expected default port 9091, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPath != "/metrics" {
		t.Errorf("expected /metrics, got %s", cfg.Server.MetricsPath)
	}
	if cfg.Poller.Interval != 15*time.Second {
		t.Errorf("expected 15s interval, got %s", cfg.Poller.Interval)
	}
	if cfg.Poller.Concurrency != 1 {
		t.Errorf("expected sequential sweep by default, got %d", cfg.Poller.Concurrency)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected info level, got %s", cfg.Logging.Level)
	}
	if !cfg.WalletLabelEnabled() {
		t.Error("expected walletName label for file profile")
	}
}

func TestLoad_FullNetworkMapping(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: 9200
poller:
  interval: 30s
  concurrency: 4
metrics:
  wallet_label: false
networks:
  bitcoin:
    url: https://blockstream.info/api
    type: bitcoin
    timeout: 4s
    include_mempool: true
  polygon:
    url: https://polygon.example.org
    decimals: 18
wallets:
  cold:
    address: bc1qxyz
    networks: [bitcoin]
  hot:
    address: "0xabc"
    networks: [polygon]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9200 || cfg.Poller.Interval != 30*time.Second || cfg.Poller.Concurrency != 4 {
		t.Errorf("overrides not applied: %+v %+v", cfg.Server, cfg.Poller)
	}
	if cfg.WalletLabelEnabled() {
		t.Error("expected wallet label disabled")
	}

	networks := cfg.NetworkList()
	btc := networks["bitcoin"]
	if btc.Type != "bitcoin" || btc.Timeout != 4*time.Second || !btc.IncludeMempool {
		t.Errorf("unexpected bitcoin network: %+v", btc)
	}
	if btc.NativeDecimals() != 8 {
		t.Errorf("expected 8 decimals, got %d", btc.NativeDecimals())
	}

	wallets := cfg.WalletList()
	if len(wallets) != 2 || wallets[0].Name != "cold" || wallets[1].Name != "hot" {
		t.Errorf("expected wallets sorted by name, got %+v", wallets)
	}
}

func TestLoad_JSONConfig(t *testing.T) {
	path := writeTempConfig(t, `{
  "networks": {"ethereum": "https://eth.example.org", "base": "https://base.example.org"},
  "wallets": {"ops": {"address": "0xabc", "networks": ["ethereum", "base"]}}
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cfg.ScrapableNetworks(); !reflect.DeepEqual(got, []string{"base", "ethereum"}) {
		t.Errorf("unexpected scrapable networks: %v", got)
	}
}

func TestLoad_IntegerDurationsAreSeconds(t *testing.T) {
	path := writeTempConfig(t, `
server:
  read_timeout: 3
poller:
  interval: 15
networks:
  ethereum:
    url: https://eth.example.org
    timeout: 5
  bitcoin:
    url: https://btc.example.org
    type: bitcoin
    timeout: 1.5
  solana:
    url: https://sol.example.org
    type: solana
    timeout: 250ms
wallets:
  ops:
    address: addr
    networks: [ethereum, bitcoin, solana]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Poller.Interval != 15*time.Second {
		t.Errorf("expected 15s interval, got %v", cfg.Poller.Interval)
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("expected 3s read timeout, got %v", cfg.Server.ReadTimeout)
	}
	want := map[string]time.Duration{
		"ethereum": 5 * time.Second,
		"bitcoin":  1500 * time.Millisecond,
		"solana":   250 * time.Millisecond,
	}
	for name, d := range want {
		if got := cfg.Networks[name].Timeout; got != d {
			t.Errorf("%s: expected timeout %v, got %v", name, d, got)
		}
	}
}

func TestLoad_LegacyKeys(t *testing.T) {
	path := writeTempConfig(t, `{
  "endpoints": {"ethereum": "https://eth.example.org", "bsc": "https://bsc.example.org"},
  "wallets": {"ops": {"address": "0xabc", "networks": ["ethereum", "bsc"]}},
  "settings": {"LOG_LEVEL": "DEBUG", "POLL_TIMER": 30, "PORT": 9200}
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Networks["ethereum"].URL != "https://eth.example.org" || cfg.Networks["bsc"].URL != "https://bsc.example.org" {
		t.Errorf("endpoints not mapped: %+v", cfg.Networks)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logging.Level)
	}
	if cfg.Poller.Interval != 30*time.Second {
		t.Errorf("expected 30s interval, got %v", cfg.Poller.Interval)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("expected port 9200, got %d", cfg.Server.Port)
	}
}

func TestLoad_LegacyKeysDoNotOverride(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: 9300
networks:
  ethereum: https://new.example.org
endpoints:
  ethereum: https://old.example.org
settings:
  PORT: 9200
wallets:
  ops:
    address: "0xabc"
    networks: [ethereum]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cfg.Networks["ethereum"].URL; got != "https://new.example.org" {
		t.Errorf("expected networks entry to win, got %s", got)
	}
	if cfg.Server.Port != 9300 {
		t.Errorf("expected port 9300, got %d", cfg.Server.Port)
	}
}

func TestLoad_SharedNetworkNeedsWalletLabel(t *testing.T) {
	const base = `
networks:
  ethereum: https://eth.example.org
  base: https://base.example.org
wallets:
  treasury:
    address: "0xabc"
    networks: [ethereum]
  ops:
    address: "0xdef"
    networks: %s
`
	tests := []struct {
		name     string
		metrics  string
		networks string
		wantErr  bool
	}{
		{"shared network without label", "metrics:\n  wallet_label: false\n", "[ethereum, base]", true},
		{"shared network with label", "metrics:\n  wallet_label: true\n", "[ethereum, base]", false},
		{"shared network default label", "", "[ethereum, base]", false},
		{"distinct networks without label", "metrics:\n  wallet_label: false\n", "[base]", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := tt.metrics + fmt.Sprintf(base, tt.networks)
			_, err := Load(writeTempConfig(t, content))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), "ops, treasury share network ethereum") {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_MissingRPCURL(t *testing.T) {
	path := writeTempConfig(t, `
networks:
  ethereum: https://eth.example.org
  arbitrum: ${TEST_UNSET_ARBITRUM_RPC}
wallets:
  treasury:
    address: "0xabc"
    networks: [ethereum, polygon, arbitrum]
  ops:
    address: "0xdef"
    networks: [polygon]
`)

	_, err := Load(path)
	var missing *MissingNetworksError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingNetworksError, got %v", err)
	}
	if !reflect.DeepEqual(missing.Networks, []string{"arbitrum", "polygon"}) {
		t.Errorf("expected [arbitrum polygon], got %v", missing.Networks)
	}
	if missing.Error() != "missing RPC URLs for networks: arbitrum, polygon" {
		t.Errorf("unexpected message: %s", missing.Error())
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no wallets", "networks:\n  ethereum: https://eth.example.org\n"},
		{"empty address", "networks:\n  ethereum: https://x\nwallets:\n  a:\n    networks: [ethereum]\n"},
		{"unknown type", "networks:\n  cosmos:\n    url: https://x\n    type: cosmos\nwallets:\n  a:\n    address: addr\n    networks: [cosmos]\n"},
		{"bad yaml", "wallets: [\n"},
		{"metrics path without slash", "server:\n  metrics_path: metrics\nnetworks:\n  ethereum: https://x\nwallets:\n  a:\n    address: addr\n    networks: [ethereum]\n"},
		{"bad duration", "poller:\n  interval: soon\nnetworks:\n  ethereum: https://x\nwallets:\n  a:\n    address: addr\n    networks: [ethereum]\n"},
		{"metrics path on health", "server:\n  metrics_path: /health\nnetworks:\n  ethereum: https://x\nwallets:\n  a:\n    address: addr\n    networks: [ethereum]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeTempConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
