package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vietddude/wallet-exporter/internal/core/domain"
)

// Profile names the source a configuration was loaded from.
type Profile string

const (
	ProfileFile Profile = "file" // multi-wallet YAML/JSON file
	ProfileEnv  Profile = "env"  // single wallet from environment variables
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig             `yaml:"server"`
	Logging  LoggingConfig            `yaml:"logging"`
	Poller   PollerConfig             `yaml:"poller"`
	Metrics  MetricsConfig            `yaml:"metrics"`
	Networks map[string]NetworkConfig `yaml:"networks"`
	Wallets  map[string]WalletConfig  `yaml:"wallets"`

	// Endpoints and Settings are the keys of the legacy config.json layout.
	// Parse folds them into Networks, Server, Logging and Poller.
	Endpoints map[string]NetworkConfig `yaml:"endpoints"`
	Settings  LegacySettings           `yaml:"settings"`

	Profile Profile `yaml:"-"`
}

// LegacySettings holds the `settings` block of the legacy layout.
type LegacySettings struct {
	LogLevel  string
	PollTimer time.Duration // plain numbers are seconds
	Port      int
}

func (l *LegacySettings) UnmarshalYAML(unmarshal func(any) error) error {
	var raw struct {
		LogLevel  string        `yaml:"LOG_LEVEL"`
		PollTimer durationValue `yaml:"POLL_TIMER"`
		Port      int           `yaml:"PORT"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*l = LegacySettings{LogLevel: raw.LogLevel, PollTimer: time.Duration(raw.PollTimer), Port: raw.Port}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	MetricsPath  string        `yaml:"metrics_path"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

func (c *ServerConfig) UnmarshalYAML(unmarshal func(any) error) error {
	var raw struct {
		Port         int           `yaml:"port"`
		MetricsPath  string        `yaml:"metrics_path"`
		ReadTimeout  durationValue `yaml:"read_timeout"`
		WriteTimeout durationValue `yaml:"write_timeout"`
		IdleTimeout  durationValue `yaml:"idle_timeout"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*c = ServerConfig{
		Port:         raw.Port,
		MetricsPath:  raw.MetricsPath,
		ReadTimeout:  time.Duration(raw.ReadTimeout),
		WriteTimeout: time.Duration(raw.WriteTimeout),
		IdleTimeout:  time.Duration(raw.IdleTimeout),
	}
	return nil
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// PollerConfig controls the sweep schedule.
type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Concurrency int           `yaml:"concurrency"` // 1 = sequential
}

func (p *PollerConfig) UnmarshalYAML(unmarshal func(any) error) error {
	var raw struct {
		Interval    durationValue `yaml:"interval"`
		Concurrency int           `yaml:"concurrency"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*p = PollerConfig{Interval: time.Duration(raw.Interval), Concurrency: raw.Concurrency}
	return nil
}

// MetricsConfig controls the exported label scheme.
type MetricsConfig struct {
	// WalletLabel adds the walletName label to wallet_balance.
	WalletLabel *bool `yaml:"wallet_label"`
}

// NetworkConfig holds settings for one RPC endpoint. In YAML it may be given
// either as a bare URL or as a mapping.
type NetworkConfig struct {
	URL            string        `yaml:"url"`
	Type           string        `yaml:"type"` // evm (default), bitcoin, solana
	Decimals       int32         `yaml:"decimals"`
	Timeout        time.Duration `yaml:"timeout"` // 0 = no timeout
	IncludeMempool bool          `yaml:"include_mempool"`
}

// UnmarshalYAML accepts `name: https://rpc` as well as the full mapping.
func (n *NetworkConfig) UnmarshalYAML(unmarshal func(any) error) error {
	var url string
	if err := unmarshal(&url); err == nil {
		*n = NetworkConfig{URL: url}
		return nil
	}
	var raw struct {
		URL            string        `yaml:"url"`
		Type           string        `yaml:"type"`
		Decimals       int32         `yaml:"decimals"`
		Timeout        durationValue `yaml:"timeout"`
		IncludeMempool bool          `yaml:"include_mempool"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*n = NetworkConfig{
		URL:            raw.URL,
		Type:           raw.Type,
		Decimals:       raw.Decimals,
		Timeout:        time.Duration(raw.Timeout),
		IncludeMempool: raw.IncludeMempool,
	}
	return nil
}

// durationValue decodes a Go duration ("15s") or a plain number of seconds.
type durationValue time.Duration

func (d *durationValue) UnmarshalYAML(unmarshal func(any) error) error {
	var secs float64
	if err := unmarshal(&secs); err == nil {
		*d = durationValue(time.Duration(secs * float64(time.Second)))
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = durationValue(v)
	return nil
}

// parseDuration accepts Go durations ("15s") or plain seconds ("15").
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// WalletConfig holds the address and tracked networks of one wallet.
type WalletConfig struct {
	Address  string     `yaml:"address"`
	Networks StringList `yaml:"networks"`
}

// StringList decodes from either a scalar or a sequence.
type StringList []string

func (s *StringList) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		if single == "" {
			*s = nil
		} else {
			*s = StringList{single}
		}
		return nil
	}
	var list []string
	if err := unmarshal(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

// WalletLabelEnabled reports whether balances are labeled by wallet name.
func (c *AppConfig) WalletLabelEnabled() bool {
	if c.Metrics.WalletLabel != nil {
		return *c.Metrics.WalletLabel
	}
	return c.Profile != ProfileEnv
}

// WalletList returns the configured wallets sorted by name.
func (c *AppConfig) WalletList() []domain.Wallet {
	names := make([]string, 0, len(c.Wallets))
	for name := range c.Wallets {
		names = append(names, name)
	}
	sort.Strings(names)

	wallets := make([]domain.Wallet, 0, len(names))
	for _, name := range names {
		wc := c.Wallets[name]
		wallets = append(wallets, domain.Wallet{
			Name:     name,
			Address:  wc.Address,
			Networks: append([]string(nil), wc.Networks...),
		})
	}
	return wallets
}

// NetworkList returns the configured networks. Call Validate first: unknown
// types fall back to evm here.
func (c *AppConfig) NetworkList() map[string]domain.Network {
	networks := make(map[string]domain.Network, len(c.Networks))
	for name, nc := range c.Networks {
		nt, err := domain.ParseNetworkType(nc.Type)
		if err != nil {
			nt = domain.NetworkTypeEVM
		}
		networks[name] = domain.Network{
			Name:           name,
			URL:            nc.URL,
			Type:           nt,
			Decimals:       nc.Decimals,
			Timeout:        nc.Timeout,
			IncludeMempool: nc.IncludeMempool,
		}
	}
	return networks
}

// ScrapableNetworks returns the sorted set of networks referenced by any wallet.
func (c *AppConfig) ScrapableNetworks() []string {
	seen := make(map[string]struct{})
	for _, wc := range c.Wallets {
		for _, n := range wc.Networks {
			seen[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
