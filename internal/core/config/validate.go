package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vietddude/wallet-exporter/internal/core/domain"
)

var ErrNoWallets = errors.New("no wallets configured")

// MissingNetworksError lists networks referenced by wallets without an RPC URL.
type MissingNetworksError struct {
	Networks []string
}

func (e *MissingNetworksError) Error() string {
	return "missing RPC URLs for networks: " + strings.Join(e.Networks, ", ")
}

// Validate checks that the configuration can drive a sweep. Every network a
// wallet references must have a URL; there is no partial-validity mode.
func (c *AppConfig) Validate() error {
	if len(c.Wallets) == 0 {
		return ErrNoWallets
	}

	var missing []string
	for _, name := range c.ScrapableNetworks() {
		nc, ok := c.Networks[name]
		if !ok || strings.TrimSpace(nc.URL) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingNetworksError{Networks: missing}
	}

	for name, wc := range c.Wallets {
		if strings.TrimSpace(wc.Address) == "" {
			return fmt.Errorf("wallet %s: address is required", name)
		}
		if len(wc.Networks) == 0 {
			return fmt.Errorf("wallet %s: no networks configured", name)
		}
	}

	if err := c.checkSharedNetworks(); err != nil {
		return err
	}

	for name, nc := range c.Networks {
		if _, err := domain.ParseNetworkType(nc.Type); err != nil {
			return fmt.Errorf("network %s: %w", name, err)
		}
		if nc.Decimals < 0 {
			return fmt.Errorf("network %s: decimals must not be negative", name)
		}
	}

	if c.Poller.Interval < 0 {
		return fmt.Errorf("poller interval must be positive, got %s", c.Poller.Interval)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if path := c.Server.MetricsPath; path != "" {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("metrics path must start with /, got %q", path)
		}
		if path == "/health" || path == "/health/detailed" {
			return fmt.Errorf("metrics path %q collides with the health endpoint", path)
		}
	}
	if c.Poller.Concurrency < 0 {
		return fmt.Errorf("poller concurrency must be positive, got %d", c.Poller.Concurrency)
	}
	return nil
}

// checkSharedNetworks rejects network-only labels when two wallets track the
// same network, since both would write the same series.
func (c *AppConfig) checkSharedNetworks() error {
	if c.WalletLabelEnabled() {
		return nil
	}
	owners := make(map[string][]string)
	for name, wc := range c.Wallets {
		for _, n := range wc.Networks {
			owners[n] = append(owners[n], name)
		}
	}
	for _, n := range c.ScrapableNetworks() {
		if wallets := owners[n]; len(wallets) > 1 {
			sort.Strings(wallets)
			return fmt.Errorf("metrics.wallet_label is disabled but wallets %s share network %s",
				strings.Join(wallets, ", "), n)
		}
	}
	return nil
}
