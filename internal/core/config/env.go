package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envRPCURLPrefix   = "RPC_URL_"
	envFamilyPrefix   = "NETWORK_FAMILY_"
	envDecimalsPrefix = "NETWORK_DECIMALS_"
)

var ErrNoWalletAddress = errors.New("WALLET_ADDRESS is not set")

// LoadEnv builds a single-wallet configuration from environment variables.
// envFile is loaded first when it exists; variables already set win.
func LoadEnv(envFile string) (*AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}
	return FromEnv(os.Environ())
}

// FromEnv parses KEY=VALUE pairs as produced by os.Environ.
func FromEnv(environ []string) (*AppConfig, error) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			env[k] = v
		}
	}

	cfg := AppConfig{
		Profile:  ProfileEnv,
		Networks: make(map[string]NetworkConfig),
		Wallets:  make(map[string]WalletConfig),
	}

	for k, v := range env {
		name, ok := strings.CutPrefix(k, envRPCURLPrefix)
		if !ok || name == "" || v == "" {
			continue
		}
		name = strings.ToLower(name)
		nc := cfg.Networks[name]
		nc.URL = v
		cfg.Networks[name] = nc
	}
	for k, v := range env {
		if name, ok := strings.CutPrefix(k, envFamilyPrefix); ok && name != "" {
			name = strings.ToLower(name)
			nc := cfg.Networks[name]
			nc.Type = v
			cfg.Networks[name] = nc
		}
		if name, ok := strings.CutPrefix(k, envDecimalsPrefix); ok && name != "" {
			d, err := strconv.ParseInt(v, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			name = strings.ToLower(name)
			nc := cfg.Networks[name]
			nc.Decimals = int32(d)
			cfg.Networks[name] = nc
		}
	}

	address := strings.TrimSpace(env["WALLET_ADDRESS"])
	if address == "" {
		return nil, ErrNoWalletAddress
	}
	walletName := env["WALLET_NAME"]
	if walletName == "" {
		walletName = "default"
	}

	var networks StringList
	if list := env["WALLET_NETWORKS"]; list != "" {
		for _, n := range strings.Split(list, ",") {
			if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
				networks = append(networks, n)
			}
		}
	} else {
		for name, nc := range cfg.Networks {
			if nc.URL != "" {
				networks = append(networks, name)
			}
		}
		sort.Strings(networks)
	}
	cfg.Wallets[walletName] = WalletConfig{Address: address, Networks: networks}

	cfg.Logging.Level = strings.ToLower(env["LOG_LEVEL"])
	cfg.Logging.Format = strings.ToLower(env["LOG_FORMAT"])
	cfg.Server.MetricsPath = env["METRICS_PATH"]

	var err error
	if cfg.Server.Port, err = envInt(env, "PORT"); err != nil {
		return nil, err
	}
	if cfg.Poller.Concurrency, err = envInt(env, "POLL_CONCURRENCY"); err != nil {
		return nil, err
	}
	if cfg.Poller.Interval, err = envDuration(env, "POLL_INTERVAL"); err != nil {
		return nil, err
	}
	timeout, err := envDuration(env, "RPC_TIMEOUT")
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		for name, nc := range cfg.Networks {
			nc.Timeout = timeout
			cfg.Networks[name] = nc
		}
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envInt(env map[string]string, key string) (int, error) {
	v := strings.TrimSpace(env[key])
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(env map[string]string, key string) (time.Duration, error) {
	d, err := parseDuration(env[key])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
