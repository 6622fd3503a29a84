// Package config loads command configuration from flags, environment
// variables, and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Well-known mainnet contract addresses, overridable for other deployments.
const (
	DefaultFactoryAddress  = "0x1f98431c8ad98523631ae4a59f267346ea31f984"
	DefaultPositionManager = "0xc36442b4a4522e871399cd717abdd847ab11fe88"
)

// RunConfig holds configuration for the run command.
type RunConfig struct {
	Input           string
	RPCURL          string
	PGDSN           string
	StateFile       string
	StateName       string
	FactoryAddress  string
	PositionManager string
	MetricsAddr     string
	MaxSweepSteps   int
	MaxRetries      int
	RetryBackoff    time.Duration
	LogLevel        string
}

// LoadRun merges config file, environment variables, and flags into RunConfig.
func LoadRun(cfgFile string, flags *pflag.FlagSet) (RunConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return RunConfig{}, err
	}

	v.SetDefault("state-file", "./data/state.json")
	v.SetDefault("state-name", "default")
	v.SetDefault("factory", DefaultFactoryAddress)
	v.SetDefault("position-manager", DefaultPositionManager)
	v.SetDefault("max-sweep-steps", 100)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	cfg := RunConfig{
		Input:           v.GetString("in"),
		RPCURL:          v.GetString("rpc"),
		PGDSN:           v.GetString("pg-dsn"),
		StateFile:       v.GetString("state-file"),
		StateName:       v.GetString("state-name"),
		FactoryAddress:  strings.ToLower(v.GetString("factory")),
		PositionManager: strings.ToLower(v.GetString("position-manager")),
		MetricsAddr:     v.GetString("metrics-addr"),
		MaxSweepSteps:   v.GetInt("max-sweep-steps"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		LogLevel:        v.GetString("log-level"),
	}

	if cfg.Input == "" {
		return RunConfig{}, fmt.Errorf("input file is required (--in)")
	}
	if cfg.RPCURL == "" {
		return RunConfig{}, fmt.Errorf("rpc url is required (--rpc)")
	}

	return cfg, nil
}

// EncodeConfig holds configuration for the encode command.
type EncodeConfig struct {
	Input    string
	Out      string
	LogLevel string
}

// LoadEncode merges config file, environment variables, and flags into EncodeConfig.
func LoadEncode(cfgFile string, flags *pflag.FlagSet) (EncodeConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return EncodeConfig{}, err
	}

	v.SetDefault("out", "./data/events.bin")
	v.SetDefault("log-level", "info")

	cfg := EncodeConfig{
		Input:    v.GetString("in"),
		Out:      v.GetString("out"),
		LogLevel: v.GetString("log-level"),
	}

	if cfg.Input == "" {
		return EncodeConfig{}, fmt.Errorf("input file is required (--in)")
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("DATASET")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}
