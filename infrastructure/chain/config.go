package chain

import "github.com/kelseyhightower/envconfig"

// Config tunes the local chain simulator.
type Config struct {
	ConfirmDelay   string  `envconfig:"CHAIN_CONFIRM_DELAY" default:"900ms"`
	FailureRate    float64 `envconfig:"CHAIN_FAILURE_RATE" default:"0.05"`
	DefaultBalance string  `envconfig:"CHAIN_DEFAULT_BALANCE" default:"500"`
	Seed           int64   `envconfig:"CHAIN_SEED" default:"0"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
