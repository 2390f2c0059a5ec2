package app

import (
	"os"

	"github.com/pagegrade/pagegrade/internal/fetcher"
)

// Config is the aggregate runtime configuration. Environment variables
// override defaults: PAGEGRADE_ADDR, PAGEGRADE_DATA_DIR and
// PAGEGRADE_PAGESPEED_ENDPOINT.
type Config struct {
	ListenAddr string
	DataDir    string

	Fetcher fetcher.Config
}

func DefaultConfig() *Config {
	cfg := &Config{
		ListenAddr: ":8080",
		DataDir:    "./data",
		Fetcher:    fetcher.DefaultConfig(),
	}
	if addr := os.Getenv("PAGEGRADE_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if dir := os.Getenv("PAGEGRADE_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if endpoint := os.Getenv("PAGEGRADE_PAGESPEED_ENDPOINT"); endpoint != "" {
		cfg.Fetcher.PageSpeedEndpoint = endpoint
	}
	return cfg
}
