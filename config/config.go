// Package config loads server configuration from an INI file, following
// the Config-struct-plus-constructor shape used throughout this codebase.
package config

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"
)

// Config holds every server-tunable parameter.
type Config struct {
	Host string
	Port int

	TickInterval time.Duration
	GameSpeed    int

	InitialChunkAmount int

	GridWidth  int
	GridHeight int

	MaxConnections int
}

// DefaultConfig returns the values the server runs with when no file is
// supplied.
func DefaultConfig() Config {
	return Config{
		Host:               "127.0.0.1",
		Port:               8888,
		TickInterval:       50 * time.Millisecond,
		GameSpeed:          1,
		InitialChunkAmount: 4,
		GridWidth:          40,
		GridHeight:         30,
		MaxConnections:     256,
	}
}

// FastTestConfig returns a config tuned for quick-running tests: short
// ticks, a small grid.
func FastTestConfig() Config {
	cfg := DefaultConfig()
	cfg.TickInterval = 10 * time.Millisecond
	cfg.GridWidth = 12
	cfg.GridHeight = 10
	return cfg
}

// Load reads an INI file and overlays it on DefaultConfig. Section name is
// "snake_server"; all keys are optional, defaults fill the rest.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}

	sec := f.Section("snake_server")

	if v := sec.Key("host").String(); v != "" {
		cfg.Host = v
	}
	if sec.HasKey("port") {
		port, err := sec.Key("port").Int()
		if err != nil {
			return Config{}, fmt.Errorf("config: port: %w", err)
		}
		cfg.Port = port
	}
	if sec.HasKey("tick_interval") {
		ms, err := sec.Key("tick_interval").Int()
		if err != nil {
			return Config{}, fmt.Errorf("config: tick_interval: %w", err)
		}
		cfg.TickInterval = time.Duration(ms) * time.Millisecond
	}
	if sec.HasKey("game_speed") {
		speed, err := sec.Key("game_speed").Int()
		if err != nil {
			return Config{}, fmt.Errorf("config: game_speed: %w", err)
		}
		cfg.GameSpeed = speed
	}
	if sec.HasKey("initial_chunk_amount") {
		n, err := sec.Key("initial_chunk_amount").Int()
		if err != nil {
			return Config{}, fmt.Errorf("config: initial_chunk_amount: %w", err)
		}
		cfg.InitialChunkAmount = n
	}

	return cfg, nil
}
