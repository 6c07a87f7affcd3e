// Package config loads and saves the proxy's TOML settings file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Listener configures the accept loop.
type Listener struct {
	Bind           string `toml:"bind"`
	MaxConnections int    `toml:"max_connections"`
}

// Proxy configures per-session behavior.
type Proxy struct {
	CompressionThreshold    int32  `toml:"compression_threshold"`
	MaxPlayers              int32  `toml:"max_players"`
	OnlineMode              bool   `toml:"online_mode"`
	PlayerForwardMode       string `toml:"player_forward_mode"`
	PlayerLimit             int32  `toml:"player_limit"`
	PreventProxyConnections bool   `toml:"prevent_proxy_connections"`
	MOTD                    string `toml:"motd"`
	Favicon                 string `toml:"favicon"`
}

// Config is the whole settings file.
type Config struct {
	Listener Listener          `toml:"listener"`
	Proxy    Proxy             `toml:"proxy"`
	Hosts    map[string]string `toml:"hosts"`
	Servers  map[string]string `toml:"servers"`
}

// PlayerForwardNone and PlayerForwardBungeeCord are the only two legal
// values of Proxy.PlayerForwardMode.
const (
	PlayerForwardNone       = "none"
	PlayerForwardBungeeCord = "bungeecord"
)

// Default returns the configuration vanilla installs ship with absent a
// settings file on disk.
func Default() *Config {
	return &Config{
		Listener: Listener{
			Bind:           "127.0.0.1:25577",
			MaxConnections: 8196,
		},
		Proxy: Proxy{
			CompressionThreshold:    256,
			MaxPlayers:              4000,
			OnlineMode:              true,
			PlayerForwardMode:       PlayerForwardNone,
			PlayerLimit:             -1,
			PreventProxyConnections: false,
			MOTD:                    "§dAnother Lure proxy",
			Favicon:                 "server-icon.png",
		},
		Hosts:   map[string]string{"*": "lobby"},
		Servers: map[string]string{"lobby": "127.0.0.1:25565"},
	}
}

// Load reads and parses path. A parse error is fatal to the caller; a
// missing file is reported via os.IsNotExist so the CLI entrypoint can fall
// back to writing out defaults.
//
// Unrecognized top-level keys are collected and logged by the caller rather
// than rejected outright, so a settings file written for a newer build
// still loads.
func Load(path string) (cfg *Config, unknownKeys []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg = &Config{}
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	for _, key := range meta.Undecoded() {
		unknownKeys = append(unknownKeys, key.String())
	}

	if cfg.Hosts == nil {
		cfg.Hosts = map[string]string{}
	}
	if cfg.Servers == nil {
		cfg.Servers = map[string]string{}
	}

	return cfg, unknownKeys, nil
}

// Save writes cfg to path as TOML, creating or truncating the file.
func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	return nil
}
