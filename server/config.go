// File: server/config.go
// Package server holds the lightws server configuration surface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sugawarayuuta/sonnet"
	"go.yaml.in/yaml/v3"

	"github.com/momentics/lightws/api"
	"github.com/momentics/lightws/protocol"
)

// maxConfigFileBytes bounds config files read from disk.
const maxConfigFileBytes = 1 << 20

// Config holds all server-side configuration parameters. The
// configuration is immutable once Start has been called.
type Config struct {
	Port             uint16        // TCP port the listener binds (INADDR_ANY)
	Mode             api.Mode      // network provisioning mode (AP or STA)
	SSID             string        // network name handed to the provisioner
	Password         string        // network credential handed to the provisioner
	PingInterval     time.Duration // liveness ping period
	MaxInactivity    time.Duration // read deadline; silence beyond this closes the client
	PingPong         bool          // enables the liveness ping task
	MaxFrameSize     int           // in-buffer frame ceiling F
	MaxMessageSize   int           // cap for oversize and reassembled payloads
	WriteTimeout     time.Duration // per-frame write deadline
	HandshakeTimeout time.Duration // upgrade request read deadline
	ShutdownTimeout  time.Duration // graceful stop bound
	Debug            bool          // verbose per-frame logging
	PreStart         func()        // invoked after validation, before the network comes up
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:             80,
		Mode:             api.ModeAP,
		PingInterval:     6000 * time.Millisecond,
		MaxInactivity:    50000 * time.Millisecond,
		PingPong:         true,
		MaxFrameSize:     protocol.DefaultMaxFrameSize,
		MaxMessageSize:   protocol.DefaultMaxMessageSize,
		WriteTimeout:     5 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		ShutdownTimeout:  5 * time.Second,
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Port == 0 {
		return api.NewError(api.CodeConfig, "port must be nonzero")
	}
	if c.Mode != api.ModeAP && c.Mode != api.ModeSTA {
		return api.NewError(api.CodeConfig, "unknown network mode").
			WithContext("mode", int(c.Mode))
	}
	if c.MaxFrameSize < protocol.MaxFrameHeaderLen+protocol.MaxControlPayloadLen {
		return api.NewError(api.CodeConfig, "frame size below protocol minimum").
			WithContext("max_frame_size", c.MaxFrameSize)
	}
	if c.MaxMessageSize < c.MaxFrameSize {
		return api.NewError(api.CodeConfig, "message cap below frame size").
			WithContext("max_message_size", c.MaxMessageSize)
	}
	if c.PingPong && c.PingInterval <= 0 {
		return api.NewError(api.CodeConfig, "ping interval must be positive")
	}
	if c.MaxInactivity <= 0 {
		return api.NewError(api.CodeConfig, "inactivity limit must be positive")
	}
	return nil
}

// Snapshot renders the effective settings for the control store.
func (c *Config) Snapshot() map[string]any {
	return map[string]any{
		"port":                 c.Port,
		"mode":                 c.Mode.String(),
		"ssid":                 c.SSID,
		"ping_interval_ms":     c.PingInterval.Milliseconds(),
		"max_inactivity_ms":    c.MaxInactivity.Milliseconds(),
		"ping_pong":            c.PingPong,
		"max_frame_size":       c.MaxFrameSize,
		"max_message_size":     c.MaxMessageSize,
		"write_timeout_ms":     c.WriteTimeout.Milliseconds(),
		"handshake_timeout_ms": c.HandshakeTimeout.Milliseconds(),
		"debug":                c.Debug,
	}
}

// fileConfig is the on-disk configuration shape shared by the YAML and
// JSON loaders. Booleans are pointers so an explicit false survives
// the merge with defaults.
type fileConfig struct {
	Port               int    `yaml:"port" json:"port"`
	Mode               string `yaml:"mode" json:"mode"`
	SSID               string `yaml:"ssid" json:"ssid"`
	Password           string `yaml:"password" json:"password"`
	PingIntervalMs     int    `yaml:"ping_interval_ms" json:"ping_interval_ms"`
	MaxInactivityMs    int    `yaml:"max_inactivity_ms" json:"max_inactivity_ms"`
	PingPong           *bool  `yaml:"ping_pong" json:"ping_pong"`
	MaxFrameSize       int    `yaml:"max_frame_size" json:"max_frame_size"`
	MaxMessageSize     int    `yaml:"max_message_size" json:"max_message_size"`
	WriteTimeoutMs     int    `yaml:"write_timeout_ms" json:"write_timeout_ms"`
	HandshakeTimeoutMs int    `yaml:"handshake_timeout_ms" json:"handshake_timeout_ms"`
	Debug              *bool  `yaml:"debug" json:"debug"`
}

// LoadConfig reads a configuration file, merging its values over the
// defaults. The format follows the file extension: .yaml/.yml or .json.
func LoadConfig(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if info.Size() > maxConfigFileBytes {
		return nil, api.NewError(api.CodeConfig, "config file too large").
			WithContext("path", path).
			WithContext("size", info.Size())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return nil, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	case ".json":
		if err := sonnet.Unmarshal(raw, &fc); err != nil {
			return nil, fmt.Errorf("parse json config %s: %w", path, err)
		}
	default:
		return nil, api.NewError(api.CodeConfig, "unsupported config format").
			WithContext("extension", ext)
	}

	return fc.merge(DefaultConfig())
}

// merge overlays the file values on cfg and validates the result.
func (fc *fileConfig) merge(cfg *Config) (*Config, error) {
	if fc.Port != 0 {
		if fc.Port < 0 || fc.Port > 0xFFFF {
			return nil, api.NewError(api.CodeConfig, "port out of range").
				WithContext("port", fc.Port)
		}
		cfg.Port = uint16(fc.Port)
	}
	switch strings.ToLower(fc.Mode) {
	case "":
	case "ap":
		cfg.Mode = api.ModeAP
	case "sta":
		cfg.Mode = api.ModeSTA
	default:
		return nil, api.NewError(api.CodeConfig, "unknown network mode").
			WithContext("mode", fc.Mode)
	}
	if fc.SSID != "" {
		cfg.SSID = fc.SSID
	}
	if fc.Password != "" {
		cfg.Password = fc.Password
	}
	if fc.PingIntervalMs != 0 {
		cfg.PingInterval = time.Duration(fc.PingIntervalMs) * time.Millisecond
	}
	if fc.MaxInactivityMs != 0 {
		cfg.MaxInactivity = time.Duration(fc.MaxInactivityMs) * time.Millisecond
	}
	if fc.PingPong != nil {
		cfg.PingPong = *fc.PingPong
	}
	if fc.MaxFrameSize != 0 {
		cfg.MaxFrameSize = fc.MaxFrameSize
	}
	if fc.MaxMessageSize != 0 {
		cfg.MaxMessageSize = fc.MaxMessageSize
	}
	if fc.WriteTimeoutMs != 0 {
		cfg.WriteTimeout = time.Duration(fc.WriteTimeoutMs) * time.Millisecond
	}
	if fc.HandshakeTimeoutMs != 0 {
		cfg.HandshakeTimeout = time.Duration(fc.HandshakeTimeoutMs) * time.Millisecond
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
