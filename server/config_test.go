package server_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/momentics/lightws/api"
	"github.com/momentics/lightws/server"
)

func TestDefaultConfig(t *testing.T) {
	cfg := server.DefaultConfig()
	if cfg.Port != 80 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.Mode != api.ModeAP {
		t.Errorf("Mode = %v", cfg.Mode)
	}
	if cfg.PingInterval != 6000*time.Millisecond {
		t.Errorf("PingInterval = %v", cfg.PingInterval)
	}
	if cfg.MaxInactivity != 50000*time.Millisecond {
		t.Errorf("MaxInactivity = %v", cfg.MaxInactivity)
	}
	if !cfg.PingPong {
		t.Error("PingPong disabled by default")
	}
	if cfg.MaxFrameSize != 16384 {
		t.Errorf("MaxFrameSize = %d", cfg.MaxFrameSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*server.Config)
	}{
		{"zero port", func(c *server.Config) { c.Port = 0 }},
		{"bad mode", func(c *server.Config) { c.Mode = api.Mode(99) }},
		{"tiny frame", func(c *server.Config) { c.MaxFrameSize = 10 }},
		{"message below frame", func(c *server.Config) { c.MaxMessageSize = c.MaxFrameSize - 1 }},
		{"zero ping interval", func(c *server.Config) { c.PingInterval = 0 }},
		{"zero inactivity", func(c *server.Config) { c.MaxInactivity = 0 }},
	}
	for _, c := range cases {
		cfg := server.DefaultConfig()
		c.mutate(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: validated", c.name)
			continue
		}
		var apiErr *api.Error
		if !errors.As(err, &apiErr) || apiErr.Code != api.CodeConfig {
			t.Errorf("%s: err = %v", c.name, err)
		}
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightws.yaml")
	data := "port: 8080\n" +
		"mode: sta\n" +
		"ssid: workshop\n" +
		"password: hunter2\n" +
		"ping_interval_ms: 1000\n" +
		"max_inactivity_ms: 9000\n" +
		"ping_pong: false\n" +
		"debug: true\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := server.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || cfg.Mode != api.ModeSTA {
		t.Errorf("port=%d mode=%v", cfg.Port, cfg.Mode)
	}
	if cfg.SSID != "workshop" || cfg.Password != "hunter2" {
		t.Errorf("ssid=%q password=%q", cfg.SSID, cfg.Password)
	}
	if cfg.PingInterval != time.Second || cfg.MaxInactivity != 9*time.Second {
		t.Errorf("ping=%v inactivity=%v", cfg.PingInterval, cfg.MaxInactivity)
	}
	if cfg.PingPong {
		t.Error("explicit ping_pong false was lost")
	}
	if !cfg.Debug {
		t.Error("debug not set")
	}
	// Untouched values keep their defaults.
	if cfg.MaxFrameSize != 16384 {
		t.Errorf("MaxFrameSize = %d", cfg.MaxFrameSize)
	}
}

func TestLoadConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightws.json")
	data := `{"port": 9090, "mode": "ap", "ssid": "bench", "max_frame_size": 4096, "max_message_size": 65536}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := server.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9090 || cfg.Mode != api.ModeAP || cfg.SSID != "bench" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MaxFrameSize != 4096 || cfg.MaxMessageSize != 65536 {
		t.Errorf("frame=%d message=%d", cfg.MaxFrameSize, cfg.MaxMessageSize)
	}
}

func TestLoadConfigUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightws.toml")
	if err := os.WriteFile(path, []byte("port = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := server.LoadConfig(path)
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Code != api.CodeConfig {
		t.Errorf("err = %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := server.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error")
	}
}

func TestLoadConfigBadMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightws.yaml")
	if err := os.WriteFile(path, []byte("mode: mesh\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := server.LoadConfig(path); err == nil {
		t.Error("expected error")
	}
}

func TestConfigSnapshot(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.SSID = "floor-cam"
	snap := cfg.Snapshot()
	if snap["ping_interval_ms"] != int64(6000) {
		t.Errorf("ping_interval_ms = %v", snap["ping_interval_ms"])
	}
	if snap["mode"] != "ap" {
		t.Errorf("mode = %v", snap["mode"])
	}
	if snap["ssid"] != "floor-cam" {
		t.Errorf("ssid = %v", snap["ssid"])
	}
}
