// File: server/options.go
// Package server defines functional options for the Server facade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"time"

	"github.com/momentics/lightws/api"
)

// Option customizes server initialization.
type Option func(*Server)

// WithConfig replaces the whole configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithPort sets the listener port.
func WithPort(port uint16) Option {
	return func(s *Server) {
		s.cfg.Port = port
	}
}

// WithMode selects AP or STA provisioning.
func WithMode(mode api.Mode) Option {
	return func(s *Server) {
		s.cfg.Mode = mode
	}
}

// WithCredentials sets the network name and secret for the provisioner.
func WithCredentials(ssid, password string) Option {
	return func(s *Server) {
		s.cfg.SSID = ssid
		s.cfg.Password = password
	}
}

// WithPingInterval sets the liveness ping period.
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) {
		s.cfg.PingInterval = d
	}
}

// WithMaxInactivity sets the silence limit after which the client is
// dropped.
func WithMaxInactivity(d time.Duration) Option {
	return func(s *Server) {
		s.cfg.MaxInactivity = d
	}
}

// WithPingPong toggles the liveness ping task.
func WithPingPong(enabled bool) Option {
	return func(s *Server) {
		s.cfg.PingPong = enabled
	}
}

// WithMaxFrameSize sets the in-buffer frame ceiling F.
func WithMaxFrameSize(n int) Option {
	return func(s *Server) {
		s.cfg.MaxFrameSize = n
	}
}

// WithMaxMessageSize caps oversize and reassembled payloads.
func WithMaxMessageSize(n int) Option {
	return func(s *Server) {
		s.cfg.MaxMessageSize = n
	}
}

// WithDebug enables verbose per-frame logging.
func WithDebug(enabled bool) Option {
	return func(s *Server) {
		s.cfg.Debug = enabled
	}
}

// WithPreStart registers a hook invoked after validation, before the
// network comes up.
func WithPreStart(hook func()) Option {
	return func(s *Server) {
		s.cfg.PreStart = hook
	}
}

// WithListener injects a pre-built listener, bypassing the TCP bind.
func WithListener(ln api.Listener) Option {
	return func(s *Server) {
		s.listener = ln
	}
}

// WithProvisioner substitutes the network provisioner.
func WithProvisioner(p api.Provisioner) Option {
	return func(s *Server) {
		s.provisioner = p
	}
}
