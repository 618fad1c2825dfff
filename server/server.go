// File: server/server.go
// Package server implements the single-client WebSocket server core:
// lifecycle, accept loop, and the control facade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/lightws/api"
	"github.com/momentics/lightws/control"
	"github.com/momentics/lightws/pool"
	"github.com/momentics/lightws/protocol"
	"github.com/momentics/lightws/transport"
)

// Server owns the listener, the at-most-one client connection, and
// the two engine tasks (acceptor/reader and liveness ping).
type Server struct {
	cfg         *Config
	callbacks   api.Callbacks
	listener    api.Listener
	provisioner api.Provisioner

	mu     sync.Mutex
	conn   *clientConn
	nextID api.ClientID

	started int32
	stopped int32
	done    chan struct{}
	wg      sync.WaitGroup

	rxPool *pool.BytePool
	txPool *pool.BytePool

	store   *control.ConfigStore
	metrics *control.MetricsRegistry
	probes  *control.DebugProbes
}

// New builds a server with defaults overlaid by the given options.
func New(opts ...Option) *Server {
	s := &Server{
		cfg:         DefaultConfig(),
		provisioner: transport.NullProvisioner{},
		done:        make(chan struct{}),
		store:       control.NewConfigStore(),
		metrics:     control.NewMetricsRegistry(),
		probes:      control.NewDebugProbes(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

var (
	defaultServer *Server
	defaultOnce   sync.Once
)

// Default returns the process-wide server instance, constructing it
// with defaults on first use. Embedders wanting options build their
// own instance with New.
func Default() *Server {
	defaultOnce.Do(func() {
		defaultServer = New()
	})
	return defaultServer
}

// Start validates the configuration, brings the network up, binds the
// listener, and launches the engine tasks. On failure the server is
// left stopped and may be started again after the caller fixes the
// configuration.
func (s *Server) Start() error {
	if !atomic.CompareAndSwapInt32(&s.started, 0, 1) {
		return api.ErrAlreadyStarted
	}
	if err := s.cfg.Validate(); err != nil {
		atomic.StoreInt32(&s.started, 0)
		return err
	}

	if s.cfg.PreStart != nil {
		s.cfg.PreStart()
	}

	netCfg := api.NetworkConfig{Mode: s.cfg.Mode, SSID: s.cfg.SSID, Password: s.cfg.Password}
	if err := s.provisioner.Start(netCfg); err != nil {
		atomic.StoreInt32(&s.started, 0)
		return api.NewError(api.CodeConfig, "network provisioning failed").
			WithContext("cause", err.Error())
	}

	if s.listener == nil {
		ln, err := transport.Listen(fmt.Sprintf(":%d", s.cfg.Port))
		if err != nil {
			s.provisioner.Stop()
			atomic.StoreInt32(&s.started, 0)
			return api.NewError(api.CodeTransport, "listener bind failed").
				WithContext("port", s.cfg.Port).
				WithContext("cause", err.Error())
		}
		s.listener = ln
	}

	// RX holds header+payload up to F; TX adds header room so a full
	// F-byte chunk still ships as one write.
	s.rxPool = pool.NewBytePool(s.cfg.MaxFrameSize, 2)
	s.txPool = pool.NewBytePool(s.cfg.MaxFrameSize+protocol.MaxFrameHeaderLen, 2)

	s.store.SetConfig(s.cfg.Snapshot())
	s.registerProbes()

	s.wg.Add(1)
	go s.acceptLoop()
	if s.cfg.PingPong {
		s.wg.Add(1)
		go s.pingLoop()
	}

	log.Printf("lightws: serving on %s", s.listener.Addr())
	return nil
}

// Stop closes the listener and any live client, then waits for the
// engine tasks to drain within the shutdown timeout.
func (s *Server) Stop() error {
	if atomic.LoadInt32(&s.started) == 0 {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		return nil
	}

	close(s.done)
	s.listener.Close()
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()
	if c != nil {
		c.conn.Close()
	}
	s.provisioner.Stop()

	waited := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		return nil
	case <-time.After(s.cfg.ShutdownTimeout):
		return fmt.Errorf("shutdown timeout after %v", s.cfg.ShutdownTimeout)
	}
}

// Addr reports the listener address once the server is running.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr()
}

// IsClientConnected reports whether a client is currently open.
func (s *Server) IsClientConnected() bool {
	return s.currentConn() != nil
}

// Control exposes the config snapshot, runtime counters, and debug
// probes of this instance.
func (s *Server) Control() api.Control {
	return controlFacade{s}
}

// acceptLoop admits clients strictly one at a time: the next Accept
// happens only after the previous client has been torn down.
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if errors.Is(err, transport.ErrListenerClosed) || errors.Is(err, api.ErrTransportClosed) {
				return
			}
			log.Printf("lightws: accept: %v", err)
			continue
		}
		s.serveClient(conn)
	}
}

// currentConn returns the open client connection, or nil.
func (s *Server) currentConn() *clientConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil && s.conn.state() == stateOpen {
		return s.conn
	}
	return nil
}

// registerProbes publishes the engine state probes.
func (s *Server) registerProbes() {
	control.RegisterRuntimeProbes(s.probes)
	s.probes.RegisterProbe("server.client", func() any {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.conn == nil {
			return int64(api.NoClient)
		}
		return int64(s.conn.id)
	})
	s.probes.RegisterProbe("server.connected", func() any {
		return s.IsClientConnected()
	})
	s.probes.RegisterProbe("server.addr", func() any {
		return s.Addr()
	})
}

// debugf logs only when verbose logging is configured.
func (s *Server) debugf(format string, args ...any) {
	if s.cfg.Debug {
		log.Printf("lightws: "+format, args...)
	}
}

// controlFacade adapts the server internals to api.Control.
type controlFacade struct {
	s *Server
}

func (c controlFacade) ConfigSnapshot() map[string]any {
	return c.s.store.GetSnapshot()
}

func (c controlFacade) Stats() map[string]any {
	return c.s.metrics.GetSnapshot()
}

func (c controlFacade) RegisterDebugProbe(name string, fn func() any) {
	c.s.probes.RegisterProbe(name, fn)
}

func (c controlFacade) DumpState() map[string]any {
	return c.s.probes.DumpState()
}
