// Package gateway drives one client through the handshake state machine
// and, for status sessions, answers inline; for login sessions, it dials
// the chosen backend and hands off to a session.PipeSession.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/wardenproxy/warden/internal/admission"
	"github.com/wardenproxy/warden/internal/config"
	"github.com/wardenproxy/warden/internal/conn"
	"github.com/wardenproxy/warden/internal/favicon"
	"github.com/wardenproxy/warden/internal/logz"
	"github.com/wardenproxy/warden/internal/mccrypto"
	"github.com/wardenproxy/warden/internal/metrics"
	"github.com/wardenproxy/warden/internal/protocol/packets"
	"github.com/wardenproxy/warden/internal/router"
)

// Server accepts client connections and drives each one through the
// handshake and, where applicable, play-phase piping.
type Server struct {
	cfg     *config.Config
	keys    *mccrypto.KeyPair
	routes  *router.Table
	sem     *admission.Semaphore
	metrics *metrics.Registry
	favicon string

	listener net.Listener
}

// New builds a Server ready for ListenAndServe.
func New(cfg *config.Config, keys *mccrypto.KeyPair) *Server {
	return &Server{
		cfg:     cfg,
		keys:    keys,
		routes:  router.New(cfg.Hosts, cfg.Servers),
		sem:     admission.New(cfg.Listener.MaxConnections),
		metrics: metrics.Global(),
		favicon: favicon.Load(cfg.Proxy.Favicon),
	}
}

// ListenAndServe binds the configured listener address and accepts
// connections until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listener.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen on %s: %w", s.cfg.Listener.Bind, err)
	}
	s.listener = ln

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	logz.Info("listening on %s (compression_threshold=%d, online_mode=%v)",
		s.cfg.Listener.Bind, s.cfg.Proxy.CompressionThreshold, s.cfg.Proxy.OnlineMode)

	for {
		sock, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				logz.Warn("accept: %v", err)
				continue
			}
		}
		go s.serve(ctx, sock)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) serve(ctx context.Context, sock net.Conn) {
	permit, err := s.sem.Acquire(ctx)
	if err != nil {
		sock.Close()
		return
	}

	s.metrics.ConnectionAccepted()
	defer s.metrics.ConnectionClosed()

	c := conn.New(sock, permit)
	addr := c.Addr()
	if err := s.handshake(c); err != nil && !errors.Is(err, context.Canceled) {
		logz.Warn("session %s: %v", addr, err)
	}
}

// handshake reads the first packet every session begins with and dispatches
// to the status or login branch per its declared next_state. It owns
// closing c in every case: a login session that reaches play hands that
// ownership to a session.PipeSession instead, which closes both legs itself.
func (s *Server) handshake(c *conn.Connection) error {
	var hs packets.Handshake
	if err := c.Recv(&hs); err != nil {
		c.Close()
		return fmt.Errorf("recv handshake: %w", err)
	}

	switch hs.NextState {
	case packets.NextStateStatus:
		err := s.handleStatus(c, &hs)
		c.Close()
		return err
	case packets.NextStateLogin:
		handedOff, err := s.handleLogin(c, &hs)
		if !handedOff {
			c.Close()
		}
		return err
	default:
		c.Close()
		return fmt.Errorf("handshake requested unknown next_state %d", hs.NextState)
	}
}
