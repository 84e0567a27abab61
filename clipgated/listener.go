// Listener: owns the server socket, accepts connections one at a time, and
// drives each session to completion before touching the next.

package main

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tmair/clipgate/shared/config"
	"github.com/tmair/clipgate/shared/protocol"
)

// listener accepts and processes connections strictly sequentially.
//
// WHY no concurrency: The workload is low-frequency interactive snippets
// from an editor, not a throughput-sensitive service. One connection at a
// time keeps the sink side effects ordered and the whole daemon free of
// shared-state hazards. The cost is documented and accepted: a connected
// but silent sender blocks everyone else until it disconnects.
type listener struct {
	cfg        *config.Config
	dispatcher *dispatcher
	log        zerolog.Logger
}

// listen binds the server socket. A bind failure is fatal for the caller;
// the error carries the full address for diagnosis.
func (l *listener) listen() (net.Listener, error) {
	addr := net.JoinHostPort(l.cfg.Addr, strconv.Itoa(l.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	l.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	return ln, nil
}

// serve loops forever: accept one connection, process it fully (including
// the clipboard and notification side effects), close it, repeat. It
// returns nil after stop is closed, or an error when the daemon cannot
// continue (sink unavailable under a forced backend).
func (l *listener) serve(ln net.Listener, stop <-chan struct{}) error {
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-stop:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		if err := l.handle(conn); err != nil {
			return err
		}
	}
}

// handle processes one connection to completion. Per-connection failures
// (bad handshake, read errors, sink write errors) are logged and never
// crash the listener; only a sink-unavailable condition propagates.
func (l *listener) handle(conn net.Conn) error {
	defer conn.Close()

	sess := protocol.NewSession(conn.RemoteAddr().String())
	log := l.log.With().
		Str("session", sess.ID).
		Str("remote", sess.RemoteAddr).
		Logger()

	if err := sess.Run(conn, l.cfg.Key); err != nil {
		log.Warn().Err(err).Msg("connection failed")
		return nil
	}

	if !sess.Accepted() {
		// A key mismatch is a local outcome, not an error: close and move
		// on. Logged at info so verbosity 1 surfaces probing senders.
		log.Info().Msg("handshake rejected")
		return nil
	}

	log.Info().
		Int("payload_bytes", len(sess.Payload())).
		Str("type", sess.Headers().Type()).
		Msg("payload received")

	if err := l.dispatcher.writeText(sess.Payload(), sess.Headers()); err != nil {
		if errors.Is(err, errSinkUnavailable) {
			return err
		}
		log.Error().Err(err).Msg("dispatch failed")
	}
	return nil
}
