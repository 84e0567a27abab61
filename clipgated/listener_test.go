package main

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmair/clipgate/shared/config"
	"github.com/tmair/clipgate/shared/sink"
)

// startListener binds a throwaway port, serves in the background, and tears
// everything down with the test.
func startListener(t *testing.T, p *fakeProvider) (addr string, done <-chan error) {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = "127.0.0.1"
	cfg.Encoding = "utf-8"

	l := &listener{
		cfg:        cfg,
		dispatcher: &dispatcher{sinks: p, encoding: cfg.Encoding, log: zerolog.Nop()},
		log:        zerolog.Nop(),
	}

	// Bind a kernel-assigned port directly so tests never race over the
	// configured one.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	stop := make(chan struct{})
	errCh := make(chan error, 1)
	go func() { errCh <- l.serve(ln, stop) }()

	t.Cleanup(func() {
		close(stop)
		ln.Close()
		select {
		case <-errCh:
		case <-time.After(2 * time.Second):
		}
	})
	return ln.Addr().String(), errCh
}

// send opens a connection, writes the input, and closes to signal EOF.
func send(t *testing.T, addr, input string) {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	_, err = conn.Write([]byte(input))
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}

func TestEndToEndAcceptedPayload(t *testing.T) {
	p := newFakeProvider()
	addr, _ := startListener(t, p)

	send(t, addr, "change_on_install\ttype=clipboard\nHello\n")

	cs := p.sinkFor(sink.KindClipboard)
	assert.Eventually(t, func() bool {
		w := cs.all()
		return len(w) == 1 && w[0] == "Hello\n"
	}, 5*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return p.notifier.count() == 1 },
		5*time.Second, 10*time.Millisecond)
	assert.Contains(t, p.notifier.titles[0], "6 bytes")
	assert.Contains(t, p.notifier.titles[0], "clipboard")
	assert.Equal(t, "Hello", p.notifier.bodies[0])
}

func TestEndToEndRejectedKey(t *testing.T) {
	p := newFakeProvider()
	addr, _ := startListener(t, p)

	send(t, addr, "wrong_key\nHello\n")
	// A marker payload on a second connection proves the rejected one was
	// fully processed and dropped before this point; connections are
	// handled strictly in order.
	send(t, addr, "change_on_install\nmarker\n")

	cs := p.sinkFor(sink.KindClipboard)
	require.Eventually(t, func() bool { return len(cs.all()) == 1 },
		5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"marker\n"}, cs.all())
	assert.Eventually(t, func() bool { return p.notifier.count() == 1 },
		5*time.Second, 10*time.Millisecond)
}

func TestEndToEndEmptyPayloadIsNoOp(t *testing.T) {
	p := newFakeProvider()
	addr, _ := startListener(t, p)

	send(t, addr, "change_on_install\n")
	send(t, addr, "change_on_install\nmarker\n")

	cs := p.sinkFor(sink.KindClipboard)
	require.Eventually(t, func() bool { return len(cs.all()) == 1 },
		5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return p.notifier.count() >= 1 },
		5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"marker\n"}, cs.all())
	assert.Equal(t, 1, p.notifier.count(), "only the marker payload may notify")
	assert.Equal(t, "marker", p.notifier.bodies[0])
}

func TestEndToEndSequentialConnections(t *testing.T) {
	p := newFakeProvider()
	addr, _ := startListener(t, p)

	for _, text := range []string{"one\n", "two\n", "three\n"} {
		send(t, addr, "change_on_install\n"+text)
	}

	cs := p.sinkFor(sink.KindClipboard)
	require.Eventually(t, func() bool { return len(cs.all()) == 3 },
		5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"one\n", "two\n", "three\n"}, cs.all())
}

func TestEndToEndSinkUnavailableStopsDaemon(t *testing.T) {
	p := newFakeProvider()
	p.sinkErr = assert.AnError
	addr, done := startListener(t, p)

	send(t, addr, "change_on_install\nHello\n")

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errSinkUnavailable)
	case <-time.After(5 * time.Second):
		t.Fatal("serve should have returned a fatal error")
	}
}

func TestListenerBindFailure(t *testing.T) {
	// Occupy a port, then ask the listener to bind it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	cfg := config.Default()
	cfg.Addr = "127.0.0.1"
	cfg.Port = port

	l := &listener{cfg: cfg, log: zerolog.Nop()}
	_, err = l.listen()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to bind")
}
