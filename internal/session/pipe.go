// Package session drives the play-phase bidirectional pipe between a
// client and its backend once login has handed off: two goroutines copying
// in opposite directions, first finish wins. Blocking net.Conn reads can't
// be cancelled directly, so cancellation is closing both sockets, which
// unblocks whichever goroutine is still parked in a read.
package session

import (
	"sync"

	"github.com/wardenproxy/warden/internal/conn"
	"github.com/wardenproxy/warden/internal/metrics"
)

// PipeSession moves play-phase frames between a client and backend
// connection until either side closes or errors, then releases both.
type PipeSession struct {
	Client  *conn.Connection
	Backend *conn.Connection
}

// Run pipes frames in both directions and returns once either direction
// ends. Both connections (and the client's admission permit) are released
// exactly once before Run returns.
func (p *PipeSession) Run() error {
	errCh := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		errCh <- pipeLoop(p.Client, p.Backend, metrics.Global().AddBytesClientToBackend)
	}()
	go func() {
		defer wg.Done()
		errCh <- pipeLoop(p.Backend, p.Client, metrics.Global().AddBytesBackendToClient)
	}()

	// Whichever direction finishes first wins: close both sockets
	// immediately so the other goroutine's blocked read unblocks with an
	// error, then wait for it to actually return before releasing permits.
	first := <-errCh
	closeErr := p.Client.Close()
	if backendErr := p.Backend.Close(); closeErr == nil {
		closeErr = backendErr
	}
	wg.Wait()

	if first != nil {
		return first
	}
	return closeErr
}

func pipeLoop(src, dst *conn.Connection, countBytes func(uint64)) error {
	for {
		n, err := src.PipeOnce(dst)
		if n > 0 {
			countBytes(uint64(n))
		}
		if err != nil {
			return err
		}
	}
}
