// Package metrics tracks atomic counters for proxy events: admission,
// handshake outcomes, authentication, routing, and the bytes piped in each
// direction.
package metrics

import (
	"sync/atomic"
	"time"
)

// Registry holds every counter the proxy maintains across its lifetime.
type Registry struct {
	StartTime time.Time

	TotalConnections  atomic.Uint64
	ActiveConnections atomic.Uint64

	StatusPings atomic.Uint64

	LoginsOnline  atomic.Uint64
	LoginsOffline atomic.Uint64
	AuthFailures  atomic.Uint64

	BackendDialFailures atomic.Uint64

	CompressionActivations atomic.Uint64
	EncryptionActivations  atomic.Uint64

	BytesClientToBackend atomic.Uint64
	BytesBackendToClient atomic.Uint64
}

// New returns an empty Registry timestamped at process start.
func New() *Registry {
	return &Registry{StartTime: time.Now()}
}

func (r *Registry) ConnectionAccepted() {
	r.TotalConnections.Add(1)
	r.ActiveConnections.Add(1)
}

func (r *Registry) ConnectionClosed() {
	r.ActiveConnections.Add(^uint64(0))
}

func (r *Registry) StatusPinged() { r.StatusPings.Add(1) }

func (r *Registry) LoggedIn(online bool) {
	if online {
		r.LoginsOnline.Add(1)
	} else {
		r.LoginsOffline.Add(1)
	}
}

func (r *Registry) AuthFailed() { r.AuthFailures.Add(1) }

func (r *Registry) BackendDialFailed() { r.BackendDialFailures.Add(1) }

func (r *Registry) CompressionEnabled() { r.CompressionActivations.Add(1) }

func (r *Registry) EncryptionEnabled() { r.EncryptionActivations.Add(1) }

func (r *Registry) AddBytesClientToBackend(n uint64) { r.BytesClientToBackend.Add(n) }

func (r *Registry) AddBytesBackendToClient(n uint64) { r.BytesBackendToClient.Add(n) }

// Snapshot is a point-in-time copy of every counter, suitable for logging or
// exposing over an inspection endpoint.
type Snapshot struct {
	UptimeSeconds           float64
	TotalConnections        uint64
	ActiveConnections       uint64
	StatusPings             uint64
	LoginsOnline            uint64
	LoginsOffline           uint64
	AuthFailures            uint64
	BackendDialFailures     uint64
	CompressionActivations  uint64
	EncryptionActivations   uint64
	BytesClientToBackend    uint64
	BytesBackendToClient    uint64
}

// Snapshot reads every counter into a plain struct.
func (r *Registry) Snapshot() Snapshot {
	return Snapshot{
		UptimeSeconds:          time.Since(r.StartTime).Seconds(),
		TotalConnections:       r.TotalConnections.Load(),
		ActiveConnections:      r.ActiveConnections.Load(),
		StatusPings:            r.StatusPings.Load(),
		LoginsOnline:           r.LoginsOnline.Load(),
		LoginsOffline:          r.LoginsOffline.Load(),
		AuthFailures:           r.AuthFailures.Load(),
		BackendDialFailures:    r.BackendDialFailures.Load(),
		CompressionActivations: r.CompressionActivations.Load(),
		EncryptionActivations:  r.EncryptionActivations.Load(),
		BytesClientToBackend:   r.BytesClientToBackend.Load(),
		BytesBackendToClient:   r.BytesBackendToClient.Load(),
	}
}

var global = New()

// Global returns the process-wide registry.
func Global() *Registry { return global }
