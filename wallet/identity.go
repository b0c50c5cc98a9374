// Package wallet tracks the session's wallet connection state.
// The Identity is the single writable copy; everything else observes it
// through snapshots or domain events.
package wallet

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gatechat/domain"
	"gatechat/domain/event"
	"gatechat/errors"
)

type Identity struct {
	mu       sync.Mutex
	log      *slog.Logger
	status   domain.WalletStatus
	address  domain.Address
	provider string
	events   chan<- event.DomainEvent
}

// NewIdentity starts Disconnected. Events are published best-effort on the
// session event channel; a full channel drops the event with a log line,
// it never blocks a connect or disconnect.
func NewIdentity(log *slog.Logger, events chan<- event.DomainEvent) *Identity {
	return &Identity{log: log, status: domain.Disconnected, events: events}
}

// Connect consumes an external connector handshake result.
// The state passes through Connecting while the candidate address is
// validated; a second Connect arriving in that window is rejected with
// ErrAlreadyConnecting rather than queued.
func (i *Identity) Connect(candidate domain.ConnectorResult) (domain.WalletIdentity, error) {
	i.mu.Lock()
	if i.status == domain.Connecting {
		snap := i.snapshotLocked()
		i.mu.Unlock()
		return snap, errors.ErrAlreadyConnecting
	}
	prev := i.status
	prevAddr := i.address
	prevProvider := i.provider
	i.status = domain.Connecting
	i.address = ""
	i.provider = ""
	i.mu.Unlock()

	addr, err := domain.ParseAddress(candidate.Address)

	i.mu.Lock()
	defer i.mu.Unlock()
	if err != nil {
		// Validation failed: restore whatever was there before.
		i.status = prev
		i.address = prevAddr
		i.provider = prevProvider
		return i.snapshotLocked(), err
	}

	i.status = domain.Connected
	i.address = addr
	i.provider = candidate.Provider
	i.log.Info("Wallet connected", "address", addr.Truncate(4), "provider", candidate.Provider)
	i.publish(event.WalletConnected{Address: addr, Provider: candidate.Provider, At: time.Now()})
	return i.snapshotLocked(), nil
}

// Disconnect always succeeds and is idempotent.
func (i *Identity) Disconnect() domain.WalletIdentity {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.status == domain.Disconnected {
		return i.snapshotLocked()
	}

	addr := i.address
	i.status = domain.Disconnected
	i.address = ""
	i.provider = ""
	i.log.Info("Wallet disconnected", "address", addr.Truncate(4))
	i.publish(event.WalletDisconnected{Address: addr, At: time.Now()})
	return i.snapshotLocked()
}

// Snapshot returns the current identity as an immutable value.
func (i *Identity) Snapshot() domain.WalletIdentity {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.snapshotLocked()
}

func (i *Identity) snapshotLocked() domain.WalletIdentity {
	return domain.WalletIdentity{Status: i.status, Address: i.address, Provider: i.provider}
}

func (i *Identity) publish(e event.DomainEvent) {
	if i.events == nil {
		return
	}
	select {
	case i.events <- e:
	default:
		i.log.Warn(fmt.Sprintf("Event channel full, dropping %T", e))
	}
}
