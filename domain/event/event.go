package event

import (
	"time"

	"gatechat/domain"

	"github.com/google/uuid"
)

// DomainEvent is anything the session publishes to its sinks.
// Wallet-level events carry no room and return the empty RoomID.
type DomainEvent interface {
	RoomID() domain.RoomID
}

type WalletConnected struct {
	Address  domain.Address
	Provider string
	At       time.Time
}

func (e WalletConnected) RoomID() domain.RoomID { return "" }

type WalletDisconnected struct {
	Address domain.Address
	At      time.Time
}

func (e WalletDisconnected) RoomID() domain.RoomID { return "" }

// MessagePending fires when an admitted send is appended to the timeline,
// before the external submission settles.
type MessagePending struct {
	ID         uuid.UUID
	Room       domain.RoomID
	Sender     domain.Address
	Content    string
	Redactions int
	At         time.Time
}

func (e MessagePending) RoomID() domain.RoomID { return e.Room }

type MessageConfirmed struct {
	ID          uuid.UUID
	Room        domain.RoomID
	Sender      domain.Address
	TxRef       string
	ConfirmedAt time.Time
}

func (e MessageConfirmed) RoomID() domain.RoomID { return e.Room }

type MessageFailed struct {
	ID     uuid.UUID
	Room   domain.RoomID
	Sender domain.Address
	Reason string
	At     time.Time
}

func (e MessageFailed) RoomID() domain.RoomID { return e.Room }

// AccessDenied is advisory telemetry: the gate refused to present a send
// affordance. The authoritative enforcement stays on-chain.
type AccessDenied struct {
	Room     domain.RoomID
	Sender   domain.Address
	Decision string
	At       time.Time
}

func (e AccessDenied) RoomID() domain.RoomID { return e.Room }
