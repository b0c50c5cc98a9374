// Package domain contains core concepts of the gated chat system.
// This file defines Message and its confirmation lifecycle.
// Messages mirror transaction finality: they are born Pending and settle
// exactly once into Confirmed or Failed.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageState int

const (
	Pending MessageState = iota
	Confirmed
	Failed
)

func (s MessageState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Message is immutable once Confirmed or Failed, except for the State field
// itself during the single Pending -> {Confirmed,Failed} transition.
type Message struct {
	ID         uuid.UUID
	Room       RoomID
	Sender     Address
	Content    string
	Lang       string // ISO 639-1 tag detected at send time, may be empty
	CreatedAt  time.Time
	State      MessageState
	TokenGated bool
	TxRef      string // set on confirmation
	FailReason string // set on failure
}

// SubmissionOutcome is the terminal result of an asynchronous submission,
// keyed back to the pending message it settles.
type SubmissionOutcome struct {
	MessageID   uuid.UUID
	Room        RoomID
	State       MessageState // Confirmed or Failed
	ConfirmedAt time.Time    // authoritative timestamp, Confirmed only
	TxRef       string
	Reason      string
}
