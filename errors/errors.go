package errors

import "fmt"

// Validation errors. Rejected synchronously, never retried automatically.
var (
	ErrEmptyContent   = fmt.Errorf("message content is empty")
	ErrContentTooLong = fmt.Errorf("message content exceeds the maximum length")
	ErrInvalidAddress = fmt.Errorf("address does not match the canonical hex form")
	ErrNoRoom         = fmt.Errorf("room is unknown to the registry")
)

// Wallet lifecycle errors.
var (
	ErrAlreadyConnecting = fmt.Errorf("a wallet connection is already in progress")
	ErrNotConnected      = fmt.Errorf("no wallet is connected")
)

// Timeline invariant violations. These indicate a programming defect in the
// caller and must be logged, never surfaced to the user.
var (
	ErrDuplicateID     = fmt.Errorf("message id already present in the timeline")
	ErrNotFound        = fmt.Errorf("no message with that id in the timeline")
	ErrAlreadyResolved = fmt.Errorf("message is already confirmed or failed")
)

var (
	ErrDuplicateRoom = fmt.Errorf("room id registered twice")
	ErrInvalidPolicy = fmt.Errorf("room policy rejected by validation")
	ErrEmptyWords    = fmt.Errorf("no words have been found")
	ErrWorkerPanic   = fmt.Errorf("worker panic")
	ErrTokenInvalid  = fmt.Errorf("session token is invalid or expired")
)
