//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"math/big"
	"reflect"
	"time"

	"gatechat/domain"
	"gatechat/domain/event"
)

// BalanceOracle is an external read-only source of truth for on-chain
// balances. BalanceOf returns the raw integer balance in the token's
// smallest unit (10^-Decimals tokens). The call may fail; callers must
// treat an error as inconclusive, never as an admission.
type BalanceOracle interface {
	BalanceOf(ctx context.Context, addr domain.Address, token domain.TokenRef) (*big.Int, error)
}

// Receipt is the settlement proof returned by the chain write path.
type Receipt struct {
	TxRef       string
	ConfirmedAt time.Time
}

// TransactionSubmitter is the external write path. Submit blocks until the
// submission settles or ctx expires; the session runs it off the caller's
// goroutine so sends never block on it.
type TransactionSubmitter interface {
	Submit(ctx context.Context, room domain.RoomID, content string, sender domain.Address) (Receipt, error)
}

// RoomLoader populates the room registry once at session start, from an
// on-chain registry or static configuration. Order is preserved.
type RoomLoader interface {
	Load(ctx context.Context) ([]domain.RoomPolicy, error)
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
