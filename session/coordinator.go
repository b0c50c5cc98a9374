// Package session orchestrates the access-controlled chat session: it
// owns the wallet identity, the per-room timelines, and the pending ->
// confirmed reconciliation pipeline. All mutation rights live here; the
// presentation layer only reads snapshots and issues intents.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gatechat/access"
	"gatechat/contract"
	"gatechat/domain"
	"gatechat/domain/event"
	"gatechat/errors"
	"gatechat/moderation"
	"gatechat/registry"
	"gatechat/repositories"
	"gatechat/runtime/workers"
	"gatechat/timeline"
	"gatechat/wallet"

	"github.com/google/uuid"
)

// AccessError carries the gate's refusal out of Send.
type AccessError struct {
	Decision access.Decision
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Decision)
}

// History is the session-scoped message store consumed on confirmation.
type History interface {
	StoreMessage(message repositories.StoredMessage) error
}

// Indexer receives confirmed messages for full-text search.
type Indexer interface {
	Index(msg domain.Message) error
}

// Deps are the collaborators the coordinator drives but does not build.
type Deps struct {
	Gate      *access.Gate
	Rooms     *registry.Registry
	Moderator moderation.Moderator
	History   History
	Index     Indexer
	Submitter contract.TransactionSubmitter
	Sinks     []contract.EventSink
}

type Settings struct {
	BufferSize       int
	NumWorkers       int
	SubmitTimeout    time.Duration
	MaxContentLength int
}

type Coordinator struct {
	mu  sync.Mutex
	log *slog.Logger

	identity *wallet.Identity
	timeline *timeline.Timeline
	deps     Deps
	settings Settings

	supervisor *workers.Supervisor
	jobs       chan domain.Message
	outcomes   chan domain.SubmissionOutcome
	events     chan event.DomainEvent

	// resolved guards the exactly-one-reconciliation contract against
	// stray duplicate callbacks from the submission path.
	resolved map[uuid.UUID]struct{}
}

func NewCoordinator(log *slog.Logger, deps Deps, settings Settings) *Coordinator {
	events := make(chan event.DomainEvent, settings.BufferSize)
	return &Coordinator{
		log:        log,
		identity:   wallet.NewIdentity(log, events),
		timeline:   timeline.NewTimeline(),
		deps:       deps,
		settings:   settings,
		supervisor: workers.NewSupervisor(log),
		jobs:       make(chan domain.Message, settings.BufferSize),
		outcomes:   make(chan domain.SubmissionOutcome, settings.BufferSize),
		events:     events,
		resolved:   make(map[uuid.UUID]struct{}),
	}
}

// Start spins up the submission pool, the reconcile loop, and the event
// fanout under supervision, then blocks until ctx is canceled and every
// worker has drained.
func (c *Coordinator) Start(ctx context.Context) error {
	for i := 0; i < c.settings.NumWorkers; i++ {
		c.supervisor.Add(workers.NewSubmissionWorker(
			c.deps.Submitter, c.jobs, c.outcomes, c.settings.SubmitTimeout, c.log))
	}
	c.supervisor.Add(workers.NewReconcileWorker(c, c.outcomes, c.log))
	c.supervisor.Add(workers.NewEventFanout(c.log, c.events, c.deps.Sinks...))

	c.log.Info("Starting session coordinator",
		"submission_workers", c.settings.NumWorkers,
		"buffer_size", c.settings.BufferSize)
	c.supervisor.Run(ctx)
	return nil
}

func (c *Coordinator) Stop() {
	c.supervisor.Stop()
}

// AddWorker registers an extra supervised worker (health telemetry and the
// like) before Start.
func (c *Coordinator) AddWorker(w contract.Worker) {
	c.supervisor.Add(w)
}

// Connect consumes an external connector handshake result.
func (c *Coordinator) Connect(candidate domain.ConnectorResult) (domain.WalletIdentity, error) {
	return c.identity.Connect(candidate)
}

// Disconnect drops the wallet. Messages already handed to the submission
// pool still settle; only new sends are blocked at the gate.
func (c *Coordinator) Disconnect() domain.WalletIdentity {
	return c.identity.Disconnect()
}

func (c *Coordinator) Identity() domain.WalletIdentity {
	return c.identity.Snapshot()
}

func (c *Coordinator) Rooms() []domain.RoomPolicy {
	return c.deps.Rooms.List()
}

// RoomAccess evaluates the gate for display purposes (lock icons, joined
// affordances). ErrNoRoom when the room is unknown.
func (c *Coordinator) RoomAccess(ctx context.Context, roomID domain.RoomID) (access.Decision, error) {
	policy, ok := c.deps.Rooms.Get(roomID)
	if !ok {
		return access.DenyUnknown, fmt.Errorf("%w: %q", errors.ErrNoRoom, roomID)
	}
	return c.deps.Gate.CanAccess(ctx, policy, c.identity.Snapshot()), nil
}

// Send validates, authorizes, and optimistically appends a message, then
// hands it to the asynchronous submission pool. The append happens before
// Send returns: an admitted send is never lost. The returned id tracks the
// message through its pending lifecycle.
func (c *Coordinator) Send(ctx context.Context, roomID domain.RoomID, content string) (uuid.UUID, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return uuid.Nil, errors.ErrEmptyContent
	}
	if c.settings.MaxContentLength > 0 && len(content) > c.settings.MaxContentLength {
		return uuid.Nil, fmt.Errorf("%w: %d bytes", errors.ErrContentTooLong, len(content))
	}

	policy, ok := c.deps.Rooms.Get(roomID)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %q", errors.ErrNoRoom, roomID)
	}

	// A connected wallet is a precondition for any send: even an ungated
	// room needs a sender address to attribute the message to.
	identity := c.identity.Snapshot()
	if identity.Status != domain.Connected {
		c.publishDenied(roomID, identity.Address, access.DenyNoWallet)
		return uuid.Nil, &AccessError{Decision: access.DenyNoWallet}
	}

	if decision := c.deps.Gate.CanAccess(ctx, policy, identity); decision != access.Admit {
		c.publishDenied(roomID, identity.Address, decision)
		return uuid.Nil, &AccessError{Decision: decision}
	}

	review := c.deps.Moderator.Review(content)
	if review.Hits > 0 {
		c.log.Warn("Outgoing content redacted", "room", roomID, "hits", review.Hits)
	}

	msg := domain.Message{
		ID:         uuid.New(),
		Room:       roomID,
		Sender:     identity.Address,
		Content:    review.Clean,
		Lang:       review.Lang,
		CreatedAt:  time.Now(),
		State:      domain.Pending,
		TokenGated: policy.IsTokenGated,
	}

	c.mu.Lock()
	if err := c.timeline.Append(msg); err != nil {
		c.mu.Unlock()
		// A fresh uuid colliding means a defect, not a user mistake.
		c.log.Error("Appending admitted send failed", "id", msg.ID, "error", err)
		return uuid.Nil, err
	}
	c.mu.Unlock()

	c.publish(event.MessagePending{
		ID: msg.ID, Room: roomID, Sender: msg.Sender, Content: msg.Content,
		Redactions: review.Hits, At: msg.CreatedAt,
	})

	select {
	case c.jobs <- msg:
	default:
		// The pool is saturated: settle the message as failed instead of
		// leaving it pending with no submission in flight.
		c.log.Warn("Submission queue full", "id", msg.ID, "room", roomID)
		c.ApplyOutcome(ctx, domain.SubmissionOutcome{
			MessageID: msg.ID,
			Room:      roomID,
			State:     domain.Failed,
			Reason:    "submission queue full",
		})
	}

	return msg.ID, nil
}

// ApplyOutcome settles one submission outcome against the timeline and,
// on confirmation, feeds history and the search index. Duplicate callbacks
// for an already-settled message are absorbed here; a conflicting outcome
// is a programming defect and only gets logged.
func (c *Coordinator) ApplyOutcome(ctx context.Context, outcome domain.SubmissionOutcome) {
	c.mu.Lock()
	if _, done := c.resolved[outcome.MessageID]; done {
		c.mu.Unlock()
		c.log.Debug("Duplicate reconciliation ignored", "id", outcome.MessageID)
		return
	}

	settled, err := c.timeline.Reconcile(outcome.MessageID, outcome)
	if err != nil {
		c.mu.Unlock()
		c.log.Error("Reconciliation failed", "id", outcome.MessageID, "error", err)
		return
	}
	c.resolved[outcome.MessageID] = struct{}{}
	c.mu.Unlock()

	switch settled.State {
	case domain.Confirmed:
		if c.deps.History != nil {
			if err := c.deps.History.StoreMessage(repositories.FromDomain(settled)); err != nil {
				c.log.Error("Storing confirmed message failed", "id", settled.ID, "error", err)
			}
		}
		if c.deps.Index != nil {
			if err := c.deps.Index.Index(settled); err != nil {
				c.log.Error("Indexing confirmed message failed", "id", settled.ID, "error", err)
			}
		}
		c.publish(event.MessageConfirmed{
			ID: settled.ID, Room: settled.Room, Sender: settled.Sender,
			TxRef: settled.TxRef, ConfirmedAt: settled.CreatedAt,
		})
	case domain.Failed:
		c.publish(event.MessageFailed{
			ID: settled.ID, Room: settled.Room, Sender: settled.Sender,
			Reason: settled.FailReason, At: time.Now(),
		})
	}
}

// Messages returns the room's timeline snapshot in display order.
func (c *Coordinator) Messages(roomID domain.RoomID) []domain.Message {
	return c.timeline.View(roomID)
}

func (c *Coordinator) publish(e event.DomainEvent) {
	select {
	case c.events <- e:
	default:
		c.log.Warn(fmt.Sprintf("Event channel full, dropping %T", e))
	}
}

func (c *Coordinator) publishDenied(roomID domain.RoomID, addr domain.Address, decision access.Decision) {
	c.publish(event.AccessDenied{
		Room: roomID, Sender: addr, Decision: decision.String(), At: time.Now(),
	})
}
