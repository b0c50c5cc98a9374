// Package timeline keeps the ordered, deduplicated message sequence of
// each room for the lifetime of the session. Ordering, dedup, and the
// pending/confirmed lifecycle live here; nothing else mutates messages.
package timeline

import (
	"fmt"
	"sort"
	"sync"

	"gatechat/domain"
	"gatechat/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// entry pairs a message with its insertion sequence, the tie-breaker when
// two messages share the same CreatedAt.
type entry struct {
	msg domain.Message
	seq uint64
}

type Timeline struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID][]entry
	index map[uuid.UUID]domain.RoomID
	seq   uint64
}

func NewTimeline() *Timeline {
	return &Timeline{
		rooms: make(map[domain.RoomID][]entry),
		index: make(map[uuid.UUID]domain.RoomID),
	}
}

// Append inserts a message keeping CreatedAt order, insertion order on
// ties. A message id may appear at most once across the whole timeline;
// a duplicate leaves the timeline untouched.
func (t *Timeline) Append(msg domain.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.index[msg.ID]; ok {
		return fmt.Errorf("%w: %s", errors.ErrDuplicateID, msg.ID)
	}

	t.seq++
	t.index[msg.ID] = msg.Room
	t.rooms[msg.Room] = insertSorted(t.rooms[msg.Room], entry{msg: msg, seq: t.seq})
	return nil
}

// Reconcile settles a pending message with its submission outcome and
// returns the settled copy. Repeating the same terminal outcome is a
// no-op; a conflicting outcome after resolution is ErrAlreadyResolved. A
// confirmed outcome may carry an authoritative timestamp that replaces the
// provisional CreatedAt, in which case the room re-sorts (stable, the
// insertion sequence survives).
func (t *Timeline) Reconcile(id uuid.UUID, outcome domain.SubmissionOutcome) (domain.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	roomID, ok := t.index[id]
	if !ok {
		return domain.Message{}, fmt.Errorf("%w: %s", errors.ErrNotFound, id)
	}

	room := t.rooms[roomID]
	pos := -1
	for i := range room {
		if room[i].msg.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return domain.Message{}, fmt.Errorf("%w: %s", errors.ErrNotFound, id)
	}

	msg := &room[pos].msg
	if msg.State != domain.Pending {
		if msg.State == outcome.State {
			return *msg, nil
		}
		return *msg, fmt.Errorf("%w: %s is %s", errors.ErrAlreadyResolved, id, msg.State)
	}

	switch outcome.State {
	case domain.Confirmed:
		msg.State = domain.Confirmed
		msg.TxRef = outcome.TxRef
		if !outcome.ConfirmedAt.IsZero() {
			msg.CreatedAt = outcome.ConfirmedAt
		}
	case domain.Failed:
		msg.State = domain.Failed
		msg.FailReason = outcome.Reason
	default:
		return *msg, fmt.Errorf("%w: outcome state %s", errors.ErrAlreadyResolved, outcome.State)
	}

	settled := *msg
	sort.SliceStable(room, func(a, b int) bool { return less(room[a], room[b]) })
	return settled, nil
}

// View returns a snapshot of a room's messages in timeline order. The
// returned slice is a copy: later mutation cannot corrupt an in-progress
// read.
func (t *Timeline) View(roomID domain.RoomID) []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return lo.Map(t.rooms[roomID], func(e entry, _ int) domain.Message {
		return e.msg
	})
}

// Len reports the number of messages held for a room.
func (t *Timeline) Len(roomID domain.RoomID) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rooms[roomID])
}

func insertSorted(room []entry, e entry) []entry {
	pos := sort.Search(len(room), func(i int) bool { return less(e, room[i]) })
	room = append(room, entry{})
	copy(room[pos+1:], room[pos:])
	room[pos] = e
	return room
}

func less(a, b entry) bool {
	if !a.msg.CreatedAt.Equal(b.msg.CreatedAt) {
		return a.msg.CreatedAt.Before(b.msg.CreatedAt)
	}
	return a.seq < b.seq
}
