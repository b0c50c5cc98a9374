package timeline

import (
	"testing"
	"time"

	"gatechat/domain"
	"gatechat/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const room = domain.RoomID("general")

func pending(at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Room:      room,
		Sender:    "0x742d35cc6634c0532925a3b8d5c4e21a8b0c9823",
		Content:   "gm",
		CreatedAt: at,
		State:     domain.Pending,
	}
}

func TestTimeline_Append_Keeps_CreatedAt_Order(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	base := time.Now()

	late := pending(base.Add(2 * time.Second))
	early := pending(base)
	middle := pending(base.Add(time.Second))

	// When appending out of chronological order
	req.NoError(timeline.Append(late))
	req.NoError(timeline.Append(early))
	req.NoError(timeline.Append(middle))

	// Then the view is sorted by CreatedAt ascending
	view := timeline.View(room)
	req.Len(view, 3)
	req.Equal(early.ID, view[0].ID)
	req.Equal(middle.ID, view[1].ID)
	req.Equal(late.ID, view[2].ID)
}

func TestTimeline_Append_Ties_Break_By_Insertion_Order(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	at := time.Now()

	first := pending(at)
	second := pending(at)

	req.NoError(timeline.Append(first))
	req.NoError(timeline.Append(second))

	view := timeline.View(room)
	req.Equal(first.ID, view[0].ID)
	req.Equal(second.ID, view[1].ID)
}

func TestTimeline_Append_Duplicate_ID_Leaves_Timeline_Unchanged(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	msg := pending(time.Now())

	req.NoError(timeline.Append(msg))

	// When appending the same id with different content
	dup := msg
	dup.Content = "not the same"
	err := timeline.Append(dup)

	// Then the append is rejected and the original survives
	req.ErrorIs(err, errors.ErrDuplicateID)
	view := timeline.View(room)
	req.Len(view, 1)
	req.Equal("gm", view[0].Content)
}

func TestTimeline_Reconcile_Confirm(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	msg := pending(time.Now())
	req.NoError(timeline.Append(msg))

	confirmedAt := msg.CreatedAt.Add(3 * time.Second)
	settled, err := timeline.Reconcile(msg.ID, domain.SubmissionOutcome{
		MessageID:   msg.ID,
		State:       domain.Confirmed,
		ConfirmedAt: confirmedAt,
		TxRef:       "0xabc123",
	})
	req.NoError(err)
	req.Equal(domain.Confirmed, settled.State)

	view := timeline.View(room)
	req.Equal(domain.Confirmed, view[0].State)
	req.Equal("0xabc123", view[0].TxRef)
	// The authoritative timestamp replaces the provisional one
	req.True(view[0].CreatedAt.Equal(confirmedAt))
}

func TestTimeline_Reconcile_Failed(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	msg := pending(time.Now())
	req.NoError(timeline.Append(msg))

	_, err := timeline.Reconcile(msg.ID, domain.SubmissionOutcome{
		MessageID: msg.ID,
		State:     domain.Failed,
		Reason:    "insufficient gas",
	})
	req.NoError(err)

	view := timeline.View(room)
	req.Equal(domain.Failed, view[0].State)
	req.Equal("insufficient gas", view[0].FailReason)
}

func TestTimeline_Reconcile_Same_Outcome_Twice_Is_NoOp(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	msg := pending(time.Now())
	req.NoError(timeline.Append(msg))

	failure := domain.SubmissionOutcome{MessageID: msg.ID, State: domain.Failed, Reason: "reverted"}
	_, err := timeline.Reconcile(msg.ID, failure)
	req.NoError(err)

	// A stray duplicate callback with the same outcome is absorbed
	settled, err := timeline.Reconcile(msg.ID, failure)
	req.NoError(err)
	req.Equal(domain.Failed, settled.State)
	req.Equal(domain.Failed, timeline.View(room)[0].State)
}

func TestTimeline_Reconcile_Conflicting_Outcome_Is_AlreadyResolved(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	msg := pending(time.Now())
	req.NoError(timeline.Append(msg))

	_, err := timeline.Reconcile(msg.ID, domain.SubmissionOutcome{
		MessageID: msg.ID, State: domain.Confirmed, TxRef: "0xabc",
	})
	req.NoError(err)

	_, err = timeline.Reconcile(msg.ID, domain.SubmissionOutcome{
		MessageID: msg.ID, State: domain.Failed, Reason: "late failure",
	})
	req.ErrorIs(err, errors.ErrAlreadyResolved)
	req.Equal(domain.Confirmed, timeline.View(room)[0].State)
}

func TestTimeline_Reconcile_Unknown_ID(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()

	_, err := timeline.Reconcile(uuid.New(), domain.SubmissionOutcome{State: domain.Confirmed})
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestTimeline_Confirmations_Out_Of_Send_Order_Reorder_Pendings(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	base := time.Now()

	first := pending(base)
	second := pending(base.Add(time.Second))
	req.NoError(timeline.Append(first))
	req.NoError(timeline.Append(second))

	// When the second send confirms with an earlier authoritative
	// timestamp than the first
	_, err := timeline.Reconcile(second.ID, domain.SubmissionOutcome{
		MessageID: second.ID, State: domain.Confirmed,
		ConfirmedAt: base.Add(-time.Second), TxRef: "0x2",
	})
	req.NoError(err)

	// Then the room re-sorted around the authoritative time
	view := timeline.View(room)
	req.Equal(second.ID, view[0].ID)
	req.Equal(first.ID, view[1].ID)
}

func TestTimeline_View_Is_A_Snapshot(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	msg := pending(time.Now())
	req.NoError(timeline.Append(msg))

	before := timeline.View(room)

	// When the timeline mutates after the view
	req.NoError(timeline.Append(pending(time.Now().Add(time.Second))))
	_, err := timeline.Reconcile(msg.ID, domain.SubmissionOutcome{
		MessageID: msg.ID, State: domain.Confirmed, TxRef: "0x1",
	})
	req.NoError(err)

	// Then the earlier snapshot is unaffected
	req.Len(before, 1)
	req.Equal(domain.Pending, before[0].State)
}

func TestTimeline_Rooms_Are_Isolated(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()

	msg := pending(time.Now())
	other := pending(time.Now())
	other.Room = "dao"

	req.NoError(timeline.Append(msg))
	req.NoError(timeline.Append(other))

	req.Len(timeline.View(room), 1)
	req.Len(timeline.View("dao"), 1)
	req.Equal(1, timeline.Len("dao"))
	req.Empty(timeline.View("nft-club"))
}
