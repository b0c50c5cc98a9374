package workers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"gatechat/contract"
	"gatechat/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type scriptedSubmitter struct {
	err     error
	receipt contract.Receipt
	block   bool
}

func (s *scriptedSubmitter) Submit(ctx context.Context, _ domain.RoomID, _ string, _ domain.Address) (contract.Receipt, error) {
	if s.block {
		<-ctx.Done()
		return contract.Receipt{}, ctx.Err()
	}
	if s.err != nil {
		return contract.Receipt{}, s.err
	}
	return s.receipt, nil
}

func pendingMessage() domain.Message {
	return domain.Message{
		ID:      uuid.New(),
		Room:    "general",
		Sender:  "0x742d35cc6634c0532925a3b8d5c4e21a8b0c9823",
		Content: "gm",
		State:   domain.Pending,
	}
}

func runWorker(t *testing.T, submitter contract.TransactionSubmitter, timeout time.Duration) (chan domain.Message, chan domain.SubmissionOutcome, func()) {
	t.Helper()
	jobs := make(chan domain.Message, 1)
	outcomes := make(chan domain.SubmissionOutcome, 1)
	worker := NewSubmissionWorker(submitter, jobs, outcomes, timeout, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = worker.Run(ctx) }()
	return jobs, outcomes, cancel
}

func TestSubmissionWorker_Confirms_On_Receipt(t *testing.T) {
	req := require.New(t)

	confirmedAt := time.Now()
	submitter := &scriptedSubmitter{receipt: contract.Receipt{TxRef: "0xabc", ConfirmedAt: confirmedAt}}
	jobs, outcomes, cancel := runWorker(t, submitter, time.Second)
	defer cancel()

	msg := pendingMessage()
	jobs <- msg

	select {
	case outcome := <-outcomes:
		req.Equal(msg.ID, outcome.MessageID)
		req.Equal(domain.Confirmed, outcome.State)
		req.Equal("0xabc", outcome.TxRef)
		req.True(outcome.ConfirmedAt.Equal(confirmedAt))
	case <-time.After(time.Second):
		req.Fail("no outcome produced")
	}
}

func TestSubmissionWorker_Fails_On_Submitter_Error(t *testing.T) {
	req := require.New(t)

	submitter := &scriptedSubmitter{err: fmt.Errorf("nonce too low")}
	jobs, outcomes, cancel := runWorker(t, submitter, time.Second)
	defer cancel()

	msg := pendingMessage()
	jobs <- msg

	select {
	case outcome := <-outcomes:
		req.Equal(domain.Failed, outcome.State)
		req.Equal("nonce too low", outcome.Reason)
	case <-time.After(time.Second):
		req.Fail("no outcome produced")
	}
}

func TestSubmissionWorker_Times_Out_Hanging_Submission(t *testing.T) {
	req := require.New(t)

	submitter := &scriptedSubmitter{block: true}
	jobs, outcomes, cancel := runWorker(t, submitter, 20*time.Millisecond)
	defer cancel()

	jobs <- pendingMessage()

	select {
	case outcome := <-outcomes:
		req.Equal(domain.Failed, outcome.State)
		req.Contains(outcome.Reason, "deadline exceeded")
	case <-time.After(time.Second):
		req.Fail("timeout should settle the message as failed")
	}
}
