package workers

import (
	"context"
	"log/slog"
	"time"

	"gatechat/contract"
	"gatechat/domain"
)

var _ contract.Worker = (*SubmissionWorker)(nil)

// SubmissionWorker drains pending messages from the jobs channel and runs
// the external chain submission for each. Several instances share the same
// channels, forming the submission pool: sends stay independent once past
// authorization, and outcomes may settle in any order.
type SubmissionWorker struct {
	submitter     contract.TransactionSubmitter
	jobs          <-chan domain.Message
	outcomes      chan<- domain.SubmissionOutcome
	submitTimeout time.Duration
	log           *slog.Logger
}

func NewSubmissionWorker(
	submitter contract.TransactionSubmitter,
	jobs <-chan domain.Message,
	outcomes chan<- domain.SubmissionOutcome,
	submitTimeout time.Duration,
	log *slog.Logger,
) *SubmissionWorker {
	return &SubmissionWorker{
		submitter:     submitter,
		jobs:          jobs,
		outcomes:      outcomes,
		submitTimeout: submitTimeout,
		log:           log,
	}
}

func (w *SubmissionWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping submission worker")
			return nil
		case msg, ok := <-w.jobs:
			if !ok {
				w.log.Debug("Jobs channel is closed")
				return nil
			}
			outcome := w.submit(ctx, msg)
			select {
			case <-ctx.Done():
				return nil
			case w.outcomes <- outcome:
			}
		}
	}
}

// submit runs one external submission. A timeout on the submission is the
// recommended failure policy for messages the chain never answers about:
// the message settles as Failed rather than staying Pending forever.
func (w *SubmissionWorker) submit(ctx context.Context, msg domain.Message) domain.SubmissionOutcome {
	submitCtx, cancel := context.WithTimeout(ctx, w.submitTimeout)
	defer cancel()

	receipt, err := w.submitter.Submit(submitCtx, msg.Room, msg.Content, msg.Sender)
	if err != nil {
		w.log.Warn("Submission failed", "message", msg.ID, "room", msg.Room, "error", err)
		return domain.SubmissionOutcome{
			MessageID: msg.ID,
			Room:      msg.Room,
			State:     domain.Failed,
			Reason:    err.Error(),
		}
	}

	return domain.SubmissionOutcome{
		MessageID:   msg.ID,
		Room:        msg.Room,
		State:       domain.Confirmed,
		ConfirmedAt: receipt.ConfirmedAt,
		TxRef:       receipt.TxRef,
	}
}
