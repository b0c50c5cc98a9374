package workers

import (
	"context"
	"log/slog"

	"gatechat/contract"
	"gatechat/domain"
)

var _ contract.Worker = (*ReconcileWorker)(nil)

// Reconciler applies one settled submission outcome to the session state.
type Reconciler interface {
	ApplyOutcome(ctx context.Context, outcome domain.SubmissionOutcome)
}

// ReconcileWorker is the single consumer of submission outcomes. Funneling
// every settlement through one goroutine keeps the timeline's state
// transitions serialized regardless of how many submission workers run.
type ReconcileWorker struct {
	reconciler Reconciler
	outcomes   <-chan domain.SubmissionOutcome
	log        *slog.Logger
}

func NewReconcileWorker(reconciler Reconciler, outcomes <-chan domain.SubmissionOutcome, log *slog.Logger) *ReconcileWorker {
	return &ReconcileWorker{reconciler: reconciler, outcomes: outcomes, log: log}
}

func (w *ReconcileWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping reconcile worker")
			return nil
		case outcome, ok := <-w.outcomes:
			if !ok {
				w.log.Debug("Outcomes channel is closed")
				return nil
			}
			w.reconciler.ApplyOutcome(ctx, outcome)
		}
	}
}
