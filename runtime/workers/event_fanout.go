package workers

import (
	"context"
	"fmt"
	"log/slog"

	"gatechat/contract"
	"gatechat/domain/event"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout broadcasts session events to the registered in-process
// sinks: observability counters, the presentation layer, logs.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. It is not a message broker and must
// never carry core domain logic.
type EventFanout struct {
	log    *slog.Logger
	events <-chan event.DomainEvent
	sinks  []contract.EventSink
}

func NewEventFanout(log *slog.Logger, events <-chan event.DomainEvent, sinks ...contract.EventSink) *EventFanout {
	return &EventFanout{log: log, events: events, sinks: sinks}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping event fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel is closed")
				return nil
			}
			w.fanout(ctx, evt)
		}
	}
}

func (w *EventFanout) fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			w.log.Warn("Sink rejected event", "event", fmt.Sprintf("%T", evt), "error", err)
		}
	}
}
