// Package sink provides in-process event consumers fed by the fanout
// worker. Sinks observe the session; they never drive it.
package sink

import (
	"context"

	"gatechat/domain/event"
	"gatechat/observability"
)

// StatsSink folds lifecycle events into the session counters.
type StatsSink struct {
	stats *observability.SessionStats
}

func NewStatsSink(stats *observability.SessionStats) *StatsSink {
	return &StatsSink{stats: stats}
}

func (s *StatsSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessagePending:
		s.stats.RecordPending(evt.Sender, evt.At)
		s.stats.RecordModerationHits(evt.Redactions)
	case event.MessageConfirmed:
		s.stats.RecordConfirmed()
	case event.MessageFailed:
		s.stats.RecordFailed()
	case event.AccessDenied:
		s.stats.RecordDenied()
	}
	return nil
}
