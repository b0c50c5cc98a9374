package sink

import (
	"context"
	"fmt"
	"log/slog"

	"gatechat/domain/event"
)

// LogSink traces every session event, mostly useful at debug level.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.WalletConnected:
		s.log.Info("Session event: wallet connected", "address", evt.Address.Truncate(4), "provider", evt.Provider)
	case event.WalletDisconnected:
		s.log.Info("Session event: wallet disconnected", "address", evt.Address.Truncate(4))
	case event.MessagePending:
		s.log.Debug("Session event: message pending", "id", evt.ID, "room", evt.Room)
	case event.MessageConfirmed:
		s.log.Info("Session event: message confirmed", "id", evt.ID, "room", evt.Room, "tx", evt.TxRef)
	case event.MessageFailed:
		s.log.Warn("Session event: message failed", "id", evt.ID, "room", evt.Room, "reason", evt.Reason)
	case event.AccessDenied:
		s.log.Debug("Session event: access denied", "room", evt.Room, "decision", evt.Decision)
	default:
		s.log.Debug("Session event", "type", fmt.Sprintf("%T", e))
	}
	return nil
}
