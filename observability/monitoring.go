// Package observability aggregates session telemetry: message lifecycle
// counters, per-sender stats, and process health samples.
package observability

import (
	"sync"
	"sync/atomic"
	"time"

	"gatechat/domain"
)

// SenderStats mirrors the on-chain user stats surface: how many messages
// a wallet has sent this session and when the last one settled.
type SenderStats struct {
	MessagesSent  uint64    `json:"messages_sent"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// StatsSnapshot is a point-in-time copy of every counter, safe to hand to
// the presentation layer.
type StatsSnapshot struct {
	PendingCount   uint64                         `json:"pending_count"`
	ConfirmedCount uint64                         `json:"confirmed_count"`
	FailedCount    uint64                         `json:"failed_count"`
	DeniedCount    uint64                         `json:"denied_count"`
	ModerationHits uint64                         `json:"moderation_hits"`
	Senders        map[domain.Address]SenderStats `json:"senders"`
	RSSBytes       uint64                         `json:"rss_bytes"`
	CPUPercent     float64                        `json:"cpu_percent"`
	SampledAt      time.Time                      `json:"sampled_at"`
}

type SessionStats struct {
	pending        atomic.Uint64
	confirmed      atomic.Uint64
	failed         atomic.Uint64
	denied         atomic.Uint64
	moderationHits atomic.Uint64

	mu        sync.RWMutex
	senders   map[domain.Address]SenderStats
	rssBytes  uint64
	cpu       float64
	sampledAt time.Time
}

func NewSessionStats() *SessionStats {
	return &SessionStats{senders: make(map[domain.Address]SenderStats)}
}

func (s *SessionStats) RecordPending(sender domain.Address, at time.Time) {
	s.pending.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.senders[sender]
	stats.MessagesSent++
	stats.LastMessageAt = at
	s.senders[sender] = stats
}

func (s *SessionStats) RecordConfirmed() { s.confirmed.Add(1) }
func (s *SessionStats) RecordFailed()    { s.failed.Add(1) }
func (s *SessionStats) RecordDenied()    { s.denied.Add(1) }

func (s *SessionStats) RecordModerationHits(hits int) {
	if hits > 0 {
		s.moderationHits.Add(uint64(hits))
	}
}

func (s *SessionStats) RecordProcessSample(rssBytes uint64, cpuPercent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rssBytes = rssBytes
	s.cpu = cpuPercent
	s.sampledAt = time.Now()
}

// Sender returns the per-wallet stats recorded so far.
func (s *SessionStats) Sender(addr domain.Address) SenderStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.senders[addr]
}

func (s *SessionStats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	senders := make(map[domain.Address]SenderStats, len(s.senders))
	for addr, stats := range s.senders {
		senders[addr] = stats
	}

	return StatsSnapshot{
		PendingCount:   s.pending.Load(),
		ConfirmedCount: s.confirmed.Load(),
		FailedCount:    s.failed.Load(),
		DeniedCount:    s.denied.Load(),
		ModerationHits: s.moderationHits.Load(),
		Senders:        senders,
		RSSBytes:       s.rssBytes,
		CPUPercent:     s.cpu,
		SampledAt:      s.sampledAt,
	}
}
