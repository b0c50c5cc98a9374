package services

import (
	"context"

	"gatechat/access"
	"gatechat/auth"
	"gatechat/domain"
	"gatechat/observability"
	"gatechat/repositories"
	"gatechat/session"

	"github.com/google/uuid"
)

// RoomView pairs a room policy with the gate's current decision for the
// session wallet, for presentation.
type RoomView struct {
	Policy   domain.RoomPolicy
	Decision access.Decision
}

type IChatService interface {
	Connect(candidate domain.ConnectorResult) (domain.WalletIdentity, string, error)
	Disconnect() domain.WalletIdentity
	Identity() domain.WalletIdentity
	Rooms(ctx context.Context) []RoomView
	Send(ctx context.Context, roomID domain.RoomID, content string) (uuid.UUID, error)
	Messages(roomID domain.RoomID) []domain.Message
	History(roomID domain.RoomID, cursor *string) ([]repositories.StoredMessage, *string, error)
	Search(ctx context.Context, terms string, roomID domain.RoomID) ([]repositories.IndexedMessage, uint64, error)
	Stats() observability.StatsSnapshot
}

type ChatService struct {
	coordinator *session.Coordinator
	issuer      *auth.TokenIssuer
	history     repositories.MessageRepository
	index       *repositories.MessageIndex
	stats       *observability.SessionStats
}

var _ IChatService = (*ChatService)(nil)

func NewChatService(
	coordinator *session.Coordinator,
	issuer *auth.TokenIssuer,
	history repositories.MessageRepository,
	index *repositories.MessageIndex,
	stats *observability.SessionStats,
) *ChatService {
	return &ChatService{
		coordinator: coordinator,
		issuer:      issuer,
		history:     history,
		index:       index,
		stats:       stats,
	}
}

// Connect completes the wallet handshake and mints a session token for
// the connected identity.
func (s *ChatService) Connect(candidate domain.ConnectorResult) (domain.WalletIdentity, string, error) {
	identity, err := s.coordinator.Connect(candidate)
	if err != nil {
		return identity, "", err
	}

	token, err := s.issuer.Issue(identity)
	if err != nil {
		return identity, "", err
	}
	return identity, token, nil
}

func (s *ChatService) Disconnect() domain.WalletIdentity {
	return s.coordinator.Disconnect()
}

func (s *ChatService) Identity() domain.WalletIdentity {
	return s.coordinator.Identity()
}

// Rooms lists every room with its current access decision.
func (s *ChatService) Rooms(ctx context.Context) []RoomView {
	policies := s.coordinator.Rooms()
	views := make([]RoomView, 0, len(policies))
	for _, policy := range policies {
		decision, err := s.coordinator.RoomAccess(ctx, policy.ID)
		if err != nil {
			decision = access.DenyUnknown
		}
		views = append(views, RoomView{Policy: policy, Decision: decision})
	}
	return views
}

func (s *ChatService) Send(ctx context.Context, roomID domain.RoomID, content string) (uuid.UUID, error) {
	return s.coordinator.Send(ctx, roomID, content)
}

// Messages returns the live timeline: pending, confirmed, and failed.
func (s *ChatService) Messages(roomID domain.RoomID) []domain.Message {
	return s.coordinator.Messages(roomID)
}

// History pages through confirmed messages only, newest first.
func (s *ChatService) History(roomID domain.RoomID, cursor *string) ([]repositories.StoredMessage, *string, error) {
	return s.history.GetMessages(roomID, cursor)
}

func (s *ChatService) Search(ctx context.Context, terms string, roomID domain.RoomID) ([]repositories.IndexedMessage, uint64, error) {
	return s.index.Search(ctx, terms, roomID)
}

func (s *ChatService) Stats() observability.StatsSnapshot {
	return s.stats.Snapshot()
}
