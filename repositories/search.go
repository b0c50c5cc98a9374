package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gatechat/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

// MessageIndex provides room-isolated full-text search over the confirmed
// messages of the active session.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
	limit  int
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger, limit int) *MessageIndex {
	return &MessageIndex{writer: writer, log: log, limit: limit}
}

// IndexedMessage is a search hit rebuilt from stored fields.
type IndexedMessage struct {
	ID      uuid.UUID
	Room    domain.RoomID
	Sender  domain.Address
	Content string
	At      time.Time
}

// Index adds one settled message to the index. Indexing the same id again
// replaces the previous document.
func (s *MessageIndex) Index(msg domain.Message) error {
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewTextField("content", msg.Content).StoreValue()).
		AddField(bluge.NewKeywordField("room", string(msg.Room)).StoreValue()).
		AddField(bluge.NewKeywordField("sender", string(msg.Sender)).StoreValue()).
		AddField(bluge.NewKeywordField("at", msg.CreatedAt.UTC().Format(time.RFC3339Nano)).StoreValue())

	return s.writer.Update(doc.ID(), doc)
}

// Search matches terms against message content within a single room.
// Matching is analyzed (case-insensitive); results come back most relevant
// first, capped by the configured limit.
func (s *MessageIndex) Search(ctx context.Context, terms string, room domain.RoomID) ([]IndexedMessage, uint64, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, 0, fmt.Errorf("index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Warn("Closing index reader failed", "error", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("content")).
		AddMust(bluge.NewTermQuery(string(room)).SetField("room"))

	request := bluge.NewTopNSearch(s.limit, query).WithStandardAggregations()
	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}

	var results []IndexedMessage
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit IndexedMessage
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				if id, parseErr := uuid.Parse(string(value)); parseErr == nil {
					hit.ID = id
				}
			case "room":
				hit.Room = domain.RoomID(value)
			case "sender":
				hit.Sender = domain.Address(value)
			case "content":
				hit.Content = string(value)
			case "at":
				if at, parseErr := time.Parse(time.RFC3339Nano, string(value)); parseErr == nil {
					hit.At = at
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, 0, visitErr
		}
		results = append(results, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, 0, err
	}

	return results, iterator.Aggregations().Count(), nil
}
