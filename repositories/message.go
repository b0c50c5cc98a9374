//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gatechat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message StoredMessage) error
	GetMessages(room domain.RoomID, cursor *string) ([]StoredMessage, *string, error)
}

// MessageRepository keeps the confirmed history of the active session in
// BadgerDB. The store is opened in-memory: history lives exactly as long
// as the session, nothing survives a restart.
type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

type StoredMessage struct {
	ID      uuid.UUID      `json:"id"`
	Room    domain.RoomID  `json:"room"`
	Sender  domain.Address `json:"sender"`
	Content string         `json:"content"`
	TxRef   string         `json:"tx_ref,omitempty"`
	At      time.Time      `json:"at"`
}

// StoreMessage persists a settled message.
// The key is formatted as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the UUID as a collision disconnector if
//     two messages settle at the same nanosecond.
func (m MessageRepository) StoreMessage(message StoredMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.Room,
		message.At.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetMessages pages backwards through a room's history using a prefix
// scan. Thanks to the padded timestamp in the key, messages are naturally
// sorted by time; the returned cursor resumes the walk on the next call,
// and is nil once the walk is exhausted.
func (m MessageRepository) GetMessages(room domain.RoomID, cursor *string) ([]StoredMessage, *string, error) {
	var rawMessages [][]byte
	var lastKey string
	var hasMore bool
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", room)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past every possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(rawMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				hasMore = true
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefixStr):])
			err := item.Value(func(value []byte) error {
				rawMessages = append(rawMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]StoredMessage, 0, len(rawMessages))
	for _, b := range rawMessages {
		var message StoredMessage
		if err = json.Unmarshal(b, &message); err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	if !hasMore {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}

// FromDomain converts a settled timeline message to its storage form.
func FromDomain(msg domain.Message) StoredMessage {
	return StoredMessage{
		ID:      msg.ID,
		Room:    msg.Room,
		Sender:  msg.Sender,
		Content: msg.Content,
		TxRef:   msg.TxRef,
		At:      msg.CreatedAt.UTC(),
	}
}
