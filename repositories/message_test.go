package repositories

import (
	"log/slog"
	"testing"
	"time"

	"gatechat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openSessionDB(t *testing.T) *badger.DB {
	t.Helper()
	options := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func storedMessage(room domain.RoomID, content string, at time.Time) StoredMessage {
	return StoredMessage{
		ID:      uuid.New(),
		Room:    room,
		Sender:  "0x742d35cc6634c0532925a3b8d5c4e21a8b0c9823",
		Content: content,
		TxRef:   "0xdeadbeef",
		At:      at,
	}
}

func TestMessageRepository_Store_And_Get(t *testing.T) {
	req := require.New(t)
	db := openSessionDB(t)
	repo := NewMessageRepository(db, logs.GetLoggerFromLevel(slog.LevelDebug), nil)

	base := time.Now().UTC().Truncate(time.Millisecond)
	first := storedMessage("general", "first", base)
	second := storedMessage("general", "second", base.Add(time.Second))

	req.NoError(repo.StoreMessage(first))
	req.NoError(repo.StoreMessage(second))

	messages, cursor, err := repo.GetMessages("general", nil)
	req.NoError(err)
	// Unlimited read drains the room, so there is nothing to resume
	req.Nil(cursor)
	req.Len(messages, 2)

	// Reverse iteration yields newest first
	req.Equal("second", messages[0].Content)
	req.Equal("first", messages[1].Content)
	req.Equal(first.ID, messages[1].ID)
	req.True(messages[1].At.Equal(base))
}

func TestMessageRepository_Rooms_Are_Isolated(t *testing.T) {
	req := require.New(t)
	db := openSessionDB(t)
	repo := NewMessageRepository(db, logs.GetLoggerFromLevel(slog.LevelDebug), nil)

	now := time.Now().UTC()
	req.NoError(repo.StoreMessage(storedMessage("general", "hello", now)))
	req.NoError(repo.StoreMessage(storedMessage("dao", "proposal", now)))

	messages, _, err := repo.GetMessages("dao", nil)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("proposal", messages[0].Content)
}

func TestMessageRepository_Cursor_Pagination(t *testing.T) {
	req := require.New(t)
	db := openSessionDB(t)
	repo := NewMessageRepository(db, logs.GetLoggerFromLevel(slog.LevelDebug), lo.ToPtr(2))

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		msg := storedMessage("general", "m", base.Add(time.Duration(i)*time.Second))
		msg.Content = string(rune('a' + i))
		req.NoError(repo.StoreMessage(msg))
	}

	// First page: the two newest, with more behind the cursor
	page1, cursor, err := repo.GetMessages("general", nil)
	req.NoError(err)
	req.NotNil(cursor)
	req.Len(page1, 2)
	req.Equal("e", page1[0].Content)
	req.Equal("d", page1[1].Content)

	// Second page resumes after the cursor
	page2, cursor2, err := repo.GetMessages("general", cursor)
	req.NoError(err)
	req.NotNil(cursor2)
	req.Len(page2, 2)
	req.Equal("c", page2[0].Content)
	req.Equal("b", page2[1].Content)

	// Final page holds the oldest message and ends the walk
	page3, cursor3, err := repo.GetMessages("general", cursor2)
	req.NoError(err)
	req.Len(page3, 1)
	req.Equal("a", page3[0].Content)
	req.Nil(cursor3)
}

func TestMessageRepository_FromDomain(t *testing.T) {
	req := require.New(t)

	msg := domain.Message{
		ID:        uuid.New(),
		Room:      "hodlers",
		Sender:    "0x742d35cc6634c0532925a3b8d5c4e21a8b0c9823",
		Content:   "confirmed at last",
		CreatedAt: time.Now(),
		State:     domain.Confirmed,
		TxRef:     "0xfeed",
	}

	stored := FromDomain(msg)
	req.Equal(msg.ID, stored.ID)
	req.Equal(msg.Room, stored.Room)
	req.Equal("0xfeed", stored.TxRef)
	req.Equal(time.UTC, stored.At.Location())
}
