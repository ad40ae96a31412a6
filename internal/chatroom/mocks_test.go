package chatroom_test

import (
	"batepapo/backend/internal/chatroom"
	"batepapo/backend/internal/config"
	"batepapo/backend/internal/localization"
	"batepapo/backend/internal/models"
	"batepapo/backend/internal/storage"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) InsertParticipant(ctx context.Context, p *models.Participant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockStorage) FindParticipantByName(ctx context.Context, name string) (*models.Participant, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockStorage) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Participant), args.Error(1)
}

func (m *MockStorage) UpdateParticipantLastStatus(ctx context.Context, name string, lastStatus int64) (bool, error) {
	args := m.Called(ctx, name, lastStatus)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) DeleteParticipantByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStorage) InsertMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockStorage) FindAllMessages(ctx context.Context) ([]models.Message, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// fakeClock is a settable time source shared by the service and the test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []models.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg models.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) Messages() []models.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Message(nil), n.messages...)
}

var ptTexts = localization.Default().StatusTexts("pt")

func newMockService(store *MockStorage, clock *fakeClock, opts ...chatroom.Option) *chatroom.Service {
	opts = append([]chatroom.Option{chatroom.WithClock(clock.Now)}, opts...)
	return chatroom.NewService(store, ptTexts, zerolog.Nop(), opts...)
}

// newSQLiteService wires the service to a real store in a temp directory.
func newSQLiteService(t *testing.T, clock *fakeClock, opts ...chatroom.Option) *chatroom.Service {
	t.Helper()
	db, err := storage.OpenDatabase(config.DriverSQLite, filepath.Join(t.TempDir(), "room.db"), zerolog.Nop())
	require.NoError(t, err)

	store := storage.NewStorageService(db, nil, zerolog.Nop())
	t.Cleanup(func() { _ = store.Close() })

	opts = append([]chatroom.Option{chatroom.WithClock(clock.Now)}, opts...)
	return chatroom.NewService(store, ptTexts, zerolog.Nop(), opts...)
}
