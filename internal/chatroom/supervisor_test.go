package chatroom_test

import (
	"batepapo/backend/internal/chatroom"
	"batepapo/backend/internal/models"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testTimeout  = 10 * time.Second
	testInterval = 15 * time.Second
)

func TestSweep_EvictsOnlyStaleParticipants(t *testing.T) {
	store := new(MockStorage)
	clock := newFakeClock()
	svc := newMockService(store, clock)
	sup := chatroom.NewSupervisor(svc, testTimeout, testInterval, nil)

	now := clock.Now().UnixMilli()
	stale := models.Participant{ID: "p-1", Name: "Ann", LastStatus: now - testTimeout.Milliseconds()}
	fresh := models.Participant{ID: "p-2", Name: "Bob", LastStatus: now - 9_999}

	store.On("ListParticipants", mock.Anything).Return([]models.Participant{stale, fresh}, nil)
	store.On("FindParticipantByName", mock.Anything, "Ann").Return(&stale, nil)
	store.On("DeleteParticipantByID", mock.Anything, "p-1").Return(nil).Once()
	store.On("InsertMessage", mock.Anything, mock.MatchedBy(func(msg *models.Message) bool {
		return msg.From == "Ann" && msg.To == "Todos" && msg.Type == models.TypeStatus && msg.Text == "sai da sala..."
	})).Return(nil).Once()

	report, err := sup.Sweep(context.Background())

	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, []string{"Ann"}, report.Evicted)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "DeleteParticipantByID", mock.Anything, "p-2")
}

func TestSweep_FailureDoesNotAbortOtherEvictions(t *testing.T) {
	store := new(MockStorage)
	clock := newFakeClock()
	svc := newMockService(store, clock)
	sup := chatroom.NewSupervisor(svc, testTimeout, testInterval, nil)

	old := clock.Now().Add(-time.Minute).UnixMilli()
	ann := models.Participant{ID: "p-1", Name: "Ann", LastStatus: old}
	bob := models.Participant{ID: "p-2", Name: "Bob", LastStatus: old}
	cid := models.Participant{ID: "p-3", Name: "Cid", LastStatus: old}

	store.On("ListParticipants", mock.Anything).Return([]models.Participant{ann, bob, cid}, nil)
	store.On("FindParticipantByName", mock.Anything, "Ann").Return(&ann, nil)
	store.On("FindParticipantByName", mock.Anything, "Bob").Return(&bob, nil)
	store.On("FindParticipantByName", mock.Anything, "Cid").Return(&cid, nil)
	store.On("DeleteParticipantByID", mock.Anything, "p-1").Return(models.ErrStoreUnavailable)
	store.On("DeleteParticipantByID", mock.Anything, "p-2").Return(nil)
	store.On("DeleteParticipantByID", mock.Anything, "p-3").Return(nil)
	store.On("InsertMessage", mock.Anything, mock.MatchedBy(func(msg *models.Message) bool { return msg.From == "Bob" })).
		Return(errors.New("disk full"))
	store.On("InsertMessage", mock.Anything, mock.MatchedBy(func(msg *models.Message) bool { return msg.From == "Cid" })).
		Return(nil)

	report, err := sup.Sweep(context.Background())

	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.ElementsMatch(t, []string{"Bob", "Cid"}, report.Evicted)
	require.Len(t, report.Failures, 2)

	stages := map[string]string{}
	for _, f := range report.Failures {
		stages[f.Name] = f.Stage
	}
	assert.Equal(t, chatroom.StageDelete, stages["Ann"])
	assert.Equal(t, chatroom.StageAnnounce, stages["Bob"])
}

func TestSweep_SkipsParticipantRefreshedDuringSweep(t *testing.T) {
	store := new(MockStorage)
	clock := newFakeClock()
	svc := newMockService(store, clock)
	sup := chatroom.NewSupervisor(svc, testTimeout, testInterval, nil)

	scanned := models.Participant{ID: "p-1", Name: "Ann", LastStatus: clock.Now().Add(-time.Minute).UnixMilli()}
	refreshed := scanned
	refreshed.LastStatus = clock.Now().UnixMilli()

	store.On("ListParticipants", mock.Anything).Return([]models.Participant{scanned}, nil)
	store.On("FindParticipantByName", mock.Anything, "Ann").Return(&refreshed, nil)

	report, err := sup.Sweep(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Evicted)
	assert.Equal(t, []string{"Ann"}, report.Skipped)
	store.AssertNotCalled(t, "DeleteParticipantByID", mock.Anything, mock.Anything)
}

func TestSweep_SkipsParticipantAlreadyGone(t *testing.T) {
	store := new(MockStorage)
	clock := newFakeClock()
	svc := newMockService(store, clock)
	sup := chatroom.NewSupervisor(svc, testTimeout, testInterval, nil)

	ann := models.Participant{ID: "p-1", Name: "Ann", LastStatus: 0}
	bob := models.Participant{ID: "p-2", Name: "Bob", LastStatus: 0}

	store.On("ListParticipants", mock.Anything).Return([]models.Participant{ann, bob}, nil)
	store.On("FindParticipantByName", mock.Anything, "Ann").Return(nil, nil)
	store.On("FindParticipantByName", mock.Anything, "Bob").Return(&bob, nil)
	store.On("DeleteParticipantByID", mock.Anything, "p-2").Return(models.ErrNotFound)

	report, err := sup.Sweep(context.Background())

	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.ElementsMatch(t, []string{"Ann", "Bob"}, report.Skipped)
	store.AssertNotCalled(t, "InsertMessage", mock.Anything, mock.Anything)
}

func TestSweep_ListFailure(t *testing.T) {
	store := new(MockStorage)
	svc := newMockService(store, newFakeClock())
	sup := chatroom.NewSupervisor(svc, testTimeout, testInterval, nil)

	store.On("ListParticipants", mock.Anything).Return(nil, models.ErrStoreUnavailable)

	_, err := sup.Sweep(context.Background())
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

type stubLocker struct {
	acquired bool
	calls    atomic.Int32
}

func (l *stubLocker) AcquireSweepLock(context.Context, string, time.Duration) (bool, error) {
	l.calls.Add(1)
	return l.acquired, nil
}

func TestRun_SweepsWhileHoldingLock(t *testing.T) {
	store := new(MockStorage)
	svc := newMockService(store, newFakeClock())
	locker := &stubLocker{acquired: true}
	sup := chatroom.NewSupervisor(svc, testTimeout, 5*time.Millisecond, locker)

	store.On("ListParticipants", mock.Anything).Return([]models.Participant{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := sup.Run(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, locker.calls.Load())
	store.AssertCalled(t, "ListParticipants", mock.Anything)
}

func TestRun_SkipsSweepWithoutLock(t *testing.T) {
	store := new(MockStorage)
	svc := newMockService(store, newFakeClock())
	locker := &stubLocker{acquired: false}
	sup := chatroom.NewSupervisor(svc, testTimeout, 5*time.Millisecond, locker)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	_ = sup.Run(ctx)

	assert.Positive(t, locker.calls.Load())
	store.AssertNotCalled(t, "ListParticipants", mock.Anything)
}
