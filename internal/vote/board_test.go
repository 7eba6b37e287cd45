package vote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"liftlog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) IncrementVote(ctx context.Context, id string, kind models.VoteKind) error {
	args := m.Called(ctx, id, kind)
	return args.Error(0)
}

func seededBoard(likes, dislikes int64) *Board {
	b := NewBoard()
	b.Replace([]models.WorkoutTemplate{
		{ID: "a", Title: "A", LikeCount: likes, DislikeCount: dislikes},
		{ID: "b", Title: "B"},
	})
	return b
}

func TestCast_SuccessIncrementsOnce(t *testing.T) {
	b := seededBoard(5, 0)
	store := &mockStore{}
	store.On("IncrementVote", mock.Anything, "a", models.VoteLike).Return(nil).Once()

	require.NoError(t, b.Cast(context.Background(), "a", models.VoteLike, store))

	got, _ := b.Get("a")
	assert.Equal(t, int64(6), got.LikeCount)
	assert.False(t, b.Pending("a"))
	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "IncrementVote", 1)
}

func TestCast_FailureRestoresCounter(t *testing.T) {
	b := seededBoard(5, 0)
	store := &mockStore{}
	store.On("IncrementVote", mock.Anything, "a", models.VoteLike).Return(errors.New("permission denied"))

	err := b.Cast(context.Background(), "a", models.VoteLike, store)
	assert.EqualError(t, err, "permission denied")

	got, _ := b.Get("a")
	assert.Equal(t, int64(5), got.LikeCount)
	assert.False(t, b.Pending("a"))
}

func TestRollback_FloorsAtZero(t *testing.T) {
	b := seededBoard(0, 0)
	ballot, err := b.Begin("a", models.VoteDislike)
	require.NoError(t, err)

	got, _ := b.Get("a")
	assert.Equal(t, int64(1), got.DislikeCount)

	// Something else reset the local counter before the failure came back.
	b.mu.Lock()
	b.templates[0].DislikeCount = 0
	b.mu.Unlock()

	require.NoError(t, ballot.Rollback())
	got, _ = b.Get("a")
	assert.Equal(t, int64(0), got.DislikeCount)
	assert.Equal(t, RolledBack, ballot.Phase())
}

func TestBegin_GuardsInFlightVote(t *testing.T) {
	b := seededBoard(1, 1)

	first, err := b.Begin("a", models.VoteLike)
	require.NoError(t, err)
	assert.True(t, b.Pending("a"))

	_, err = b.Begin("a", models.VoteDislike)
	assert.ErrorIs(t, err, ErrVoteInFlight)

	// Other templates are unaffected.
	other, err := b.Begin("b", models.VoteLike)
	require.NoError(t, err)
	require.NoError(t, other.Confirm())

	require.NoError(t, first.Confirm())
	assert.ErrorIs(t, first.Confirm(), ErrSettled)
	assert.ErrorIs(t, first.Rollback(), ErrSettled)
	assert.False(t, b.Pending("a"))

	got, _ := b.Get("a")
	assert.Equal(t, int64(2), got.LikeCount)
	assert.Equal(t, int64(1), got.DislikeCount)
}

func TestReplace_DiscardsStaleRollback(t *testing.T) {
	b := seededBoard(5, 0)
	ballot, err := b.Begin("a", models.VoteLike)
	require.NoError(t, err)

	b.Replace([]models.WorkoutTemplate{{ID: "a", LikeCount: 5}})
	require.NoError(t, ballot.Rollback())

	got, _ := b.Get("a")
	assert.Equal(t, int64(5), got.LikeCount)
}

func TestBegin_InvalidKindAndUnknownTemplate(t *testing.T) {
	b := seededBoard(0, 0)
	_, err := b.Begin("a", models.VoteKind("meh"))
	assert.ErrorIs(t, err, ErrInvalidKind)

	ballot, err := b.Begin("not-listed", models.VoteLike)
	require.NoError(t, err)
	require.NoError(t, ballot.Rollback())
	_, ok := b.Get("not-listed")
	assert.False(t, ok)
}

func TestCast_ConcurrentSameTemplate(t *testing.T) {
	b := seededBoard(0, 0)
	release := make(chan struct{})
	store := &mockStore{}
	store.On("IncrementVote", mock.Anything, "a", models.VoteLike).
		Run(func(mock.Arguments) { <-release }).
		Return(nil)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- b.Cast(context.Background(), "a", models.VoteLike, store)
	}()
	require.Eventually(t, func() bool { return b.Pending("a") }, time.Second, time.Millisecond)

	for i := 0; i < 4; i++ {
		assert.ErrorIs(t, b.Cast(context.Background(), "a", models.VoteLike, store), ErrVoteInFlight)
	}
	close(release)
	wg.Wait()
	require.NoError(t, <-errs)

	got, _ := b.Get("a")
	assert.Equal(t, int64(1), got.LikeCount)
	store.AssertNumberOfCalls(t, "IncrementVote", 1)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "tentative", Tentative.String())
	assert.Equal(t, "confirmed", Confirmed.String())
	assert.Equal(t, "rolled_back", RolledBack.String())
}
