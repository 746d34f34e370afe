package tracker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bot-swatter/internal/platform"
	"bot-swatter/internal/scheduler"
	"bot-swatter/internal/storage"
)

// fakeClient only resolves users by name and serves a scripted mod log.
type fakeClient struct {
	mu          sync.Mutex
	activeUsers map[string]bool
	modLog      []platform.ModAction

	lookupCalls int
	modLogCalls int
}

var _ platform.Client = (*fakeClient)(nil)

func (f *fakeClient) UserByName(ctx context.Context, username string) (*platform.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupCalls++
	if !f.activeUsers[username] {
		return nil, platform.ErrNotFound
	}
	return &platform.User{ID: "t2_" + username, Username: username}, nil
}

func (f *fakeClient) ModerationLog(ctx context.Context, subreddit string, action string, limit int) ([]platform.ModAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modLogCalls++
	return f.modLog, nil
}

func (f *fakeClient) UserByID(ctx context.Context, id string) (*platform.User, error) {
	return nil, platform.ErrNotFound
}

func (f *fakeClient) UserContent(ctx context.Context, username string, limit int) (*platform.UserHistory, error) {
	return &platform.UserHistory{}, nil
}

func (f *fakeClient) RecentComments(ctx context.Context, subreddit string, limit int, before string) ([]*platform.Comment, error) {
	return nil, nil
}

func (f *fakeClient) Report(ctx context.Context, commentID string, reason string) error { return nil }
func (f *fakeClient) Remove(ctx context.Context, commentID string, spam bool) error    { return nil }
func (f *fakeClient) BanUser(ctx context.Context, params platform.BanParams) error     { return nil }
func (f *fakeClient) Moderators(ctx context.Context, subreddit string) ([]string, error) {
	return nil, nil
}

func newTestTracker(t *testing.T) (*Tracker, *fakeClient, *storage.MemStore, *scheduler.Scheduler) {
	t.Helper()
	client := &fakeClient{activeUsers: make(map[string]bool)}
	store := storage.NewMemStore()
	sched := scheduler.New()
	t.Cleanup(sched.Stop)
	return New(store, client, sched, "testsub"), client, store, sched
}

func TestRecordAndQueryUnban(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	trk, _, store, _ := newTestTracker(t)

	unbanned, err := trk.WasPreviouslyUnbanned(ctx, "BobJones5678")
	assert.NoError(err)
	assert.False(unbanned)

	before := time.Now()
	assert.NoError(trk.RecordUnban(ctx, "BobJones5678"))

	unbanned, err = trk.WasPreviouslyUnbanned(ctx, "BobJones5678")
	assert.NoError(err)
	assert.True(unbanned)

	// Next check is one full window out
	score, ok, err := store.ZScore(ctx, unbanStoreKey, "BobJones5678")
	assert.NoError(err)
	assert.True(ok)
	due := time.UnixMilli(int64(score))
	assert.WithinDuration(before.AddDate(0, 0, daysBetweenChecks), due, 5*time.Second)
}

func TestHandleModAction(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	trk, _, _, _ := newTestTracker(t)

	trk.HandleModAction(ctx, platform.ModAction{Action: "banuser", TargetAuthor: "SomeUser1234"})
	unbanned, _ := trk.WasPreviouslyUnbanned(ctx, "SomeUser1234")
	assert.False(unbanned)

	trk.HandleModAction(ctx, platform.ModAction{Action: "unbanuser", TargetAuthor: "SomeUser1234"})
	unbanned, _ = trk.WasPreviouslyUnbanned(ctx, "SomeUser1234")
	assert.True(unbanned)
}

func TestCleanupSweepRearmsAndRetires(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	trk, client, store, _ := newTestTracker(t)

	client.activeUsers["StillHere1234"] = true
	overdue := storage.Score(time.Now().Add(-time.Hour))
	assert.NoError(store.ZAdd(ctx, unbanStoreKey,
		storage.Member{Name: "StillHere1234", Score: overdue},
		storage.Member{Name: "GoneUser1234", Score: overdue},
	))

	trk.CleanupSweep(ctx)

	// Active account re-armed a window out
	score, ok, _ := store.ZScore(ctx, unbanStoreKey, "StillHere1234")
	assert.True(ok)
	assert.Greater(score, storage.Score(time.Now().AddDate(0, 0, daysBetweenChecks-1)))

	// Deleted account dropped entirely
	_, ok, _ = store.ZScore(ctx, unbanStoreKey, "GoneUser1234")
	assert.False(ok)
}

func TestCleanupSweepCapsBatchAndSchedulesFollowUp(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	trk, client, store, sched := newTestTracker(t)

	overdue := storage.Score(time.Now().Add(-time.Hour))
	members := make([]storage.Member, 0, sweepBatchSize+10)
	for i := 0; i < sweepBatchSize+10; i++ {
		name := fmt.Sprintf("UnbannedGuy%04d", i)
		client.activeUsers[name] = true
		members = append(members, storage.Member{Name: name, Score: overdue})
	}
	assert.NoError(store.ZAdd(ctx, unbanStoreKey, members...))

	trk.CleanupSweep(ctx)

	// At most the per-run cap is probed
	assert.Equal(sweepBatchSize, client.lookupCalls)

	// Exactly one immediate follow-up run is scheduled for the backlog
	followUps := 0
	for _, job := range sched.Jobs() {
		if job.Name == "unbanCleanup" {
			followUps++
		}
	}
	assert.Equal(1, followUps)
}

func TestCleanupSweepNoDueEntries(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	trk, client, store, sched := newTestTracker(t)

	future := storage.Score(time.Now().Add(time.Hour))
	assert.NoError(store.ZAdd(ctx, unbanStoreKey, storage.Member{Name: "NotYet1234", Score: future}))

	trk.CleanupSweep(ctx)

	assert.Zero(client.lookupCalls)
	assert.Empty(sched.Jobs())
}

func TestSeedFromModerationHistory(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	trk, client, store, _ := newTestTracker(t)

	client.modLog = []platform.ModAction{
		{ID: "m1", Action: "unbanuser", TargetAuthor: "FirstUser1234"},
		{ID: "m2", Action: "unbanuser", TargetAuthor: "[deleted]"},
		{ID: "m3", Action: "unbanuser", TargetAuthor: "SecondUser5678"},
		{ID: "m4", Action: "unbanuser", TargetAuthor: "FirstUser1234"}, // duplicate
	}

	require.NoError(trk.Seed(ctx))

	for _, username := range []string{"FirstUser1234", "SecondUser5678"} {
		score, ok, err := store.ZScore(ctx, unbanStoreKey, username)
		assert.NoError(err)
		assert.True(ok, username)

		// Randomized within the spread window
		due := time.UnixMilli(int64(score))
		assert.True(due.After(time.Now().Add(-time.Minute)))
		assert.True(due.Before(time.Now().Add(seedSpreadWindow+time.Minute)))
	}

	_, deleted, _ := store.ZScore(ctx, unbanStoreKey, "[deleted]")
	assert.False(deleted)

	// Seeding is one-shot
	require.NoError(trk.Seed(ctx))
	assert.Equal(1, client.modLogCalls)
}
