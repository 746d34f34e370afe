package tracker

import (
	"context"
	"math/rand"
	"time"

	"bot-swatter/internal/logger"
	"bot-swatter/internal/platform"
	"bot-swatter/internal/scheduler"
	"bot-swatter/internal/storage"
)

const (
	unbanStoreKey = "unbannedUsers"
	seedMarkerKey = "initialUnbanDataStored"

	// A moderator pardon holds off automated re-punishment for this long;
	// the cleanup sweep pushes the window forward while the account lives.
	daysBetweenChecks = 28

	// Upper bound on accounts probed per cleanup run.
	sweepBatchSize = 50

	followUpDelay = 5 * time.Second

	seedHistoryLimit = 1000
	seedSpreadWindow = 48 * time.Hour
)

// Tracker remembers which accounts a moderator manually unbanned, so the
// detector never re-punishes a pardoned user without human review.
type Tracker struct {
	store     storage.Store
	client    platform.Client
	sched     *scheduler.Scheduler
	subreddit string
}

func New(store storage.Store, client platform.Client, sched *scheduler.Scheduler, subreddit string) *Tracker {
	return &Tracker{
		store:     store,
		client:    client,
		sched:     sched,
		subreddit: subreddit,
	}
}

// HandleModAction records unban actions observed in the moderation stream.
func (t *Tracker) HandleModAction(ctx context.Context, action platform.ModAction) {
	if action.Action != "unbanuser" || action.TargetAuthor == "" {
		return
	}
	if err := t.RecordUnban(ctx, action.TargetAuthor); err != nil {
		logger.Warningf("ModAction: failed to record unban of %s: %v", action.TargetAuthor, err)
		return
	}
	logger.Infof("ModAction: %s has been unbanned, adding to data store", action.TargetAuthor)
}

// RecordUnban upserts the username with a next-check date one window out.
func (t *Tracker) RecordUnban(ctx context.Context, username string) error {
	due := time.Now().AddDate(0, 0, daysBetweenChecks)
	return t.store.ZAdd(ctx, unbanStoreKey, storage.Member{Name: username, Score: storage.Score(due)})
}

// WasPreviouslyUnbanned reports whether the username has an active unban
// record. Existence check only, no mutation.
func (t *Tracker) WasPreviouslyUnbanned(ctx context.Context, username string) (bool, error) {
	_, ok, err := t.store.ZScore(ctx, unbanStoreKey, username)
	return ok, err
}

// CleanupSweep retires unban records for accounts that no longer exist and
// re-arms the check date for accounts still active. At most sweepBatchSize
// entries are probed per run; a backlog schedules one immediate follow-up.
func (t *Tracker) CleanupSweep(ctx context.Context) {
	logger.Infof("Cleanup: starting cleanup job")

	due, err := t.store.ZRangeByScore(ctx, unbanStoreKey, storage.Score(time.Now()))
	if err != nil {
		logger.Warningf("Cleanup: failed to read unban store: %v", err)
		return
	}
	if len(due) == 0 {
		logger.Infof("Cleanup: no users are due a check")
		return
	}

	batch := due
	if len(batch) > sweepBatchSize {
		logger.Infof("Cleanup: %d accounts are due a check, checking first %d in this run", len(due), sweepBatchSize)
		batch = due[:sweepBatchSize]
	} else {
		logger.Infof("Cleanup: %d accounts are due a check", len(due))
	}

	// Only a confirmed-missing account retires its record. A failed lookup
	// re-arms instead; dropping a pardon on a transient error is the wrong
	// direction to fail in.
	var active, gone []string
	for _, member := range batch {
		_, status := platform.LookupUserByName(ctx, t.client, member.Name)
		if status == platform.LookupMissing {
			gone = append(gone, member.Name)
		} else {
			active = append(active, member.Name)
		}
	}

	if len(active) > 0 {
		logger.Infof("Cleanup: %d users still active out of %d, resetting next check time", len(active), len(batch))
		nextDue := storage.Score(time.Now().AddDate(0, 0, daysBetweenChecks))
		members := make([]storage.Member, 0, len(active))
		for _, username := range active {
			members = append(members, storage.Member{Name: username, Score: nextDue})
		}
		if err := t.store.ZAdd(ctx, unbanStoreKey, members...); err != nil {
			logger.Warningf("Cleanup: failed to re-arm active users: %v", err)
		}
	}

	if len(gone) > 0 {
		logger.Infof("Cleanup: %d users out of %d are deleted or suspended, removing from data store", len(gone), len(batch))
		if err := t.store.ZRem(ctx, unbanStoreKey, gone...); err != nil {
			logger.Warningf("Cleanup: failed to remove deleted users: %v", err)
		}
	}

	// More entries were due than one run may process; drain the remainder
	// shortly without waiting a full interval.
	if len(due) > sweepBatchSize {
		t.sched.RunAt("unbanCleanup", time.Now().Add(followUpDelay), t.CleanupSweep)
	}
}

// Seed backfills the unban store from the community's moderation history.
// Runs once; due times are randomized across the next two days so a fleet of
// fresh installations doesn't probe in lockstep.
func (t *Tracker) Seed(ctx context.Context) error {
	seeded, err := t.store.Exists(ctx, seedMarkerKey)
	if err != nil {
		return err
	}
	if seeded {
		return nil
	}

	modLog, err := t.client.ModerationLog(ctx, t.subreddit, "unbanuser", seedHistoryLimit)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{})
	var members []storage.Member
	for _, action := range modLog {
		username := action.TargetAuthor
		if username == "" || username == "[deleted]" {
			continue
		}
		if _, dup := seen[username]; dup {
			continue
		}
		seen[username] = struct{}{}

		due := time.Now().Add(time.Duration(rand.Int63n(int64(seedSpreadWindow))))
		members = append(members, storage.Member{Name: username, Score: storage.Score(due)})
	}

	if len(members) > 0 {
		if err := t.store.ZAdd(ctx, unbanStoreKey, members...); err != nil {
			return err
		}
	}
	logger.Infof("Seeded %d unbanned user(s) into the data store", len(members))

	return t.store.Set(ctx, seedMarkerKey, "true", 0)
}
