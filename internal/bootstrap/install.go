package bootstrap

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"bot-swatter/internal/config"
	"bot-swatter/internal/detector"
	"bot-swatter/internal/logger"
	"bot-swatter/internal/notifier"
	"bot-swatter/internal/platform"
	"bot-swatter/internal/scheduler"
	"bot-swatter/internal/storage"
	"bot-swatter/internal/tracker"
)

const startupNoticeKey = "installNoticeSent"

// Install runs the startup reconciliation: re-arm the periodic sweeps, seed
// the unban tracker from moderation history, and send the one-time notice to
// the moderators' channel.
func Install(ctx context.Context, cfg *config.Config, store storage.Store, sched *scheduler.Scheduler,
	client platform.Client, det *detector.Detector, trk *tracker.Tracker, ntf *notifier.Telegram) {

	ReconcileJobs(sched, det, trk)

	if err := trk.Seed(ctx); err != nil {
		logger.Warningf("Failed to seed unban data: %v", err)
	}

	sendStartupNotice(ctx, cfg, store, client, ntf)
}

// ReconcileJobs cancels all scheduled jobs and re-arms the two periodic
// sweeps. Idempotent; run at startup and after config changes. Offsets are
// randomized so many installations don't sweep in step.
func ReconcileJobs(sched *scheduler.Scheduler, det *detector.Detector, trk *tracker.Tracker) {
	sched.CancelAll()

	recheckOffset := time.Duration(rand.Int63n(int64(time.Hour)))
	sched.Every("secondCheck", time.Hour, recheckOffset, det.RecheckSweep)

	cleanupOffset := time.Duration(rand.Int63n(int64(6 * time.Hour)))
	sched.Every("unbanCleanup", 6*time.Hour, cleanupOffset, trk.CleanupSweep)
}

// sendStartupNotice tells the moderators the service is watching their
// community. Sent once per store lifetime.
func sendStartupNotice(ctx context.Context, cfg *config.Config, store storage.Store, client platform.Client, ntf *notifier.Telegram) {
	if ntf == nil {
		return
	}

	sent, err := store.Exists(ctx, startupNoticeKey)
	if err != nil {
		logger.Warningf("Failed to check startup notice marker: %v", err)
		return
	}
	if sent {
		return
	}

	modCount := 0
	if mods, err := client.Moderators(ctx, cfg.Platform.Subreddit); err == nil {
		modCount = len(mods)
	}

	message := fmt.Sprintf("bot-swatter is now watching <b>r/%s</b> (%d moderators).\n"+
		"Configured action for likely AI bots: <b>%s</b>.",
		cfg.Platform.Subreddit, modCount, cfg.Detector.Action)
	ntf.Startup(ctx, message)

	if err := store.Set(ctx, startupNoticeKey, time.Now().Format(time.RFC3339), 0); err != nil {
		logger.Warningf("Failed to set startup notice marker: %v", err)
	}
}
