package handler

import (
	"context"
	"time"

	"bot-swatter/internal/config"
	"bot-swatter/internal/crash"
	"bot-swatter/internal/detector"
	"bot-swatter/internal/logger"
	"bot-swatter/internal/platform"
	"bot-swatter/internal/tracker"
)

const (
	commentPollLimit = 100
	modLogPollLimit  = 25
)

// Poller turns the platform's listing endpoints into events: new comments go
// to the detector's fast path, unban mod actions go to the tracker.
type Poller struct {
	cfg    *config.Config
	client platform.Client
	det    *detector.Detector
	trk    *tracker.Tracker

	lastCommentID string
	seenActions   map[string]struct{}
	primed        bool
}

func NewPoller(cfg *config.Config, client platform.Client, det *detector.Detector, trk *tracker.Tracker) *Poller {
	return &Poller{
		cfg:         cfg,
		client:      client,
		det:         det,
		trk:         trk,
		seenActions: make(map[string]struct{}),
	}
}

// Start runs the polling loop until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	crash.SafeGoroutine("poller", func() {
		interval := p.cfg.Platform.PollInterval
		logger.Infof("Polling r/%s every %v", p.cfg.Platform.Subreddit, interval)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		p.pollOnce(ctx)
		for {
			select {
			case <-ticker.C:
				p.pollOnce(ctx)
			case <-ctx.Done():
				return
			}
		}
	})
}

func (p *Poller) pollOnce(ctx context.Context) {
	p.pollComments(ctx)
	p.pollModLog(ctx)
}

func (p *Poller) pollComments(ctx context.Context) {
	comments, err := p.client.RecentComments(ctx, p.cfg.Platform.Subreddit, commentPollLimit, p.lastCommentID)
	if err != nil {
		logger.Warningf("Failed to poll comments: %v", err)
		return
	}
	if len(comments) == 0 {
		return
	}

	// Listing is newest first.
	p.lastCommentID = comments[0].ID

	// The first poll only establishes a baseline; the backlog predates us.
	if !p.primed {
		p.primed = true
		logger.Infof("Comment polling primed at %s", p.lastCommentID)
		return
	}

	// Process oldest first so the fast path sees events in arrival order.
	for i := len(comments) - 1; i >= 0; i-- {
		p.det.CheckComment(ctx, comments[i], -1)
	}
}

func (p *Poller) pollModLog(ctx context.Context) {
	actions, err := p.client.ModerationLog(ctx, p.cfg.Platform.Subreddit, "unbanuser", modLogPollLimit)
	if err != nil {
		logger.Warningf("Failed to poll moderation log: %v", err)
		return
	}

	for _, action := range actions {
		if _, seen := p.seenActions[action.ID]; seen {
			continue
		}
		p.seenActions[action.ID] = struct{}{}
		p.trk.HandleModAction(ctx, action)
	}

	// Keep the dedupe set bounded.
	if len(p.seenActions) > 10*modLogPollLimit {
		fresh := make(map[string]struct{}, len(actions))
		for _, action := range actions {
			fresh[action.ID] = struct{}{}
		}
		p.seenActions = fresh
	}
}
