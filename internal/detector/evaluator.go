package detector

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"bot-swatter/internal/config"
	"bot-swatter/internal/logger"
	"bot-swatter/internal/platform"
	"bot-swatter/internal/storage"
	"bot-swatter/internal/tracker"
)

const (
	// Suppression record: "recently cleared as non-bot, skip until expiry."
	suppressionKeyPrefix = "aibotchecker-"
	suppressionTTL       = 7 * 24 * time.Hour

	// Delayed recheck queue for accounts too new to judge.
	recheckQueueKey = "aibotchecker-queue"
	recheckDelay    = 18 * time.Hour

	userHistoryLimit = 100

	reportReason = "Potential AI Bot. Check for history elsewhere and consider taking action."
)

// Notifier receives a callback whenever an enforcement action is taken.
type Notifier interface {
	ActionTaken(ctx context.Context, username, action string, commentCount int)
}

// AuditFunc records an enforcement action in the audit trail.
type AuditFunc func(subreddit, username, action, reason string, commentCount int, signals []string)

// Detector is the bot-detection engine for one community.
type Detector struct {
	cfg      *config.Config
	client   platform.Client
	store    storage.Store
	tracker  *tracker.Tracker
	notifier Notifier
	audit    AuditFunc
}

func New(cfg *config.Config, client platform.Client, store storage.Store, trk *tracker.Tracker) *Detector {
	return &Detector{
		cfg:     cfg,
		client:  client,
		store:   store,
		tracker: trk,
	}
}

// WithNotifier attaches an action notifier.
func (d *Detector) WithNotifier(n Notifier) *Detector {
	d.notifier = n
	return d
}

// WithAudit attaches an audit sink.
func (d *Detector) WithAudit(fn AuditFunc) *Detector {
	d.audit = fn
	return d
}

func suppressionKey(username string) string {
	return suppressionKeyPrefix + username
}

// EvaluateUser pulls the user's recent history, weighs the counter-signals
// and, on a bot-like verdict, applies the configured action. Insufficient
// history defers the decision to the recheck queue instead.
func (d *Detector) EvaluateUser(ctx context.Context, user *platform.User) {
	deepCheckCount.Inc()

	history, err := d.client.UserContent(ctx, user.Username, userHistoryLimit)
	if err != nil {
		logger.Warningf("%s: failed to fetch user history: %v", user.Username, err)
		return
	}

	detCfg := &d.cfg.Detector
	evidence := &Evidence{User: user, Comments: history.Comments, Posts: history.Posts}
	isBot, fired := EvaluateSignals(detCfg, evidence)
	for _, name := range fired {
		logger.Infof("%s: counter-signal fired: %s", user.Username, name)
	}

	if len(history.Comments) < detCfg.MinCommentCount {
		logger.Infof("%s: user doesn't have enough comments", user.Username)
		if isBot {
			due := time.Now().Add(recheckDelay)
			err := d.store.ZAdd(ctx, recheckQueueKey, storage.Member{Name: user.Username, Score: storage.Score(due)})
			if err != nil {
				logger.Warningf("%s: failed to queue recheck: %v", user.Username, err)
				return
			}
			recheckQueuedCount.Inc()
			logger.Infof("%s: queued additional check for %v from now", user.Username, recheckDelay)
		}
		return
	}

	key := suppressionKey(user.Username)

	if !isBot {
		verdictCount.WithLabelValues("clear").Inc()
		// Don't check the user again for another week
		value := strconv.FormatInt(time.Now().UnixMilli(), 10)
		if err := d.store.Set(ctx, key, value, suppressionTTL); err != nil {
			logger.Warningf("%s: failed to write suppression record: %v", user.Username, err)
		}
		return
	}

	verdictCount.WithLabelValues("bot").Inc()
	logger.Infof("%s: user is a likely AI bot!", user.Username)
	if err := d.store.Del(ctx, key); err != nil {
		logger.Warningf("%s: failed to delete suppression record: %v", user.Username, err)
	}

	previouslyUnbanned, err := d.tracker.WasPreviouslyUnbanned(ctx, user.Username)
	if err != nil {
		logger.Warningf("%s: unban lookup failed, skipping enforcement: %v", user.Username, err)
		return
	}
	if previouslyUnbanned {
		logger.Infof("%s: user was previously unbanned, leaving alone", user.Username)
		return
	}

	d.enforce(ctx, user, history.Comments, fired)
}

// enforce applies the configured action to the user's comments in this
// community.
func (d *Detector) enforce(ctx context.Context, user *platform.User, comments []*platform.Comment, fired []string) {
	detCfg := &d.cfg.Detector
	if detCfg.Action == config.ActionNone {
		return
	}

	local := d.localComments(comments)
	if len(local) == 0 {
		// Shouldn't be possible at this point: the user got here through a
		// comment in this community.
		logger.Warningf("%s: bot verdict but no comments in r/%s, skipping", user.Username, d.cfg.Platform.Subreddit)
		return
	}

	switch detCfg.Action {
	case config.ActionReport:
		d.forEachComment(local, func(comment *platform.Comment) error {
			return d.client.Report(ctx, comment.ID, reportReason)
		})
		logger.Infof("%s: reported %d comment(s) in r/%s", user.Username, len(local), d.cfg.Platform.Subreddit)
		actionCount.WithLabelValues(config.ActionReport).Inc()
		if d.audit != nil {
			d.audit(d.cfg.Platform.Subreddit, user.Username, config.ActionReport, reportReason, len(local), fired)
		}
		if d.notifier != nil {
			d.notifier.ActionTaken(ctx, user.Username, config.ActionReport, len(local))
		}

	case config.ActionBanAndRemove:
		d.forEachComment(local, func(comment *platform.Comment) error {
			return d.client.Remove(ctx, comment.ID, true)
		})
		logger.Infof("%s: removed %d comment(s) from r/%s", user.Username, len(local), d.cfg.Platform.Subreddit)

		err := d.client.BanUser(ctx, platform.BanParams{
			Subreddit:        local[0].SubredditName,
			Username:         user.Username,
			ContextCommentID: local[0].ID,
			Message:          detCfg.BanMessage,
			Reason:           detCfg.BanMessage,
		})
		if err != nil {
			logger.Warningf("%s: failed to ban user: %v", user.Username, err)
			return
		}
		logger.Infof("%s: banned user", user.Username)
		actionCount.WithLabelValues(config.ActionBanAndRemove).Inc()
		if d.audit != nil {
			d.audit(d.cfg.Platform.Subreddit, user.Username, config.ActionBanAndRemove, detCfg.BanMessage, len(local), fired)
		}
		if d.notifier != nil {
			d.notifier.ActionTaken(ctx, user.Username, config.ActionBanAndRemove, len(local))
		}
	}
}

// localComments filters for comments belonging to the guarded community.
func (d *Detector) localComments(comments []*platform.Comment) []*platform.Comment {
	var local []*platform.Comment
	for _, comment := range comments {
		if d.isLocal(comment) {
			local = append(local, comment)
		}
	}
	return local
}

func (d *Detector) isLocal(comment *platform.Comment) bool {
	if d.cfg.Platform.SubredditID != "" {
		return comment.SubredditID == d.cfg.Platform.SubredditID
	}
	return strings.EqualFold(comment.SubredditName, d.cfg.Platform.Subreddit)
}

// forEachComment issues one request per comment concurrently. Failures are
// logged and not retried; they don't affect the other requests.
func (d *Detector) forEachComment(comments []*platform.Comment, fn func(*platform.Comment) error) {
	var wg sync.WaitGroup
	for _, comment := range comments {
		wg.Add(1)
		go func(comment *platform.Comment) {
			defer wg.Done()
			if err := fn(comment); err != nil {
				logger.Warningf("action on comment %s failed: %v", comment.ID, err)
			}
		}(comment)
	}
	wg.Wait()
}
