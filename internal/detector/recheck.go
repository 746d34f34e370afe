package detector

import (
	"context"
	"time"

	"bot-swatter/internal/logger"
	"bot-swatter/internal/platform"
)

// RecheckSweep drains the delayed recheck queue: every queued username whose
// due time has passed gets a fresh evaluation, exactly as in the immediate
// path. Due entries are removed before processing so an overlapping sweep
// cannot claim them twice.
func (d *Detector) RecheckSweep(ctx context.Context) {
	due, err := d.store.ZRangeByScore(ctx, recheckQueueKey, scoreNow())
	if err != nil {
		logger.Warningf("recheck sweep: failed to read queue: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	names := make([]string, 0, len(due))
	for _, member := range due {
		names = append(names, member.Name)
	}
	if err := d.store.ZRem(ctx, recheckQueueKey, names...); err != nil {
		logger.Warningf("recheck sweep: failed to claim entries: %v", err)
		return
	}

	detCfg := &d.cfg.Detector
	for _, username := range names {
		if !MatchesBotPattern(detCfg, username, -1) {
			continue
		}

		logger.Infof("%s: second check for user", username)
		user, status := platform.LookupUserByName(ctx, d.client, username)
		if status.Gone() {
			logger.Infof("%s: user is shadowbanned or deleted", username)
			continue
		}

		// The account may have aged out or accrued karma since it was queued.
		if d.accountTooOld(user) {
			logger.Infof("%s: account is too old", user.Username)
			continue
		}
		if user.CommentKarma > detCfg.MaxKarma {
			logger.Infof("%s: account has too much karma", user.Username)
			continue
		}

		d.EvaluateUser(ctx, user)
	}
}

func scoreNow() float64 {
	return float64(time.Now().UnixMilli())
}
