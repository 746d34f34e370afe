package detector

import (
	"context"
	"strings"
	"time"

	"bot-swatter/internal/config"
	"bot-swatter/internal/logger"
	"bot-swatter/internal/platform"
)

// CheckComment is the fast path run for every newly created comment. Each
// check short-circuits silently; only a comment passing all of them triggers
// a full evaluation of its author. authorKarma is the karma figure supplied
// with the event, or -1 when the event carries none.
func (d *Detector) CheckComment(ctx context.Context, comment *platform.Comment, authorKarma int) {
	commentScannedCount.Inc()
	detCfg := &d.cfg.Detector

	// Only top-level comments are of interest; joining a conversation is
	// itself a counter-signal.
	if comment.IsReply() {
		return
	}

	if detCfg.Rules.LowercaseStart && startsLowercase(comment.Body) {
		return
	}
	if detCfg.Rules.LineBreaks && strings.Contains(comment.Body, "\n") {
		return
	}

	if detCfg.Action == config.ActionNone {
		return
	}

	if len(comment.Body) > detCfg.MaxCommentLength {
		return
	}

	if authorKarma >= 0 && authorKarma > detCfg.MaxKarma {
		return
	}

	if !MatchesBotPattern(detCfg, comment.Author, authorKarma) {
		return
	}

	alreadyChecked, err := d.store.Exists(ctx, suppressionKey(comment.Author))
	if err != nil {
		logger.Warningf("%s: suppression lookup failed: %v", comment.Author, err)
		return
	}
	if alreadyChecked {
		return
	}

	logger.Infof("%s: checking user", comment.Author)

	user, status := platform.LookupUserByID(ctx, d.client, comment.AuthorID)
	if status.Gone() {
		logger.Infof("%s: user is shadowbanned", comment.Author)
		return
	}

	if d.accountTooOld(user) {
		logger.Infof("%s: account is too old", user.Username)
		return
	}

	// The profile's comment karma is authoritative over the event-supplied
	// figure.
	if user.CommentKarma > detCfg.MaxKarma {
		logger.Infof("%s: too much karma", user.Username)
		return
	}

	d.EvaluateUser(ctx, user)
}

func (d *Detector) accountTooOld(user *platform.User) bool {
	cutoff := time.Now().AddDate(0, -d.cfg.Detector.MaxAccountAgeMonths, 0)
	return user.CreatedAt.Before(cutoff)
}
