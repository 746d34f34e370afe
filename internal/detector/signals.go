package detector

import (
	"strings"
	"unicode"

	"bot-swatter/internal/config"
	"bot-swatter/internal/platform"
)

// Evidence is everything a signal may inspect: the user's profile and their
// recent comments and posts, newest first.
type Evidence struct {
	User     *platform.User
	Comments []*platform.Comment
	Posts    []*platform.Post
}

// Signal is a named counter-indicator: it fires when the account shows a
// behavior bots in scope do not. Any fired signal clears the user.
type Signal struct {
	Name    string
	Enabled func(cfg *config.DetectorConfig) bool
	Fires   func(cfg *config.DetectorConfig, ev *Evidence) bool
}

func always(*config.DetectorConfig) bool { return true }

// humanSignals is the ordered rule set. Order only affects log output; the
// signals are independent and all enabled ones are evaluated.
var humanSignals = []Signal{
	{
		Name:    "posts_elsewhere",
		Enabled: always,
		Fires: func(cfg *config.DetectorConfig, ev *Evidence) bool {
			for _, post := range ev.Posts {
				if post.SubredditName != cfg.TextPostCommunity || strings.Contains(post.URL, "i.redd.it") {
					return true
				}
			}
			return false
		},
	},
	{
		Name:    "reply_comments",
		Enabled: always,
		Fires: func(cfg *config.DetectorConfig, ev *Evidence) bool {
			for _, comment := range ev.Comments {
				if comment.IsReply() {
					return true
				}
			}
			return false
		},
	},
	{
		Name:    "single_community",
		Enabled: func(cfg *config.DetectorConfig) bool { return cfg.Rules.SingleCommunity },
		Fires: func(cfg *config.DetectorConfig, ev *Evidence) bool {
			return len(ev.Comments) > 1 && distinctCommunities(ev.Comments) == 1
		},
	},
	{
		Name:    "low_diversity",
		Enabled: func(cfg *config.DetectorConfig) bool { return cfg.Rules.DiversityRatio },
		Fires: func(cfg *config.DetectorConfig, ev *Evidence) bool {
			distinct := distinctCommunities(ev.Comments)
			if distinct == 0 {
				return false
			}
			return float64(len(ev.Comments))/float64(distinct) > cfg.DiversityRatio
		},
	},
	{
		Name:    "long_comment",
		Enabled: always,
		Fires: func(cfg *config.DetectorConfig, ev *Evidence) bool {
			for _, comment := range ev.Comments {
				if len(comment.Body) > cfg.MaxCommentLength {
					return true
				}
			}
			return false
		},
	},
	{
		Name:    "line_breaks",
		Enabled: func(cfg *config.DetectorConfig) bool { return cfg.Rules.LineBreaks },
		Fires: func(cfg *config.DetectorConfig, ev *Evidence) bool {
			for _, comment := range ev.Comments {
				if strings.Contains(comment.Body, "\n") {
					return true
				}
			}
			return false
		},
	},
	{
		Name:    "lowercase_start",
		Enabled: func(cfg *config.DetectorConfig) bool { return cfg.Rules.LowercaseStart },
		Fires: func(cfg *config.DetectorConfig, ev *Evidence) bool {
			for _, comment := range ev.Comments {
				if startsLowercase(comment.Body) {
					return true
				}
			}
			return false
		},
	},
	{
		Name:    "edited_comment",
		Enabled: always,
		Fires: func(cfg *config.DetectorConfig, ev *Evidence) bool {
			for _, comment := range ev.Comments {
				if comment.Edited {
					return true
				}
			}
			return false
		},
	},
}

// EvaluateSignals runs every enabled signal over the evidence and returns the
// aggregate verdict plus the names of the signals that fired. The verdict is
// bot-like only when no counter-signal fired.
func EvaluateSignals(cfg *config.DetectorConfig, ev *Evidence) (isBot bool, fired []string) {
	for _, signal := range humanSignals {
		if !signal.Enabled(cfg) {
			continue
		}
		if signal.Fires(cfg, ev) {
			fired = append(fired, signal.Name)
		}
	}
	return len(fired) == 0, fired
}

func distinctCommunities(comments []*platform.Comment) int {
	seen := make(map[string]struct{}, len(comments))
	for _, comment := range comments {
		seen[comment.SubredditName] = struct{}{}
	}
	return len(seen)
}

func startsLowercase(body string) bool {
	for _, r := range body {
		return unicode.IsLower(r)
	}
	return false
}
