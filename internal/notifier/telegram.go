package notifier

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"

	"bot-swatter/internal/config"
	"bot-swatter/internal/logger"
)

// Telegram pushes moderation alerts to a moderator chat. The channel is
// optional; a nil *Telegram is safe to ignore at call sites.
type Telegram struct {
	bot       *telego.Bot
	chatID    telego.ChatID
	subreddit string
}

// New creates the notifier, or returns nil when the channel is disabled.
func New(ctx context.Context, cfg *config.Config) (*Telegram, error) {
	if !cfg.Notifier.Enabled {
		return nil, nil
	}
	if cfg.Notifier.Token == "" {
		return nil, fmt.Errorf("notifier enabled but no token configured")
	}

	bot, err := telego.NewBot(cfg.Notifier.Token, telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notifier bot: %w", err)
	}

	botUser, err := bot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifier bot info: %w", err)
	}
	logger.Infof("Notifier authorized on account %s", botUser.Username)

	return &Telegram{
		bot:       bot,
		chatID:    telego.ChatID{ID: cfg.Notifier.ChatID},
		subreddit: cfg.Platform.Subreddit,
	}, nil
}

// Startup sends a one-time notice that the service is watching the community.
func (t *Telegram) Startup(ctx context.Context, message string) {
	if t == nil {
		return
	}
	t.send(ctx, message)
}

// ActionTaken reports an enforcement action against a flagged user.
func (t *Telegram) ActionTaken(ctx context.Context, username, action string, commentCount int) {
	if t == nil {
		return
	}
	message := fmt.Sprintf("⚠️ <b>Likely AI bot detected</b> [r/%s]\n"+
		"User <b>%s</b> flagged, action taken: <b>%s</b> (%d comment(s) affected)",
		t.subreddit, username, action, commentCount)
	t.send(ctx, message)
}

func (t *Telegram) send(ctx context.Context, message string) {
	_, err := t.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    t.chatID,
		Text:      message,
		ParseMode: "HTML",
	})
	if err != nil {
		logger.Warningf("Error sending notifier message: %v", err)
	}
}
