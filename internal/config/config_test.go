package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	assert := assert.New(t)
	cfg := Defaults()

	assert.Equal("https://oauth.reddit.com", cfg.Platform.BaseURL)
	assert.Equal(30*time.Second, cfg.Platform.PollInterval)

	assert.Equal(ActionReport, cfg.Detector.Action)
	assert.Equal("LLM Bot", cfg.Detector.BanMessage)
	assert.Equal(1, cfg.Detector.MinCommentCount)
	assert.Equal(3, cfg.Detector.MaxAccountAgeMonths)
	assert.Equal(50, cfg.Detector.MaxKarma)
	assert.Equal(500, cfg.Detector.MaxCommentLength)
	assert.Equal(2.0, cfg.Detector.DiversityRatio)
	assert.False(cfg.Detector.AutogenUsernamesOnly)

	assert.False(cfg.Detector.Rules.LowercaseStart)
	assert.True(cfg.Detector.Rules.LineBreaks)
	assert.True(cfg.Detector.Rules.SingleCommunity)
	assert.False(cfg.Detector.Rules.DiversityRatio)

	assert.Equal("INFO", cfg.Logger.Level)
	assert.False(cfg.Database.Enabled)
	assert.False(cfg.Notifier.Enabled)
	assert.Empty(cfg.Metrics.ListenAddr)
}

func TestLoadOverridesDefaults(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
platform:
  subreddit: "mysub"
  subreddit_id: "t5_abc123"
  token: "secret"
detector:
  action: "banandremove"
  max_karma: 100
  rules:
    line_breaks: false
`)
	require.NoError(os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(err)

	assert.Equal("mysub", cfg.Platform.Subreddit)
	assert.Equal("t5_abc123", cfg.Platform.SubredditID)
	assert.Equal(ActionBanAndRemove, cfg.Detector.Action)
	assert.Equal(100, cfg.Detector.MaxKarma)
	assert.False(cfg.Detector.Rules.LineBreaks)

	// Untouched values keep defaults
	assert.Equal("https://oauth.reddit.com", cfg.Platform.BaseURL)
	assert.Equal(1, cfg.Detector.MinCommentCount)

	assert.Same(cfg, Get())
}

func TestLoadRequiresPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}
