package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesBotPattern(t *testing.T) {
	assert := assert.New(t)
	cfg := &testConfig().Detector

	// Two capitalized fragments with a digit suffix, karma under threshold
	assert.True(MatchesBotPattern(cfg, "AaronSmith1234", 10))
	assert.True(MatchesBotPattern(cfg, "BobJones5678", 0))
	assert.True(MatchesBotPattern(cfg, "Aaron-Smith1234", 10))
	assert.True(MatchesBotPattern(cfg, "Aaron_Smith_1234", 10))

	// Unknown karma is not disqualifying
	assert.True(MatchesBotPattern(cfg, "AaronSmith1234", -1))

	// Karma over the configured maximum disqualifies
	assert.False(MatchesBotPattern(cfg, "AaronSmith1234", cfg.MaxKarma+1))

	// Single alphabetic run, no digit suffix
	assert.False(MatchesBotPattern(cfg, "justaperson", 10))
	assert.False(MatchesBotPattern(cfg, "Aaronsmith", 10))
	assert.False(MatchesBotPattern(cfg, "AaronSmith", 10))

	// Minimal structural expectations
	assert.False(MatchesBotPattern(cfg, "", 10))
	assert.False(MatchesBotPattern(cfg, "1234", 10))
	assert.False(MatchesBotPattern(cfg, "aaron_smith_1234", 10))
}

func TestMatchesBotPatternAutogenOnly(t *testing.T) {
	assert := assert.New(t)
	cfg := &testConfig().Detector
	cfg.AutogenUsernamesOnly = true

	// Default-username shapes always carry a separator
	assert.True(MatchesBotPattern(cfg, "Worldly_Heart3682", 10))
	assert.True(MatchesBotPattern(cfg, "Ok-Comparison-9867", 10))

	assert.False(MatchesBotPattern(cfg, "AaronSmith1234", 10))
	assert.False(MatchesBotPattern(cfg, "justaperson", 10))
	assert.False(MatchesBotPattern(cfg, "", 10))
}
