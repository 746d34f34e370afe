package detector

import (
	"regexp"

	"bot-swatter/internal/config"
)

var (
	// Shapes typical of autogenerated bot accounts: two capitalized word
	// fragments, optionally separated by a hyphen or underscore, with a
	// numeric suffix. e.g. "AaronSmith1234", "Aaron-Smith_1234".
	botUsernamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[A-Z][a-z]+[-_]?[A-Z][a-z]+[-_]?\d{1,8}$`),
	}

	// The platform's own default-username shape, which always carries a
	// separator between the two words. e.g. "Worldly_Heart3682",
	// "Ok-Comparison-9867".
	autogenUsernamePattern = regexp.MustCompile(`^[A-Z][A-Za-z]*[-_][A-Z][A-Za-z]*[-_]?\d{1,4}$`)
)

// MatchesBotPattern reports whether a username is even worth a full check.
// karma < 0 means the caller has no karma figure; a known karma above the
// configured maximum disqualifies immediately. Pure and stateless.
func MatchesBotPattern(cfg *config.DetectorConfig, username string, karma int) bool {
	if username == "" {
		return false
	}
	if karma >= 0 && karma > cfg.MaxKarma {
		return false
	}

	if cfg.AutogenUsernamesOnly {
		return autogenUsernamePattern.MatchString(username)
	}

	for _, pattern := range botUsernamePatterns {
		if pattern.MatchString(username) {
			return true
		}
	}
	return false
}
