package platform

import (
	"context"
	"errors"

	"bot-swatter/internal/logger"
)

// ErrNotFound is returned for accounts that are deleted, suspended or
// shadow-banned, and for any other object the platform will not serve.
var ErrNotFound = errors.New("platform: not found")

// Client is the read/act surface of the platform API consumed by the
// detection engine.
type Client interface {
	// UserByID fetches a user by durable account id (t2_ fullname).
	UserByID(ctx context.Context, id string) (*User, error)
	// UserByName fetches a user by username.
	UserByName(ctx context.Context, username string) (*User, error)
	// UserContent fetches up to limit of the user's most recent comments
	// and posts, newest first.
	UserContent(ctx context.Context, username string, limit int) (*UserHistory, error)
	// RecentComments lists the newest comments in a community. If before is
	// non-empty only comments newer than that fullname are returned.
	RecentComments(ctx context.Context, subreddit string, limit int, before string) ([]*Comment, error)

	Report(ctx context.Context, commentID string, reason string) error
	Remove(ctx context.Context, commentID string, spam bool) error
	BanUser(ctx context.Context, params BanParams) error

	// ModerationLog lists recent moderation actions of one type, newest first.
	ModerationLog(ctx context.Context, subreddit string, action string, limit int) ([]ModAction, error)
	Moderators(ctx context.Context, subreddit string) ([]string, error)
}

// LookupStatus classifies the outcome of a user lookup.
type LookupStatus int

const (
	LookupFound LookupStatus = iota
	// LookupMissing means the account is deleted, suspended or shadow-banned.
	LookupMissing
	// LookupFailed means the request itself failed. Most callers treat this
	// the same as LookupMissing (a missed check is preferred over cascading
	// failure); callers that destroy state on a missing account must not.
	LookupFailed
)

// Gone reports whether the lookup produced no usable account.
func (s LookupStatus) Gone() bool {
	return s != LookupFound
}

// LookupUserByName fetches a user by name, coercing transient errors into a
// typed status instead of surfacing them.
func LookupUserByName(ctx context.Context, client Client, username string) (*User, LookupStatus) {
	user, err := client.UserByName(ctx, username)
	return lookupResult(username, user, err)
}

// LookupUserByID fetches a user by durable id, with the same coercion.
func LookupUserByID(ctx context.Context, client Client, id string) (*User, LookupStatus) {
	user, err := client.UserByID(ctx, id)
	return lookupResult(id, user, err)
}

func lookupResult(who string, user *User, err error) (*User, LookupStatus) {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, LookupMissing
		}
		logger.Warningf("%s: user lookup failed, treating as inaccessible: %v", who, err)
		return nil, LookupFailed
	}
	return user, LookupFound
}
