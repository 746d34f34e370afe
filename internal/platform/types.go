package platform

import (
	"encoding/json"
	"strings"
	"time"
)

// Fullname prefixes used by the platform to tag object kinds.
const (
	KindComment   = "t1"
	KindAccount   = "t2"
	KindPost      = "t3"
	KindSubreddit = "t5"
)

// User is a read-only snapshot of an account's public profile.
type User struct {
	ID           string
	Username     string
	CreatedAt    time.Time
	CommentKarma int
	LinkKarma    int
}

// Comment is a read-only snapshot of a single comment.
type Comment struct {
	ID            string // fullname, t1_ prefixed
	ParentID      string // fullname of parent comment or post
	SubredditID   string
	SubredditName string
	Author        string
	AuthorID      string
	Body          string
	Edited        bool
	CreatedAt     time.Time
}

// IsReply reports whether the comment's parent is another comment rather
// than a post.
func (c *Comment) IsReply() bool {
	return IsCommentID(c.ParentID)
}

// Post is a read-only snapshot of a single post.
type Post struct {
	ID            string // fullname, t3_ prefixed
	SubredditName string
	Author        string
	URL           string
	CreatedAt     time.Time
}

// UserHistory holds a user's most recent comments and posts, newest first.
type UserHistory struct {
	Comments []*Comment
	Posts    []*Post
}

// ModAction is a single entry from a community's moderation log.
type ModAction struct {
	ID           string
	Action       string
	Moderator    string
	TargetAuthor string
	CreatedAt    time.Time
}

// BanParams carries everything needed to ban a user from a community.
type BanParams struct {
	Subreddit        string
	Username         string
	ContextCommentID string
	Message          string
	Reason           string
}

// IsCommentID reports whether a fullname identifies a comment.
func IsCommentID(id string) bool {
	return strings.HasPrefix(id, KindComment+"_")
}

// IsPostID reports whether a fullname identifies a post.
func IsPostID(id string) bool {
	return strings.HasPrefix(id, KindPost+"_")
}

// editedFlag handles the API's edited field, which is either false or an
// edit timestamp.
type editedFlag bool

func (e *editedFlag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*e = editedFlag(b)
		return nil
	}
	var ts float64
	if err := json.Unmarshal(data, &ts); err != nil {
		return err
	}
	*e = ts > 0
	return nil
}
