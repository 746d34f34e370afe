package detector

import (
	"context"
	"sync"
	"time"

	"bot-swatter/internal/config"
	"bot-swatter/internal/platform"
)

// fakeClient is a scripted platform client for tests. It records every
// enforcement call it receives.
type fakeClient struct {
	mu sync.Mutex

	usersByName map[string]*platform.User
	usersByID   map[string]*platform.User
	histories   map[string]*platform.UserHistory
	modLog      []platform.ModAction

	lookupCalls  int
	historyCalls int

	reported []string
	removed  []string
	banned   []platform.BanParams
}

var _ platform.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		usersByName: make(map[string]*platform.User),
		usersByID:   make(map[string]*platform.User),
		histories:   make(map[string]*platform.UserHistory),
	}
}

func (f *fakeClient) addUser(user *platform.User, history *platform.UserHistory) {
	f.usersByName[user.Username] = user
	f.usersByID[user.ID] = user
	f.histories[user.Username] = history
}

func (f *fakeClient) UserByID(ctx context.Context, id string) (*platform.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupCalls++
	user, ok := f.usersByID[id]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return user, nil
}

func (f *fakeClient) UserByName(ctx context.Context, username string) (*platform.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupCalls++
	user, ok := f.usersByName[username]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return user, nil
}

func (f *fakeClient) UserContent(ctx context.Context, username string, limit int) (*platform.UserHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls++
	history, ok := f.histories[username]
	if !ok {
		return &platform.UserHistory{}, nil
	}
	return history, nil
}

func (f *fakeClient) RecentComments(ctx context.Context, subreddit string, limit int, before string) ([]*platform.Comment, error) {
	return nil, nil
}

func (f *fakeClient) Report(ctx context.Context, commentID string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reported = append(f.reported, commentID)
	return nil
}

func (f *fakeClient) Remove(ctx context.Context, commentID string, spam bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, commentID)
	return nil
}

func (f *fakeClient) BanUser(ctx context.Context, params platform.BanParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned = append(f.banned, params)
	return nil
}

func (f *fakeClient) ModerationLog(ctx context.Context, subreddit string, action string, limit int) ([]platform.ModAction, error) {
	return f.modLog, nil
}

func (f *fakeClient) Moderators(ctx context.Context, subreddit string) ([]string, error) {
	return []string{"mod1"}, nil
}

// Test fixture helpers.

const testSubreddit = "testsub"

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Platform.Subreddit = testSubreddit
	return cfg
}

func testUser(username string, ageMonths int, commentKarma int) *platform.User {
	return &platform.User{
		ID:           "t2_" + username,
		Username:     username,
		CreatedAt:    time.Now().AddDate(0, -ageMonths, 0),
		CommentKarma: commentKarma,
	}
}

func topLevelComment(id, subreddit, author, body string) *platform.Comment {
	return &platform.Comment{
		ID:            "t1_" + id,
		ParentID:      "t3_post" + id,
		SubredditID:   "t5_" + subreddit,
		SubredditName: subreddit,
		Author:        author,
		AuthorID:      "t2_" + author,
		Body:          body,
		CreatedAt:     time.Now(),
	}
}

func replyComment(id, subreddit, author, body string) *platform.Comment {
	c := topLevelComment(id, subreddit, author, body)
	c.ParentID = "t1_parent" + id
	return c
}

// botLikeHistory builds a history with n short top-level comments in n
// distinct communities, the first of them in the guarded community.
func botLikeHistory(author string, n int) *platform.UserHistory {
	history := &platform.UserHistory{}
	for i := 0; i < n; i++ {
		sub := testSubreddit
		if i > 0 {
			sub = "othersub" + string(rune('a'+i))
		}
		history.Comments = append(history.Comments, topLevelComment(string(rune('a'+i)), sub, author, "Great point, totally agree with this."))
	}
	return history
}
