package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"bot-swatter/internal/config"
)

// HTTPClient talks to the platform's JSON API.
type HTTPClient struct {
	baseURL   string
	userAgent string
	token     string
	http      *retryablehttp.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a platform client from configuration.
func NewHTTPClient(cfg *config.PlatformConfig) *HTTPClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = nil
	rc.HTTPClient.Timeout = 30 * time.Second

	return &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		token:     cfg.Token,
		http:      rc,
	}
}

// JSON wire shapes. Listings wrap typed children; the kind tag says whether
// a child is a comment (t1) or post (t3).
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Data struct {
		Children []thing `json:"children"`
		After    string  `json:"after"`
	} `json:"data"`
}

type userData struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	CreatedUTC   float64 `json:"created_utc"`
	CommentKarma int     `json:"comment_karma"`
	LinkKarma    int     `json:"link_karma"`
	IsSuspended  bool    `json:"is_suspended"`
}

type commentData struct {
	Name           string     `json:"name"`
	ParentID       string     `json:"parent_id"`
	SubredditID    string     `json:"subreddit_id"`
	Subreddit      string     `json:"subreddit"`
	Author         string     `json:"author"`
	AuthorFullname string     `json:"author_fullname"`
	Body           string     `json:"body"`
	Edited         editedFlag `json:"edited"`
	CreatedUTC     float64    `json:"created_utc"`
}

type postData struct {
	Name       string  `json:"name"`
	Subreddit  string  `json:"subreddit"`
	Author     string  `json:"author"`
	URL        string  `json:"url"`
	CreatedUTC float64 `json:"created_utc"`
}

type modActionData struct {
	ID          string  `json:"id"`
	Action      string  `json:"action"`
	Mod         string  `json:"mod"`
	TargetAuthor string `json:"target_author"`
	CreatedUTC  float64 `json:"created_utc"`
}

func (u *userData) toUser() *User {
	return &User{
		ID:           KindAccount + "_" + u.ID,
		Username:     u.Name,
		CreatedAt:    time.Unix(int64(u.CreatedUTC), 0),
		CommentKarma: u.CommentKarma,
		LinkKarma:    u.LinkKarma,
	}
}

func (c *commentData) toComment() *Comment {
	return &Comment{
		ID:            c.Name,
		ParentID:      c.ParentID,
		SubredditID:   c.SubredditID,
		SubredditName: c.Subreddit,
		Author:        c.Author,
		AuthorID:      c.AuthorFullname,
		Body:          c.Body,
		Edited:        bool(c.Edited),
		CreatedAt:     time.Unix(int64(c.CreatedUTC), 0),
	}
}

func (p *postData) toPost() *Post {
	return &Post{
		ID:            p.Name,
		SubredditName: p.Subreddit,
		Author:        p.Author,
		URL:           p.URL,
		CreatedAt:     time.Unix(int64(p.CreatedUTC), 0),
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) post(ctx context.Context, path string, form url.Values) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *retryablehttp.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *HTTPClient) UserByName(ctx context.Context, username string) (*User, error) {
	var wrapped struct {
		Data userData `json:"data"`
	}
	if err := c.get(ctx, "/user/"+url.PathEscape(username)+"/about.json", nil, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Data.Name == "" || wrapped.Data.IsSuspended {
		return nil, ErrNotFound
	}
	return wrapped.Data.toUser(), nil
}

func (c *HTTPClient) UserByID(ctx context.Context, id string) (*User, error) {
	query := url.Values{"ids": {id}}
	var byID map[string]userData
	if err := c.get(ctx, "/api/user_data_by_account_ids.json", query, &byID); err != nil {
		return nil, err
	}
	data, ok := byID[id]
	if !ok || data.Name == "" {
		return nil, ErrNotFound
	}
	// This endpoint omits the id field; the caller supplied the fullname.
	user := data.toUser()
	user.ID = id
	return user, nil
}

func (c *HTTPClient) UserContent(ctx context.Context, username string, limit int) (*UserHistory, error) {
	query := url.Values{
		"sort":  {"new"},
		"limit": {strconv.Itoa(limit)},
	}
	var lst listing
	if err := c.get(ctx, "/user/"+url.PathEscape(username)+"/overview.json", query, &lst); err != nil {
		return nil, err
	}

	history := &UserHistory{}
	for _, child := range lst.Data.Children {
		switch child.Kind {
		case KindComment:
			var cd commentData
			if err := json.Unmarshal(child.Data, &cd); err != nil {
				return nil, fmt.Errorf("decoding comment in overview: %w", err)
			}
			history.Comments = append(history.Comments, cd.toComment())
		case KindPost:
			var pd postData
			if err := json.Unmarshal(child.Data, &pd); err != nil {
				return nil, fmt.Errorf("decoding post in overview: %w", err)
			}
			history.Posts = append(history.Posts, pd.toPost())
		}
	}
	return history, nil
}

func (c *HTTPClient) RecentComments(ctx context.Context, subreddit string, limit int, before string) ([]*Comment, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if before != "" {
		query.Set("before", before)
	}
	var lst listing
	if err := c.get(ctx, "/r/"+url.PathEscape(subreddit)+"/comments.json", query, &lst); err != nil {
		return nil, err
	}

	var comments []*Comment
	for _, child := range lst.Data.Children {
		if child.Kind != KindComment {
			continue
		}
		var cd commentData
		if err := json.Unmarshal(child.Data, &cd); err != nil {
			return nil, fmt.Errorf("decoding comment listing: %w", err)
		}
		comments = append(comments, cd.toComment())
	}
	return comments, nil
}

func (c *HTTPClient) Report(ctx context.Context, commentID string, reason string) error {
	form := url.Values{
		"thing_id": {commentID},
		"reason":   {reason},
	}
	return c.post(ctx, "/api/report", form)
}

func (c *HTTPClient) Remove(ctx context.Context, commentID string, spam bool) error {
	form := url.Values{
		"id":   {commentID},
		"spam": {strconv.FormatBool(spam)},
	}
	return c.post(ctx, "/api/remove", form)
}

func (c *HTTPClient) BanUser(ctx context.Context, params BanParams) error {
	form := url.Values{
		"type":        {"banned"},
		"name":        {params.Username},
		"ban_context": {params.ContextCommentID},
		"ban_message": {params.Message},
		"ban_reason":  {params.Reason},
	}
	return c.post(ctx, "/r/"+url.PathEscape(params.Subreddit)+"/api/friend", form)
}

func (c *HTTPClient) ModerationLog(ctx context.Context, subreddit string, action string, limit int) ([]ModAction, error) {
	query := url.Values{
		"type":  {action},
		"limit": {strconv.Itoa(limit)},
	}
	var lst struct {
		Data struct {
			Children []struct {
				Data modActionData `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/r/"+url.PathEscape(subreddit)+"/about/log.json", query, &lst); err != nil {
		return nil, err
	}

	actions := make([]ModAction, 0, len(lst.Data.Children))
	for _, child := range lst.Data.Children {
		actions = append(actions, ModAction{
			ID:           child.Data.ID,
			Action:       child.Data.Action,
			Moderator:    child.Data.Mod,
			TargetAuthor: child.Data.TargetAuthor,
			CreatedAt:    time.Unix(int64(child.Data.CreatedUTC), 0),
		})
	}
	return actions, nil
}

func (c *HTTPClient) Moderators(ctx context.Context, subreddit string) ([]string, error) {
	var lst struct {
		Data struct {
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/r/"+url.PathEscape(subreddit)+"/about/moderators.json", nil, &lst); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(lst.Data.Children))
	for _, child := range lst.Data.Children {
		names = append(names, child.Name)
	}
	return names, nil
}
