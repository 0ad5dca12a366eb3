package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

const restPrefix = "/rest/v1"

const postColumns = "id,user_id,content,media_url,likes_count,broken_hearts_count,reposts_count,views_count,comments_count,is_pinned,created_at,updated_at"

const authorColumns = "id,username,display_name,avatar_url,is_private"

// Sort orders accepted by PostQuery.OrderBy.
const (
	OrderNewest = "created_at"
	OrderLikes  = "likes_count"
)

// Client issues queries and edge writes against the backend REST API.
type Client struct {
	http *resty.Client
}

// NewClient wraps an already configured resty client.
func NewClient(http *resty.Client) *Client {
	return &Client{http: http}
}

// PostQuery is a filter/sort/limit over posts joined to their author.
type PostQuery struct {
	IDs        []string
	AuthorIDs  []string
	Since      time.Time
	Search     string
	OrderBy    string
	Limit      int
	PublicOnly bool
}

func (q PostQuery) params() map[string]string {
	embed := "author:profiles(" + authorColumns + ")"
	if q.PublicOnly {
		// !inner turns the embed filter into a filter on posts.
		embed = "author:profiles!inner(" + authorColumns + ")"
	}
	params := map[string]string{
		"select": postColumns + "," + embed,
	}
	if q.PublicOnly {
		params["author.is_private"] = "eq.false"
	}
	if len(q.IDs) > 0 {
		params["id"] = inList(q.IDs)
	}
	if len(q.AuthorIDs) > 0 {
		params["user_id"] = inList(q.AuthorIDs)
	}
	if !q.Since.IsZero() {
		params["created_at"] = "gte." + q.Since.UTC().Format(time.RFC3339)
	}
	if q.Search != "" {
		params["content"] = "ilike.*" + q.Search + "*"
	}
	if q.OrderBy != "" {
		params["order"] = q.OrderBy + ".desc"
	}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	return params
}

func inList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
	}
	return "in.(" + strings.Join(quoted, ",") + ")"
}

func eq(v string) string {
	return "eq." + v
}

// ListPosts runs a post query.
func (c *Client) ListPosts(ctx context.Context, q PostQuery) ([]Post, error) {
	logger.Debug("Listing posts", "order", q.OrderBy, "limit", q.Limit, "authors", len(q.AuthorIDs))

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(q.params()).
		Get(restPrefix + "/posts")
	if err := CheckResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	var posts []Post
	if err := json.Unmarshal(resp.Body(), &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

// GetPost fetches a single post by id.
func (c *Client) GetPost(ctx context.Context, postID string) (*Post, error) {
	posts, err := c.ListPosts(ctx, PostQuery{IDs: []string{postID}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, &APIError{Code: "not_found", Message: "post " + postID + " not found", StatusCode: 404}
	}
	return &posts[0], nil
}

// SearchPosts returns the newest posts whose content contains query.
func (c *Client) SearchPosts(ctx context.Context, query string, limit int) ([]Post, error) {
	return c.ListPosts(ctx, PostQuery{Search: query, OrderBy: OrderNewest, Limit: limit})
}

// FollowingIDs returns the ids of every author followerID follows.
func (c *Client) FollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	logger.Debug("Fetching follows", "follower_id", followerID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select":      "following_id",
			"follower_id": eq(followerID),
		}).
		Get(restPrefix + "/follows")
	if err := CheckResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to fetch follows: %w", err)
	}

	var rows []followRow
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode follows: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.FollowingID)
	}
	return ids, nil
}

// GetProfile fetches one author profile.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Author, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": authorColumns,
			"id":     eq(userID),
			"limit":  "1",
		}).
		Get(restPrefix + "/profiles")
	if err := CheckResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	var rows []Author
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, &APIError{Code: "not_found", Message: "profile " + userID + " not found", StatusCode: 404}
	}
	return &rows[0], nil
}
