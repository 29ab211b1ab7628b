// Package remote implements the feed.Store contract against the hosted
// store's HTTP API, plus the websocket change subscription.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"kava/internal/models"
	"kava/internal/observability"
)

// Client talks to the remote store. It is safe for concurrent use once the
// session is established; Login/Register mutate the held token and are
// expected to run before the sync machinery starts.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	profile models.Profile
	log     *observability.Logger
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     observability.Component("remote"),
	}
}

type authResponse struct {
	Token string         `json:"token"`
	User  models.Profile `json:"user"`
}

// Register creates an account and signs in.
func (c *Client) Register(ctx context.Context, username, email, password string) (models.Profile, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &resp); err != nil {
		return models.Profile{}, err
	}
	c.token = resp.Token
	c.profile = resp.User
	return resp.User, nil
}

// Login authenticates and stores the session token for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (models.Profile, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return models.Profile{}, err
	}
	c.token = resp.Token
	c.profile = resp.User
	return resp.User, nil
}

// Profile returns the signed-in user, zero-valued when signed out.
func (c *Client) Profile() models.Profile {
	return c.profile
}

func (c *Client) FetchPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) FetchLikedPostIDs(ctx context.Context) ([]string, error) {
	var resp struct {
		PostIDs []string `json:"post_ids"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/likes/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.PostIDs, nil
}

func (c *Client) FetchComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	path := "/api/posts/" + url.PathEscape(postID) + "/comments"
	if err := c.do(ctx, http.MethodGet, path, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) FetchLikeCount(ctx context.Context, postID string) (int, error) {
	return c.fetchCount(ctx, "/api/posts/"+url.PathEscape(postID)+"/likes/count")
}

func (c *Client) FetchCommentCount(ctx context.Context, postID string) (int, error) {
	return c.fetchCount(ctx, "/api/posts/"+url.PathEscape(postID)+"/comments/count")
}

func (c *Client) fetchCount(ctx context.Context, path string) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) FetchHasLike(ctx context.Context, postID string) (bool, error) {
	var resp struct {
		Liked bool `json:"liked"`
	}
	path := "/api/posts/" + url.PathEscape(postID) + "/likes/me"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Liked, nil
}

func (c *Client) CreatePost(ctx context.Context, description string, rating int, imageRef string) error {
	body := map[string]any{
		"description": description,
		"rating":      rating,
		"image_ref":   imageRef,
	}
	return c.do(ctx, http.MethodPost, "/api/posts", body, nil)
}

func (c *Client) AddLike(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/likes", nil, nil)
}

func (c *Client) RemoveLike(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(postID)+"/likes", nil, nil)
}

func (c *Client) AddComment(ctx context.Context, postID, content string) error {
	body := map[string]string{"content": content}
	return c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/comments", body, nil)
}

func (c *Client) RemoveComment(ctx context.Context, commentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/comments/"+url.PathEscape(commentID), nil, nil)
}

func (c *Client) RemovePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(postID), nil, nil)
}

func (c *Client) RemoveImage(ctx context.Context, imageRef string) error {
	return c.do(ctx, http.MethodDelete, "/api/images/"+url.PathEscape(imageRef), nil, nil)
}

// FetchLeaderboard returns authors ranked by total likes received.
func (c *Client) FetchLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, "/api/leaderboard", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// do issues one JSON request. Non-2xx statuses are mapped onto the shared
// error taxonomy so callers can branch on authentication and ownership
// failures without knowing HTTP.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.statusError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	var remote models.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&remote)
	msg := remote.Error
	if msg == "" {
		msg = fmt.Sprintf("remote returned %d", resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return models.NewUnauthenticatedError(msg)
	case http.StatusForbidden:
		return models.NewForbiddenError(msg)
	case http.StatusNotFound:
		return &models.AppError{Code: models.CodeNotFound, Message: msg}
	case http.StatusBadRequest, http.StatusConflict:
		return models.NewValidationError(msg)
	default:
		return fmt.Errorf("%s (status %d)", msg, resp.StatusCode)
	}
}
