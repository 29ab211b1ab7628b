package devstore

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kava/internal/models"
)

func TestCreatePostAssignsServerSideFields(t *testing.T) {
	app := setupTestServer(t).App()
	auth := registerUser(t, app, "ana", "ana@example.com")

	resp := doRequest(t, app, http.MethodPost, "/api/posts", auth.Token, map[string]any{
		"description": "  morning espresso  ",
		"rating":      5,
		"image_ref":   "img-1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeJSON(t, resp, &post)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, auth.User.ID, post.AuthorID)
	assert.Equal(t, "ana", post.AuthorUsername)
	assert.Equal(t, "morning espresso", post.Description)
	assert.False(t, post.CreatedAt.IsZero())
}

func TestCreatePostValidation(t *testing.T) {
	app := setupTestServer(t).App()
	auth := registerUser(t, app, "ana", "ana@example.com")

	resp := doRequest(t, app, http.MethodPost, "/api/posts", auth.Token, map[string]any{
		"description": "fine",
		"rating":      6,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	long := make([]byte, models.MaxDescriptionLen+1)
	for i := range long {
		long[i] = 'x'
	}
	resp = doRequest(t, app, http.MethodPost, "/api/posts", auth.Token, map[string]any{
		"description": string(long),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetPostsReturnsCountsNewestFirst(t *testing.T) {
	app := setupTestServer(t).App()
	ana := registerUser(t, app, "ana", "ana@example.com")
	bo := registerUser(t, app, "bo", "bo@example.com")

	first := createPost(t, app, ana.Token, "first")
	second := createPost(t, app, ana.Token, "second")

	resp := doRequest(t, app, http.MethodPost, "/api/posts/"+first+"/likes", bo.Token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doRequest(t, app, http.MethodPost, "/api/posts/"+first+"/comments", bo.Token, map[string]string{
		"content": "looks great",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var posts []models.Post
	decodeJSON(t, resp, &posts)
	require.Len(t, posts, 2)

	byID := map[string]models.Post{}
	for _, p := range posts {
		byID[p.ID] = p
	}
	assert.Equal(t, 1, byID[first].LikeCount)
	assert.Equal(t, 1, byID[first].CommentCount)
	assert.Zero(t, byID[second].LikeCount)
	assert.False(t, posts[0].CreatedAt.Before(posts[1].CreatedAt))
}

func TestDeletePostAuthorOnly(t *testing.T) {
	app := setupTestServer(t).App()
	ana := registerUser(t, app, "ana", "ana@example.com")
	bo := registerUser(t, app, "bo", "bo@example.com")
	postID := createPost(t, app, ana.Token, "mine")

	resp := doRequest(t, app, http.MethodDelete, "/api/posts/"+postID, bo.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var body models.ErrorResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, models.CodeForbidden, body.Code)

	resp = doRequest(t, app, http.MethodDelete, "/api/posts/"+postID, ana.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/posts", "", nil)
	var posts []models.Post
	decodeJSON(t, resp, &posts)
	assert.Empty(t, posts)
}

func TestDeleteMissingPostIsNotFound(t *testing.T) {
	app := setupTestServer(t).App()
	ana := registerUser(t, app, "ana", "ana@example.com")

	resp := doRequest(t, app, http.MethodDelete, "/api/posts/nope", ana.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteImageAlwaysSucceeds(t *testing.T) {
	app := setupTestServer(t).App()
	ana := registerUser(t, app, "ana", "ana@example.com")

	resp := doRequest(t, app, http.MethodDelete, "/api/images/img-1", ana.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestLeaderboardRanksByLikesReceived(t *testing.T) {
	app := setupTestServer(t).App()
	ana := registerUser(t, app, "ana", "ana@example.com")
	bo := registerUser(t, app, "bo", "bo@example.com")
	cy := registerUser(t, app, "cy", "cy@example.com")

	anaPost := createPost(t, app, ana.Token, "popular")
	boPost := createPost(t, app, bo.Token, "quiet")

	for _, tok := range []string{bo.Token, cy.Token} {
		resp := doRequest(t, app, http.MethodPost, "/api/posts/"+anaPost+"/likes", tok, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp := doRequest(t, app, http.MethodPost, "/api/posts/"+boPost+"/likes", ana.Token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []models.LeaderboardEntry
	decodeJSON(t, resp, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, models.LeaderboardEntry{Username: "ana", LikeCount: 2}, entries[0])
	assert.Equal(t, models.LeaderboardEntry{Username: "bo", LikeCount: 1}, entries[1])
}
