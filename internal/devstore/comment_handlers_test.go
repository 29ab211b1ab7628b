package devstore

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kava/internal/models"
)

func postComment(t *testing.T, app *fiber.App, token, postID, content string) models.Comment {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/posts/"+postID+"/comments", token, map[string]string{
		"content": content,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.Comment
	decodeJSON(t, resp, &comment)
	require.NotEmpty(t, comment.ID)
	return comment
}

func TestCreateCommentTrimsAndAssignsAuthor(t *testing.T) {
	app := setupTestServer(t).App()
	ana := registerUser(t, app, "ana", "ana@example.com")
	postID := createPost(t, app, ana.Token, "flat white")

	comment := postComment(t, app, ana.Token, postID, "  lovely crema  ")
	assert.Equal(t, "lovely crema", comment.Content)
	assert.Equal(t, ana.User.ID, comment.AuthorID)
	assert.Equal(t, "ana", comment.AuthorUsername)
	assert.Equal(t, postID, comment.PostID)
}

func TestCreateCommentValidation(t *testing.T) {
	app := setupTestServer(t).App()
	ana := registerUser(t, app, "ana", "ana@example.com")
	postID := createPost(t, app, ana.Token, "flat white")

	for _, content := range []string{"", "   ", "\n\t"} {
		resp := doRequest(t, app, http.MethodPost, "/api/posts/"+postID+"/comments", ana.Token, map[string]string{
			"content": content,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	long := make([]byte, models.MaxCommentLen+1)
	for i := range long {
		long[i] = 'x'
	}
	resp := doRequest(t, app, http.MethodPost, "/api/posts/"+postID+"/comments", ana.Token, map[string]string{
		"content": string(long),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPost, "/api/posts/missing/comments", ana.Token, map[string]string{
		"content": "hello",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetCommentsOldestFirst(t *testing.T) {
	app := setupTestServer(t).App()
	ana := registerUser(t, app, "ana", "ana@example.com")
	postID := createPost(t, app, ana.Token, "flat white")

	first := postComment(t, app, ana.Token, postID, "first")
	second := postComment(t, app, ana.Token, postID, "second")

	resp := doRequest(t, app, http.MethodGet, "/api/posts/"+postID+"/comments", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var comments []models.Comment
	decodeJSON(t, resp, &comments)
	require.Len(t, comments, 2)
	assert.Equal(t, []string{first.ID, second.ID}, []string{comments[0].ID, comments[1].ID})

	resp = doRequest(t, app, http.MethodGet, "/api/posts/"+postID+"/comments/count", "", nil)
	var count struct {
		Count int `json:"count"`
	}
	decodeJSON(t, resp, &count)
	assert.Equal(t, 2, count.Count)
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	app := setupTestServer(t).App()
	ana := registerUser(t, app, "ana", "ana@example.com")
	bo := registerUser(t, app, "bo", "bo@example.com")
	postID := createPost(t, app, ana.Token, "flat white")
	comment := postComment(t, app, bo.Token, postID, "mine")

	resp := doRequest(t, app, http.MethodDelete, "/api/comments/"+comment.ID, ana.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, app, http.MethodDelete, "/api/comments/"+comment.ID, bo.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, http.MethodDelete, "/api/comments/"+comment.ID, bo.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
