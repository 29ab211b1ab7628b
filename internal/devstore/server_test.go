package devstore

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"kava/internal/config"
)

// setupTestServer builds a server over in-memory sqlite, without Redis.
// Change events are then dropped, which the handlers treat as normal.
func setupTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		DBDriver:  "sqlite",
		DBPath:    ":memory:",
		JWTSecret: "test-secret",
	}
	db, err := Connect(cfg)
	require.NoError(t, err)
	return NewServerWithDeps(cfg, db, nil)
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

type authResult struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

// registerUser registers an account and returns the session token and id.
func registerUser(t *testing.T, app *fiber.App, username, email string) authResult {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out authResult
	decodeJSON(t, resp, &out)
	require.NotEmpty(t, out.Token)
	require.NotEmpty(t, out.User.ID)
	return out
}

// createPost creates a post as the given user and returns its id.
func createPost(t *testing.T, app *fiber.App, token, description string) string {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/posts", token, map[string]any{
		"description": description,
		"rating":      4,
		"image_ref":   "img-test",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &post)
	require.NotEmpty(t, post.ID)
	return post.ID
}

func TestHealthCheck(t *testing.T) {
	app := setupTestServer(t).App()
	resp := doRequest(t, app, http.MethodGet, "/api/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeJSON(t, resp, &body)
	require.Equal(t, "ok", body["status"])
}
