package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kava/internal/models"
)

// newChangeServer serves /api/changes over websocket and writes each of the
// given payloads to the first client that connects.
func newChangeServer(t *testing.T, payloads []string) (*httptest.Server, chan string) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	tokens := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/changes" {
			http.NotFound(w, r)
			return
		}
		tokens <- r.URL.Query().Get("token")
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for _, p := range payloads {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(p)))
		}
		// Hold the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, tokens
}

func recvEvent(t *testing.T, ch <-chan models.ChangeEvent) models.ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "event stream closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
		return models.ChangeEvent{}
	}
}

func TestSubscribeChangesDecodesEvents(t *testing.T) {
	srv, tokens := newChangeServer(t, []string{
		`{"table":"likes","event":"insert","new":{"id":"l1","post_id":"p1"}}`,
	})
	c := NewClient(srv.URL)
	c.token = "tok-1"

	sub, err := c.SubscribeChanges(context.Background())
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, "tok-1", <-tokens)

	ev := recvEvent(t, sub.Events())
	assert.Equal(t, models.TableLikes, ev.Table)
	assert.Equal(t, models.ChangeInsert, ev.Kind)
	require.NotNil(t, ev.New)
	assert.Equal(t, "p1", ev.New.PostID)
}

func TestSubscriptionSkipsMalformedPayloads(t *testing.T) {
	srv, _ := newChangeServer(t, []string{
		`not json at all`,
		`{"event":"insert"}`,
		`{"table":"comments","event":"delete","old":{"id":"c1"}}`,
	})
	c := NewClient(srv.URL)
	c.token = "tok-1"

	sub, err := c.SubscribeChanges(context.Background())
	require.NoError(t, err)
	defer sub.Close()

	ev := recvEvent(t, sub.Events())
	assert.Equal(t, models.TableComments, ev.Table)
	require.NotNil(t, ev.Old)
	assert.Equal(t, "c1", ev.Old.ID)
}

func TestSubscriptionCloseEndsEventStream(t *testing.T) {
	srv, _ := newChangeServer(t, nil)
	c := NewClient(srv.URL)
	c.token = "tok-1"

	sub, err := c.SubscribeChanges(context.Background())
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	assert.NoError(t, sub.Close(), "close is idempotent")

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("event stream did not close")
	}
}

func TestSubscribeChangesRejectedWithoutValidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL)

	_, err := c.SubscribeChanges(context.Background())
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
}
