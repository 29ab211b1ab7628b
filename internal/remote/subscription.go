package remote

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"kava/internal/models"
	"kava/internal/observability"
)

// Subscription is a live websocket change feed from the store. Events ends
// when the connection drops or Close is called; there is no automatic
// reconnect — the polling fallback covers gaps.
type Subscription struct {
	conn   *websocket.Conn
	events chan models.ChangeEvent
	done   chan struct{}
	once   sync.Once
	log    *observability.Logger
}

// SubscribeChanges opens the change subscription using the current session
// token.
func (c *Client) SubscribeChanges(ctx context.Context) (*Subscription, error) {
	wsURL := httpToWS(c.baseURL) + "/api/changes?token=" + c.token

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == 401 {
			return nil, models.NewUnauthenticatedError("change subscription rejected")
		}
		return nil, err
	}

	s := &Subscription{
		conn:   conn,
		events: make(chan models.ChangeEvent, 16),
		done:   make(chan struct{}),
		log:    observability.Component("subscription"),
	}
	go s.readLoop()
	return s, nil
}

func (s *Subscription) Events() <-chan models.ChangeEvent {
	return s.events
}

// Close tears the subscription down. Safe to call more than once and from
// any goroutine.
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteMessage(websocket.CloseMessage, msg)
		err = s.conn.Close()
	})
	return err
}

func (s *Subscription) readLoop() {
	defer close(s.events)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.log.Warn("change subscription dropped", "error", err)
			}
			return
		}

		var ev models.ChangeEvent
		if err := json.Unmarshal(raw, &ev); err != nil || ev.Table == "" {
			// Malformed payloads are skipped, not fatal; the poll path
			// repairs anything missed.
			s.log.Warn("malformed change payload", "error", err)
			continue
		}

		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

func httpToWS(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}
