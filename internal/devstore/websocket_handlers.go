package devstore

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChangesHandler upgrades to a websocket and streams change events to the
// client until it disconnects. Clients authenticate with a token query
// parameter since websocket clients cannot set headers portably.
func (s *Server) ChangesHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		token := conn.Query("token")
		if token == "" {
			if werr := conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"token required"}`)); werr != nil {
				log.Printf("websocket write error: %v", werr)
			}
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}

		userID, username, err := s.validateToken(token)
		if err != nil {
			if werr := conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`)); werr != nil {
				log.Printf("websocket write error: %v", werr)
			}
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}

		log.Printf("change feed: user %s (%s) connected", userID, username)
		s.hub.Register(conn)
		defer func() {
			s.hub.Unregister(conn)
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
		}()

		// The stream is one-way; reads only detect disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
