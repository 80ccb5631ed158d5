package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"easychat/auth"
	"easychat/domain/event"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

const writeTimeout = 10 * time.Second

type wireChange struct {
	Kind    string          `json:"kind"`
	Message messageResponse `json:"message"`
}

type wireBatch struct {
	Changes []wireChange `json:"changes"`
}

// handleFeed establishes the long-lived realtime stream.
// Browsers cannot set headers on websocket dials, so the token is accepted
// from the "token" query parameter as well as the Authorization header.
// The feed subscription is released when the client disconnects.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		tokenStr = r.Header.Get("Authorization")
		if len(tokenStr) > 7 {
			tokenStr = tokenStr[7:] // strip "Bearer "
		}
	}
	claims, err := auth.ValidateToken(tokenStr)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sink := newWebsocketSink(conn)
	dispose := s.chat.Subscribe(sink)
	defer dispose()

	s.log.Info("feed client connected", "user_id", claims.UserID)

	// Reads are drained only to observe disconnection: the feed is one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.log.Warn(fmt.Sprintf("feed client %s disconnected", claims.UserID))
			return
		}
	}
}

// websocketSink forwards change batches to one connected client as JSON.
// Consume is only ever called from the fanout worker's goroutine, which
// satisfies gorilla's single-writer requirement.
type websocketSink struct {
	conn *websocket.Conn
}

func newWebsocketSink(conn *websocket.Conn) *websocketSink {
	return &websocketSink{conn: conn}
}

func (s *websocketSink) Consume(_ context.Context, batch event.Batch) error {
	payload, err := json.Marshal(toWireBatch(batch))
	if err != nil {
		return err
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func toWireBatch(batch event.Batch) wireBatch {
	return wireBatch{
		Changes: lo.Map(batch.Changes, func(c event.Change, _ int) wireChange {
			return wireChange{
				Kind:    string(c.Kind),
				Message: toMessageResponse(c.Message),
			}
		}),
	}
}
