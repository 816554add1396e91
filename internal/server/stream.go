package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Stream message types.
const (
	msgMore  = "more"
	msgPage  = "page"
	msgDone  = "done"
	msgError = "error"
)

const (
	streamWriteWait = 10 * time.Second
	streamIdleWait  = 2 * time.Minute
	streamReadLimit = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// StreamRequest is sent by the client to ask for the next page.
type StreamRequest struct {
	Type string `json:"type"`
}

// StreamMessage is sent by the server.
type StreamMessage struct {
	Type  string        `json:"type"`
	Page  *ListResponse `json:"page,omitempty"`
	Error string        `json:"error,omitempty"`
}

// handleDayStream feeds a month/day page by page over a WebSocket. The
// client sends {"type":"more"} for each page; after the last page the
// server sends {"type":"done"} and closes.
func (s *Server) handleDayStream(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseList(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, day, err := monthDay(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Load before upgrading so bad dates and upstream failures get a status code.
	events, err := s.q.Day(r.Context(), month, day)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Upgrade writes its own handshake, so headers set on w are not sent.
	header := http.Header{RequestIDHeader: []string{RequestID(r.Context())}}
	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		// Upgrade already wrote the error response.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(streamReadLimit)

	logger := s.logger.With("request_id", RequestID(r.Context()), "month", month, "day", day)
	logger.Debug("stream opened", "events", len(events))

	for {
		conn.SetReadDeadline(time.Now().Add(streamIdleWait))
		var req StreamRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				logger.Debug("stream read ended", "error", err)
			}
			return
		}

		if req.Type != msgMore {
			if err := s.sendStream(conn, StreamMessage{Type: msgError, Error: "unknown message type " + req.Type}); err != nil {
				return
			}
			continue
		}

		page := params.render(events)
		if err := s.sendStream(conn, StreamMessage{Type: msgPage, Page: &page}); err != nil {
			logger.Debug("stream write failed", "error", err)
			return
		}
		params.Offset += len(page.Events)

		if !page.HasMore {
			s.sendStream(conn, StreamMessage{Type: msgDone})
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(streamWriteWait))
			logger.Debug("stream complete", "sent", params.Offset)
			return
		}
	}
}

func (s *Server) sendStream(conn *websocket.Conn, msg StreamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(msg)
}
