package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"discovery-api/internal/middleware"
	"discovery-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 8 << 10
)

// Client message types.
const (
	MessageFilters   = "filters"
	MessageToggleTag = "toggle_tag"
	MessageRetry     = "retry"
)

// SearchSession is one client's live search state.
type SearchSession interface {
	Apply(context.Context, models.Filters) error
	ToggleTag(context.Context, string) error
	Retry(context.Context) error
	Close()
}

// SessionFactory opens a session that reports through emit.
type SessionFactory func(emit func(models.SessionEvent)) SearchSession

// ClientMessage is a message sent by a search session client.
type ClientMessage struct {
	Type    string         `json:"type"`
	Filters models.Filters `json:"filters"`
	Tag     string         `json:"tag,omitempty"`
}

// SessionHandler upgrades clients to websocket search sessions.
type SessionHandler struct {
	open     SessionFactory
	upgrader websocket.Upgrader
}

// NewSessionHandler creates a session handler. An empty origin list allows
// every origin.
func NewSessionHandler(open SessionFactory, allowedOrigins []string) *SessionHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return &SessionHandler{
		open: open,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				if _, ok := allowed["*"]; ok {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Serve handles GET /ws/search requests
//
//	@Summary	Open a live search session
//	@Tags		search
//	@Success	101
//	@Router		/ws/search [get]
func (h *SessionHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.With().Str("request_id", middleware.GetRequestID(c.Request.Context())).Logger()

	var writeMu sync.Mutex
	emit := func(ev models.SessionEvent) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			logger.Debug().Err(err).Str("event", ev.Type).Msg("session write failed")
		}
	}

	sess := h.open(emit)
	defer sess.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("session closed unexpectedly")
			}
			return
		}

		if err := h.dispatch(ctx, sess, msg, emit); err != nil {
			logger.Debug().Err(err).Str("message", msg.Type).Msg("session message failed")
		}
	}
}

func (h *SessionHandler) dispatch(ctx context.Context, sess SearchSession, msg ClientMessage, emit func(models.SessionEvent)) error {
	switch msg.Type {
	case MessageFilters:
		return sess.Apply(ctx, msg.Filters)
	case MessageToggleTag:
		return sess.ToggleTag(ctx, msg.Tag)
	case MessageRetry:
		return sess.Retry(ctx)
	default:
		emit(models.SessionEvent{Type: models.EventError, Error: "unknown message type"})
		return nil
	}
}
