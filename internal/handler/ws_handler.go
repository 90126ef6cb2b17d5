package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/config"
	"github.com/Rahmadjon0038/avto-test-backend/internal/middleware"
	"github.com/Rahmadjon0038/avto-test-backend/internal/service"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsTickInterval = time.Second
)

// WSHandler streams the live exam countdown over a websocket. The stream
// rides the same lazy-expiry path as the HTTP endpoints: once the deadline
// passes, the session is auto-scored and the final result is pushed as the
// last frame.
type WSHandler struct {
	exams    *service.ExamService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(exams *service.ExamService, cfg *config.Config, log zerolog.Logger) *WSHandler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = true
	}
	return &WSHandler{
		exams: exams,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
		log: log.With().Str("component", "ws_handler").Logger(),
	}
}

type timerEvent struct {
	Type          string             `json:"type"` // tick | expired | closed
	RemainingTime int                `json:"remaining_time,omitempty"`
	AnsweredCount int                `json:"answered_count,omitempty"`
	Result        *service.ExamScore `json:"result,omitempty"`
}

// ExamTimer handles GET /ws/v1/exam/:exam_id/timer.
func (h *WSHandler) ExamTimer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := paramID(c, "exam_id")
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Read pump: we expect no client frames, but reading is what surfaces
	// the close handshake.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(wsTickInterval)
	defer ticker.Stop()

	for {
		if !h.sendState(ctx, conn, claims.UserID, examID) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sendState pushes one frame; false means the stream is finished.
func (h *WSHandler) sendState(ctx context.Context, conn *websocket.Conn, userID, examID int) bool {
	state, err := h.exams.State(ctx, userID, examID)
	if err != nil {
		var expired *service.ExamExpiredError
		switch {
		case errors.As(err, &expired):
			h.writeEvent(conn, timerEvent{Type: "expired", Result: &expired.Result})
		case errors.Is(err, service.ErrSessionNotFound):
			h.writeEvent(conn, timerEvent{Type: "closed"})
		default:
			h.log.Error().Err(err).Int("exam_id", examID).Msg("timer state failed")
		}
		return false
	}

	return h.writeEvent(conn, timerEvent{
		Type:          "tick",
		RemainingTime: state.RemainingTime,
		AnsweredCount: state.AnsweredCount,
	})
}

func (h *WSHandler) writeEvent(conn *websocket.Conn, ev timerEvent) bool {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(ev) == nil
}
