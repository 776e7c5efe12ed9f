package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/errors"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/middleware"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/broadcast"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// WebsocketHandlers streams live readiness updates to dashboard clients
type WebsocketHandlers struct {
	hub    *broadcast.Hub
	logger *logging.Logger
}

// NewWebsocketHandlers creates a new WebsocketHandlers
func NewWebsocketHandlers(hub *broadcast.Hub, logger *logging.Logger) *WebsocketHandlers {
	return &WebsocketHandlers{
		hub:    hub,
		logger: logger,
	}
}

// RegisterRoutes registers websocket routes on the router
func (h *WebsocketHandlers) RegisterRoutes(router *gin.Engine) {
	router.GET("/ws/readiness/:unitId", h.StreamUnitReadiness)
}

// StreamUnitReadiness upgrades the connection and pushes readiness
// frames for one unit until the client disconnects. The subscription
// is taken before the upgrade so an unknown unit still gets a JSON
// error response.
func (h *WebsocketHandlers) StreamUnitReadiness(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	unitID := c.Param("unitId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"unit.id": unitID,
	})

	sub, err := h.hub.Subscribe(c.Request.Context(), unitID)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.Unsubscribe(sub)
		h.logger.WithError(err).Warn("Failed to upgrade websocket", "unitId", unitID)
		return
	}
	defer conn.Close()
	defer h.hub.Unsubscribe(sub)

	h.logger.Info("Websocket client connected", "unitId", unitID)

	// Read loop exists only to notice the client going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case frame, ok := <-sub.Messages():
			if !ok {
				// Hub closed the subscription (shutdown or pruning)
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "subscription closed"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.logger.Info("Websocket client disconnected", "unitId", unitID, "error", err.Error())
				return
			}
		case <-done:
			h.logger.Info("Websocket client disconnected", "unitId", unitID)
			return
		}
	}
}
