// internal/handlers/stream/stream_handler.go
package stream

import (
	"net/http"

	"loyaltystudio-service/internal/middleware"
	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamHandler upgrades authenticated connections onto the merchant's
// event stream (webhook delivery results and live activity).
type StreamHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewStreamHandler(hub *ws.Hub, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		hub:    hub,
		logger: logger,
	}
}

// Connect upgrades the request and serves it until the client disconnects.
// Browsers cannot set Authorization headers on websocket dials, so auth
// middleware also accepts a token query parameter on this route.
func (h *StreamHandler) Connect(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to upgrade connection", err)
		return
	}

	h.logger.Debug("stream connected", zap.String("merchant_id", merchantID))
	ws.Serve(h.hub, conn, merchantID, h.logger)
}
