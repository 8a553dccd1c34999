package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/speechpal-backend/internal/requestdata"
	"github.com/yungbote/speechpal-backend/internal/sse"
)

type SSEHandler struct {
	hub *sse.SSEHub
}

func NewSSEHandler(hub *sse.SSEHub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream subscribes the caller to their own progress channel and holds the
// connection open until the client disconnects.
func (sh *SSEHandler) Stream(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	client := sh.hub.NewSSEClient(userID)
	sh.hub.AddChannel(client, userID.String())
	defer sh.hub.CloseClient(client)

	sh.hub.ServeHTTP(c.Writer, c.Request, client)
}
