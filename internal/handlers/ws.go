package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/speechpal-backend/internal/requestdata"
	"github.com/yungbote/speechpal-backend/internal/ws"
)

type WSHandler struct {
	socket *ws.SpeechSocket
}

func NewWSHandler(socket *ws.SpeechSocket) *WSHandler {
	return &WSHandler{socket: socket}
}

func (wh *WSHandler) Speech(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	wh.socket.Serve(c.Request.Context(), c.Writer, c.Request, userID)
}
