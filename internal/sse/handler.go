package sse

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/Scott-fo/t3-clone/pkg/jsonutil"
)

// Handler streams one user's events as text/event-stream. chatID is an
// optional query parameter used to replay that chat's backlog on connect.
func (h *Hub) Handler(c *gin.Context) {
	userID := c.GetString("userID")
	chatID := c.Query("chatId")

	ch := h.AddClient(userID, chatID)
	defer h.TryGC(userID)
	defer h.RemoveClient(userID, ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			data, err := jsonutil.MarshalString(msg)
			if err != nil {
				return true
			}
			c.SSEvent(string(msg.Type), data)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
