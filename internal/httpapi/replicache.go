package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/sync"
	"github.com/Scott-fo/t3-clone/pkg/core"
)

type replicacheHandler struct {
	puller *sync.Puller
	pusher *sync.Pusher
}

func newReplicacheHandler(puller *sync.Puller, pusher *sync.Pusher) *replicacheHandler {
	return &replicacheHandler{puller: puller, pusher: pusher}
}

func (h *replicacheHandler) Pull(c *gin.Context) {
	var req domain.PullRequest
	if err := bindJSON(c, &req); err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	resp, err := h.puller.Pull(c.Request.Context(), userIDFrom(c), req)
	core.WriteResponse(c, err, resp)
}

func (h *replicacheHandler) Push(c *gin.Context) {
	var req domain.PushRequest
	if err := bindJSON(c, &req); err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	resp, err := h.pusher.Push(c.Request.Context(), userIDFrom(c), req)
	core.WriteResponse(c, err, resp)
}
