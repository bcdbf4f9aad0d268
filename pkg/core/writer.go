// Package core centralizes how handlers turn a (error, data) pair into an
// HTTP response, so every handler body ends the same way regardless of
// which errorx.Kind it returns.
package core

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Scott-fo/t3-clone/pkg/errorx"
	"github.com/Scott-fo/t3-clone/pkg/logger"
)

type response struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteResponse writes err as a {message} body at the status errorx.Kind
// maps to, or data as a 200 {data} body when err is nil.
func WriteResponse(c *gin.Context, err error, data any) {
	if err == nil {
		c.JSON(http.StatusOK, response{Data: data})
		return
	}

	kind := errorx.KindOf(err)
	status := errorx.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	c.JSON(status, response{Message: errorx.PublicMessage(err)})
}
