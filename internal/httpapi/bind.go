package httpapi

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/Scott-fo/t3-clone/pkg/errorx"
	"github.com/Scott-fo/t3-clone/pkg/jsonutil"
)

// bindJSON reads and decodes the request body through jsonutil (sonic)
// rather than gin's default encoding/json binder, so the wire codec stays
// consistent across the whole handler surface.
func bindJSON(c *gin.Context, v any) error {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return errorx.Wrap(errorx.ValidationError, err, "read request body")
	}
	if len(raw) == 0 {
		return nil
	}
	if err := jsonutil.Unmarshal(raw, v); err != nil {
		return errorx.Wrap(errorx.ValidationError, err, "decode request body")
	}
	return nil
}
