package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/pkg/core"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

const sessionCookieName = "session_id"

const userIDContextKey = "userID"

// sessionAuth resolves the session cookie to a user id and stores it on the
// gin context, aborting with 401 when the cookie is missing or the session
// does not resolve (§6 "authenticated by a session cookie unless noted").
func sessionAuth(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(sessionCookieName)
		if err != nil || cookie == "" {
			core.WriteResponse(c, errorx.New(errorx.Unauthorized, "missing session cookie"), nil)
			c.Abort()
			return
		}

		var userID string
		err = st.WithTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
			session, err := tx.Sessions().Find(ctx, cookie)
			if err != nil {
				return err
			}
			userID = session.UserID
			return nil
		})
		if err != nil {
			core.WriteResponse(c, err, nil)
			c.Abort()
			return
		}

		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

func userIDFrom(c *gin.Context) string {
	id, _ := c.Get(userIDContextKey)
	s, _ := id.(string)
	return s
}
