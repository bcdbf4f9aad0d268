// Package httpapi wires the gin HTTP surface described in §6: replicache
// pull/push, the SSE subscription, API-key management and chat sharing.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/Scott-fo/t3-clone/internal/crypto"
	"github.com/Scott-fo/t3-clone/internal/sse"
	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/internal/sync"
)

// Deps bundles everything the router needs to construct its handlers.
type Deps struct {
	Store   store.Store
	Hub     *sse.Hub
	Puller  *sync.Puller
	Pusher  *sync.Pusher
	KeyRing *crypto.KeyRing
}

// NewRouter builds the gin engine and installs every route (§6).
func NewRouter(deps Deps) *gin.Engine {
	g := gin.New()
	g.Use(gin.Recovery())
	g.Use(corsMiddleware())

	authH := newAuthHandler(deps.Store)
	replicacheH := newReplicacheHandler(deps.Puller, deps.Pusher)
	apiKeyH := newApiKeyHandler(deps.Store, deps.KeyRing)
	sharedH := newSharedChatHandler(deps.Store)

	api := g.Group("/api")
	{
		api.POST("/auth/register", authH.Register)
		api.POST("/auth/login", authH.Login)
		api.POST("/auth/logout", authH.Logout)

		api.GET("/shared/:id", sharedH.Get)

		authed := api.Group("")
		authed.Use(sessionAuth(deps.Store))
		{
			authed.POST("/replicache/pull", replicacheH.Pull)
			authed.POST("/replicache/push", replicacheH.Push)
			authed.GET("/sse", deps.Hub.Handler)

			authed.POST("/api-keys", apiKeyH.Create)
			authed.GET("/api-keys", apiKeyH.List)
			authed.DELETE("/api-keys/:id", apiKeyH.Delete)

			authed.POST("/chats/:chatId/share", sharedH.Share)
			authed.DELETE("/shared/:id", sharedH.Delete)
		}
	}

	return g
}

// corsMiddleware allows the SPA's origin to send credentialed requests; the
// session cookie auth model requires Access-Control-Allow-Credentials.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
