package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Scott-fo/t3-clone/internal/auth"
	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/pkg/core"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

type authHandler struct {
	store store.Store
}

func newAuthHandler(st store.Store) *authHandler {
	return &authHandler{store: st}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandler) Register(c *gin.Context) {
	var body credentials
	if err := bindJSON(c, &body); err != nil {
		core.WriteResponse(c, err, nil)
		return
	}
	if body.Email == "" || body.Password == "" {
		core.WriteResponse(c, errorx.New(errorx.ValidationError, "email and password are required"), nil)
		return
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		core.WriteResponse(c, errorx.Wrap(errorx.Internal, err, "hash password"), nil)
		return
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        body.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = h.store.WithTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Users().FindByEmail(ctx, body.Email); err == nil {
			return errorx.New(errorx.Conflict, "email already registered")
		} else if errorx.KindOf(err) != errorx.NotFound {
			return err
		}
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	h.startSession(c, user.ID)
}

func (h *authHandler) Login(c *gin.Context) {
	var body credentials
	if err := bindJSON(c, &body); err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	var user *domain.User
	err := h.store.WithTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		u, err := tx.Users().FindByEmail(ctx, body.Email)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil || !auth.VerifyPassword(body.Password, user.PasswordHash) {
		core.WriteResponse(c, errorx.New(errorx.Unauthorized, "invalid email or password"), nil)
		return
	}

	h.startSession(c, user.ID)
}

func (h *authHandler) Logout(c *gin.Context) {
	cookie, err := c.Cookie(sessionCookieName)
	if err == nil && cookie != "" {
		_ = h.store.WithTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
			return tx.Sessions().Expire(ctx, cookie)
		})
	}
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	core.WriteResponse(c, nil, nil)
}

func (h *authHandler) startSession(c *gin.Context, userID string) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := h.store.WithTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		return tx.Sessions().Create(ctx, session)
	})
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	const thirtyDays = 30 * 24 * time.Hour
	c.SetCookie(sessionCookieName, session.ID, int(thirtyDays.Seconds()), "/", "", false, true)
	core.WriteResponse(c, nil, gin.H{"userId": userID})
}
