package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Scott-fo/t3-clone/internal/crypto"
	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/pkg/core"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

type apiKeyHandler struct {
	store   store.Store
	keyRing *crypto.KeyRing
}

func newApiKeyHandler(st store.Store, keyRing *crypto.KeyRing) *apiKeyHandler {
	return &apiKeyHandler{store: st, keyRing: keyRing}
}

type createApiKeyRequest struct {
	Provider string `json:"provider"`
	Key      string `json:"key"`
}

func (h *apiKeyHandler) Create(c *gin.Context) {
	var body createApiKeyRequest
	if err := bindJSON(c, &body); err != nil {
		core.WriteResponse(c, err, nil)
		return
	}
	if body.Provider == "" || body.Key == "" {
		core.WriteResponse(c, errorx.New(errorx.ValidationError, "provider and key are required"), nil)
		return
	}

	encrypted, err := h.keyRing.Encrypt(body.Key)
	if err != nil {
		core.WriteResponse(c, errorx.Wrap(errorx.Internal, err, "encrypt api key"), nil)
		return
	}

	now := time.Now()
	key := &domain.ApiKey{
		ID:           uuid.NewString(),
		UserID:       userIDFrom(c),
		Provider:     domain.ProviderID(body.Provider),
		EncryptedKey: encrypted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = h.store.WithTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		return tx.ApiKeys().Create(ctx, key)
	})
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	core.WriteResponse(c, nil, key.ToDTO())
}

func (h *apiKeyHandler) List(c *gin.Context) {
	var dtos []domain.ApiKeyDTO
	err := h.store.WithTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		keys, err := tx.ApiKeys().ListForUser(ctx, userIDFrom(c))
		if err != nil {
			return err
		}
		dtos = make([]domain.ApiKeyDTO, 0, len(keys))
		for _, k := range keys {
			dtos = append(dtos, k.ToDTO())
		}
		return nil
	})
	core.WriteResponse(c, err, dtos)
}

func (h *apiKeyHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	userID := userIDFrom(c)

	err := h.store.WithTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		key, err := tx.ApiKeys().Find(ctx, id)
		if err != nil {
			return err
		}
		if key.UserID != userID {
			return errorx.New(errorx.Unauthorized, "api key not owned by caller")
		}
		return tx.ApiKeys().Delete(ctx, id)
	})
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	c.Status(http.StatusNoContent)
}
