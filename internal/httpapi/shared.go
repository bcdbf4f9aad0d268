package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/pkg/core"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

type sharedChatHandler struct {
	store store.Store
}

func newSharedChatHandler(st store.Store) *sharedChatHandler {
	return &sharedChatHandler{store: st}
}

// Share freezes a chat and its messages into a publicly-readable snapshot
// (§3 SharedChat, supplemented from original_source/src/handlers/shared_chat.rs).
func (h *sharedChatHandler) Share(c *gin.Context) {
	chatID := c.Param("chatId")
	userID := userIDFrom(c)
	now := time.Now()

	var dto domain.SharedChatDTO
	err := h.store.WithTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		chat, err := tx.Chats().Find(ctx, chatID)
		if err != nil {
			return err
		}
		if chat.UserID != userID {
			return errorx.New(errorx.Unauthorized, "chat not owned by caller")
		}

		messages, err := tx.Messages().ListForChat(ctx, chatID)
		if err != nil {
			return err
		}

		shared := &domain.SharedChat{
			ID:        uuid.NewString(),
			ChatID:    chatID,
			UserID:    userID,
			Title:     chat.Title,
			CreatedAt: now,
		}
		sharedMessages := make([]*domain.SharedMessage, 0, len(messages))
		for _, m := range messages {
			sharedMessages = append(sharedMessages, &domain.SharedMessage{
				ID:           uuid.NewString(),
				SharedChatID: shared.ID,
				Role:         m.Role,
				Body:         m.Body,
				Reasoning:    m.Reasoning,
				CreatedAt:    m.CreatedAt,
			})
		}

		if err := tx.SharedChats().Create(ctx, shared, sharedMessages); err != nil {
			return err
		}

		dto = toSharedChatDTO(shared, sharedMessages)
		return nil
	})

	core.WriteResponse(c, err, dto)
}

func (h *sharedChatHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var dto domain.SharedChatDTO
	err := h.store.WithTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		shared, messages, err := tx.SharedChats().Find(ctx, id)
		if err != nil {
			return err
		}
		dto = toSharedChatDTO(shared, messages)
		return nil
	})

	core.WriteResponse(c, err, dto)
}

func (h *sharedChatHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	userID := userIDFrom(c)

	err := h.store.WithTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		shared, _, err := tx.SharedChats().Find(ctx, id)
		if err != nil {
			return err
		}
		if shared.UserID != userID {
			return errorx.New(errorx.Unauthorized, "shared chat not owned by caller")
		}
		return tx.SharedChats().Delete(ctx, id)
	})
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	c.Status(http.StatusNoContent)
}

func toSharedChatDTO(sc *domain.SharedChat, messages []*domain.SharedMessage) domain.SharedChatDTO {
	dtoMessages := make([]domain.SharedMessageDTO, 0, len(messages))
	for _, m := range messages {
		dtoMessages = append(dtoMessages, domain.SharedMessageDTO{
			ID:        m.ID,
			Role:      m.Role,
			Body:      m.Body,
			Reasoning: m.Reasoning,
			CreatedAt: m.CreatedAt,
		})
	}
	return domain.SharedChatDTO{
		ID:        sc.ID,
		Title:     sc.Title,
		CreatedAt: sc.CreatedAt,
		Messages:  dtoMessages,
	}
}
