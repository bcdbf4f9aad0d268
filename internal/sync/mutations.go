package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

// mutationHandler applies one named mutation's business logic inside the
// caller's transaction. Returning an error triggers error mode (§4.6 step 6).
type mutationHandler func(ctx context.Context, tx store.Tx, userID string, args map[string]any, at time.Time) error

var mutationHandlers = map[string]mutationHandler{
	domain.MutationCreateChat:        createChat,
	domain.MutationUpdateChat:        updateChat,
	domain.MutationDeleteChat:        deleteChat,
	domain.MutationForkChat:          forkChat,
	domain.MutationCreateMessage:     createMessage,
	domain.MutationUpdateMessage:     updateMessage,
	domain.MutationDeleteMessage:     deleteMessage,
	domain.MutationCreateActiveModel: upsertActiveModel,
	domain.MutationUpdateActiveModel: upsertActiveModel,
	domain.MutationDeleteActiveModel: deleteActiveModel,
}

func checkChatOwnership(chat *domain.Chat, userID string) error {
	if chat.UserID != userID {
		return errorx.New(errorx.Unauthorized, "chat not owned by caller")
	}
	return nil
}

func createChat(ctx context.Context, tx store.Tx, userID string, args map[string]any, at time.Time) error {
	id, err := argString(args, "id")
	if err != nil {
		return err
	}
	title, err := argOptString(args, "title")
	if err != nil {
		return err
	}

	return tx.Chats().Create(ctx, &domain.Chat{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Version:   1,
		CreatedAt: at,
		UpdatedAt: at,
	})
}

func updateChat(ctx context.Context, tx store.Tx, userID string, args map[string]any, at time.Time) error {
	id, err := argString(args, "id")
	if err != nil {
		return err
	}
	chat, err := tx.Chats().FindForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if err := checkChatOwnership(chat, userID); err != nil {
		return err
	}

	title, err := argOptString(args, "title")
	if err != nil {
		return err
	}
	if title != nil {
		chat.Title = title
	}
	if archived, err := argOptBool(args, "archived"); err != nil {
		return err
	} else if archived != nil {
		chat.Archived = *archived
	}
	if pinned, err := argOptBool(args, "pinned"); err != nil {
		return err
	} else if pinned != nil {
		chat.Pinned = *pinned
		if *pinned {
			now := at
			chat.PinnedAt = &now
		} else {
			chat.PinnedAt = nil
		}
	}

	chat.Version++
	chat.UpdatedAt = at
	return tx.Chats().Update(ctx, chat)
}

func deleteChat(ctx context.Context, tx store.Tx, userID string, args map[string]any, at time.Time) error {
	id, err := argString(args, "id")
	if err != nil {
		return err
	}
	chat, err := tx.Chats().FindForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if err := checkChatOwnership(chat, userID); err != nil {
		return err
	}
	return tx.Chats().Delete(ctx, id)
}

// forkChat duplicates a source chat's messages into a new chat owned by the
// same user, marking it Forked (§3's `forked` attribute).
func forkChat(ctx context.Context, tx store.Tx, userID string, args map[string]any, at time.Time) error {
	id, err := argString(args, "id")
	if err != nil {
		return err
	}
	sourceChatID, err := argString(args, "source_chat_id")
	if err != nil {
		return err
	}

	source, err := tx.Chats().Find(ctx, sourceChatID)
	if err != nil {
		return err
	}
	if err := checkChatOwnership(source, userID); err != nil {
		return err
	}

	title, err := argOptString(args, "title")
	if err != nil {
		return err
	}
	if title == nil {
		title = source.Title
	}

	if err := tx.Chats().Create(ctx, &domain.Chat{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Forked:    true,
		Version:   1,
		CreatedAt: at,
		UpdatedAt: at,
	}); err != nil {
		return err
	}

	messages, err := tx.Messages().ListForChat(ctx, sourceChatID)
	if err != nil {
		return err
	}
	for _, m := range messages {
		if _, err := tx.Messages().Create(ctx, &domain.Message{
			ID:        uuid.NewString(),
			ChatID:    id,
			UserID:    userID,
			Role:      m.Role,
			Body:      m.Body,
			Reasoning: m.Reasoning,
			Version:   1,
			CreatedAt: at,
			UpdatedAt: at,
		}); err != nil {
			return err
		}
	}

	return nil
}

func createMessage(ctx context.Context, tx store.Tx, userID string, args map[string]any, at time.Time) error {
	id, err := argString(args, "id")
	if err != nil {
		return err
	}
	chatID, err := argString(args, "chat_id")
	if err != nil {
		return err
	}
	role, err := argString(args, "role")
	if err != nil {
		return err
	}
	body, err := argString(args, "body")
	if err != nil {
		return err
	}
	reasoning, err := argOptString(args, "reasoning")
	if err != nil {
		return err
	}

	chat, err := tx.Chats().Find(ctx, chatID)
	if err != nil {
		return err
	}
	if err := checkChatOwnership(chat, userID); err != nil {
		return err
	}

	_, err = tx.Messages().Create(ctx, &domain.Message{
		ID:        id,
		ChatID:    chatID,
		UserID:    userID,
		Role:      domain.MessageRole(role),
		Body:      body,
		Reasoning: reasoning,
		Version:   1,
		CreatedAt: at,
		UpdatedAt: at,
	})
	return err
}

func updateMessage(ctx context.Context, tx store.Tx, userID string, args map[string]any, at time.Time) error {
	id, err := argString(args, "id")
	if err != nil {
		return err
	}
	msg, err := tx.Messages().FindForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if msg.UserID != userID {
		return errorx.New(errorx.Unauthorized, "message not owned by caller")
	}

	body, err := argOptString(args, "body")
	if err != nil {
		return err
	}
	if body != nil {
		msg.Body = *body
	}
	reasoning, err := argOptString(args, "reasoning")
	if err != nil {
		return err
	}
	if reasoning != nil {
		msg.Reasoning = reasoning
	}

	msg.Version++
	msg.UpdatedAt = at
	return tx.Messages().Update(ctx, msg)
}

func deleteMessage(ctx context.Context, tx store.Tx, userID string, args map[string]any, at time.Time) error {
	id, err := argString(args, "id")
	if err != nil {
		return err
	}
	msg, err := tx.Messages().FindForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if msg.UserID != userID {
		return errorx.New(errorx.Unauthorized, "message not owned by caller")
	}
	return tx.Messages().Delete(ctx, id)
}

// upsertActiveModel backs both createActiveModel and updateActiveModel:
// there is exactly one active model row per user, so both names converge on
// the same upsert (§9, supplemented feature).
func upsertActiveModel(ctx context.Context, tx store.Tx, userID string, args map[string]any, at time.Time) error {
	provider, err := argString(args, "provider")
	if err != nil {
		return err
	}
	model, err := argString(args, "model")
	if err != nil {
		return err
	}
	effortStr, err := argOptString(args, "effort")
	if err != nil {
		return err
	}

	var effort *domain.ReasoningEffort
	if effortStr != nil {
		parsed, ok := domain.ParseReasoningEffort(*effortStr)
		if !ok {
			return errorx.New(errorx.ValidationError, "unknown reasoning effort "+*effortStr)
		}
		effort = &parsed
	}

	version := int32(1)
	if existing, err := tx.ActiveModels().FindForUser(ctx, userID); err == nil {
		version = existing.Version + 1
	} else if errorx.KindOf(err) != errorx.NotFound {
		return err
	}

	return tx.ActiveModels().Upsert(ctx, &domain.ActiveModel{
		UserID:    userID,
		Provider:  domain.ProviderID(provider),
		Model:     model,
		Effort:    effort,
		Version:   version,
		CreatedAt: at,
		UpdatedAt: at,
	})
}

func deleteActiveModel(ctx context.Context, tx store.Tx, userID string, args map[string]any, at time.Time) error {
	return tx.ActiveModels().Delete(ctx, userID)
}
