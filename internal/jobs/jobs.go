// Package jobs is the Job Worker (C3): a typed, buffered channel drained by
// one goroutine per job, each job attempted at most three times with jittered
// exponential backoff starting at 500ms — the same shape as the Rust
// original's tokio_retry2 ExponentialBackoff::from_millis(500).map(jitter).take(3).
package jobs

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Scott-fo/t3-clone/internal/cache"
	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/providers"
	"github.com/Scott-fo/t3-clone/internal/sse"
	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
	"github.com/Scott-fo/t3-clone/pkg/logger"
)

const (
	maxAttempts  = 3
	baseDelay    = 500 * time.Millisecond
	defaultModel = "gpt-4.1-mini"
)

var defaultProvider = domain.ProviderOpenAI

// Worker drains the job queue and executes each job against the store,
// cache and provider registry, publishing progress through the SSE hub.
type Worker struct {
	store     store.Store
	cache     cache.CvrCache
	hub       *sse.Hub
	providers *providers.Registry
	crypto    Decrypter

	queue chan domain.Job
}

// Decrypter is the subset of internal/crypto.KeyRing the worker needs, kept
// as an interface so tests can fake it without real AES-GCM keys.
type Decrypter interface {
	Decrypt(ciphertext []byte) (string, error)
}

func NewWorker(st store.Store, ch cache.CvrCache, hub *sse.Hub, registry *providers.Registry, dec Decrypter) *Worker {
	return &Worker{
		store:     st,
		cache:     ch,
		hub:       hub,
		providers: registry,
		crypto:    dec,
		queue:     make(chan domain.Job, 256),
	}
}

// Enqueue is non-blocking: called after the enqueuing transaction commits,
// per §4.3's "enqueue is synchronous and non-blocking" rule. When the queue
// buffer is full the send is handed to its own goroutine instead of waiting.
func (w *Worker) Enqueue(job domain.Job) {
	select {
	case w.queue <- job:
	default:
		go func() { w.queue <- job }()
	}
}

// Run drains the queue until ctx is cancelled, spawning one goroutine per
// job so jobs execute concurrently (§5's "each job spawns independently").
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.queue:
			go w.runWithRetry(ctx, job)
		}
	}
}

func (w *Worker) runWithRetry(ctx context.Context, job domain.Job) {
	delay := baseDelay
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = w.execute(ctx, job)
		if lastErr == nil {
			return
		}
		if attempt == maxAttempts {
			break
		}

		jittered := time.Duration(float64(delay) * (0.5 + rand.Float64()))
		select {
		case <-time.After(jittered):
		case <-ctx.Done():
			return
		}
		delay *= 2
	}

	logger.Error("job %s for chat %s permanently failed after %d attempts: %v", job.Kind, job.ChatID, maxAttempts, lastErr)
}

func (w *Worker) execute(ctx context.Context, job domain.Job) error {
	switch job.Kind {
	case domain.JobGenerateTitle:
		return w.generateTitle(ctx, job)
	case domain.JobGenerateResponse:
		return w.generateResponse(ctx, job)
	default:
		return errorx.New(errorx.Fatal, "unknown job kind "+string(job.Kind))
	}
}

// providerSetup is what pick_provider resolves: which provider and model to
// drive, and the decrypted key to authenticate with.
type providerSetup struct {
	provider domain.ProviderID
	model    string
	effort   *domain.ReasoningEffort
	apiKey   string
}

// pickProvider reads the user's active model (falling back to a
// preconfigured default) and decrypts the matching API key. A missing key
// is reported via errorx.ProviderMissingKey, which callers handle by
// completing the job "user-visibly" instead of retrying. setup is always
// populated with the resolved provider/model, even on error, so a
// ProviderMissingKey caller can still name the provider in its message.
func (w *Worker) pickProvider(ctx context.Context, userID string) (*providerSetup, error) {
	setup := &providerSetup{provider: defaultProvider, model: defaultModel}

	err := w.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		active, err := tx.ActiveModels().FindForUser(ctx, userID)
		if err == nil {
			setup.provider = active.Provider
			setup.model = active.Model
			setup.effort = active.Effort
		} else if errorx.KindOf(err) != errorx.NotFound {
			return err
		}

		key, err := tx.ApiKeys().FindForProvider(ctx, userID, setup.provider)
		if err != nil {
			if errorx.KindOf(err) == errorx.NotFound {
				return errorx.New(errorx.ProviderMissingKey, string(setup.provider))
			}
			return err
		}

		plaintext, err := w.crypto.Decrypt(key.EncryptedKey)
		if err != nil {
			return errorx.Wrap(errorx.Fatal, err, "decrypt api key for provider %s", setup.provider)
		}
		setup.apiKey = plaintext
		return nil
	})
	return setup, err
}

func (w *Worker) generateResponse(ctx context.Context, job domain.Job) error {
	setup, err := w.pickProvider(ctx, job.UserID)
	if err != nil {
		if errorx.KindOf(err) == errorx.ProviderMissingKey {
			return w.completeMissingKey(ctx, job, setup.provider)
		}
		return err
	}

	provider, err := w.providers.Get(setup.provider)
	if err != nil {
		return err
	}

	sink := func(d providers.Delta) {
		msg := domain.SseMessage{ChatID: job.ChatID}
		switch d.Kind {
		case providers.DeltaText:
			msg.Type = domain.EventChatStreamChunk
			msg.Chunk = d.Text
		case providers.DeltaReasoning:
			msg.Type = domain.EventChatStreamChunk
			msg.Reasoning = d.Text
		}
		w.hub.SendToUser(job.UserID, msg)
	}

	result, err := provider.Stream(ctx, setup.apiKey, setup.model, job.History, setup.effort, sink)
	if err != nil {
		w.hub.SendToUser(job.UserID, domain.SseMessage{
			Type:   domain.EventChatStreamError,
			ChatID: job.ChatID,
			Error:  err.Error(),
		})
		return err
	}

	msgID := result.MsgID
	if msgID == "" {
		msgID = uuid.NewString()
	}

	err = w.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		now := time.Now()
		var reasoning *string
		if result.Reasoning != "" {
			reasoning = &result.Reasoning
		}
		_, err := tx.Messages().Create(ctx, &domain.Message{
			ID:        msgID,
			ChatID:    job.ChatID,
			UserID:    job.UserID,
			Role:      domain.RoleAssistant,
			Body:      result.Content,
			Reasoning: reasoning,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return err
	})
	if err != nil {
		return err
	}

	w.hub.SendToUser(job.UserID, domain.SseMessage{
		Type:   domain.EventChatStreamDone,
		ChatID: job.ChatID,
		MsgID:  msgID,
	})
	w.hub.ReplicachePoke(job.UserID)
	return nil
}

// completeMissingKey implements §4.3's ProviderMissingKey path: the job
// completes successfully (no retry), but leaves a visible trail for the
// user — an assistant error message, a chat-stream-exit event, a poke.
func (w *Worker) completeMissingKey(ctx context.Context, job domain.Job, provider domain.ProviderID) error {
	now := time.Now()
	body := "Error: Missing API key for " + string(provider)

	err := w.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.Messages().Create(ctx, &domain.Message{
			ID:        uuid.NewString(),
			ChatID:    job.ChatID,
			UserID:    job.UserID,
			Role:      domain.RoleAssistant,
			Body:      body,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return err
	})
	if err != nil {
		logger.Error("jobs: failed to persist missing-api-key message for chat %s: %v", job.ChatID, err)
	}

	w.hub.SendToUser(job.UserID, domain.SseMessage{Type: domain.EventChatStreamExit, ChatID: job.ChatID})
	w.hub.ReplicachePoke(job.UserID)
	return nil
}

func (w *Worker) generateTitle(ctx context.Context, job domain.Job) error {
	setup, err := w.pickProvider(ctx, job.UserID)
	if err != nil {
		if errorx.KindOf(err) == errorx.ProviderMissingKey {
			// Title generation fails silently: the chat keeps its
			// placeholder title, GenerateResponse already surfaced the
			// missing-key error to the user.
			return nil
		}
		return err
	}

	provider, err := w.providers.Get(setup.provider)
	if err != nil {
		return err
	}

	title, err := provider.GenerateTitle(ctx, setup.apiKey, job.FirstBody)
	if err != nil {
		return err
	}

	err = w.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		chat, err := tx.Chats().FindForUpdate(ctx, job.ChatID)
		if err != nil {
			return err
		}
		chat.Title = &title
		chat.Version++
		chat.UpdatedAt = time.Now()
		return tx.Chats().Update(ctx, chat)
	})
	if err != nil {
		return err
	}

	w.hub.ReplicachePoke(job.UserID)
	return nil
}
