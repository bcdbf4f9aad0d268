package sync

import (
	"context"
	"time"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/jobs"
	"github.com/Scott-fo/t3-clone/internal/sse"
	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
	"github.com/Scott-fo/t3-clone/pkg/logger"
)

// Pusher is the Push Pipeline (C6).
type Pusher struct {
	store store.Store
	hub   *sse.Hub
	jobs  *jobs.Worker
}

func NewPusher(st store.Store, hub *sse.Hub, worker *jobs.Worker) *Pusher {
	return &Pusher{store: st, hub: hub, jobs: worker}
}

// Push applies every mutation in order, each inside its own transaction,
// then pokes the user once (§4.6).
func (p *Pusher) Push(ctx context.Context, userID string, req domain.PushRequest) (domain.PushResponse, error) {
	for _, m := range req.Mutations {
		if err := p.applyOne(ctx, userID, req.ClientGroupID, m); err != nil {
			return domain.PushResponse{}, err
		}
	}

	p.hub.ReplicachePoke(userID)
	return domain.PushResponse{Success: true}, nil
}

func (p *Pusher) applyOne(ctx context.Context, userID, clientGroupID string, m domain.RawMutation) error {
	at := time.UnixMilli(int64(m.Timestamp))

	var titleTrigger bool
	var responseTrigger *domain.Job

	businessErr := p.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		group, next, err := resolveClientForPush(ctx, tx, userID, clientGroupID, m.ClientID)
		if err != nil {
			return err
		}
		if m.ID < next {
			// already applied, nothing to do
			return nil
		}
		if m.ID > next {
			return errorx.New(errorx.Conflict, "out of order mutation")
		}

		handler, ok := mutationHandlers[m.Name]
		if !ok {
			return errorx.New(errorx.ValidationError, "unknown mutation "+m.Name)
		}
		if err := handler(ctx, tx, userID, m.Args, at); err != nil {
			return err
		}

		if m.Name == domain.MutationCreateMessage {
			role, _ := argString(m.Args, "role")
			chatID, _ := argString(m.Args, "chat_id")
			if role == string(domain.RoleUser) && chatID != "" {
				messages, err := tx.Messages().ListForChat(ctx, chatID)
				if err != nil {
					return err
				}
				responseTrigger = &domain.Job{
					Kind:    domain.JobGenerateResponse,
					ChatID:  chatID,
					UserID:  userID,
					History: toMessageSlice(messages),
				}
				if len(messages) == 1 {
					titleTrigger = true
					responseTrigger.FirstBody, _ = argString(m.Args, "body")
				}
			}
		}

		return tx.ReplicacheClients().UpdateLastMutationID(ctx, m.ClientID, next)
	})

	if businessErr != nil {
		if errorx.KindOf(businessErr) == errorx.Conflict {
			return businessErr
		}

		logger.Error("push: mutation %d (%s) for client %s failed, entering error mode: %v", m.ID, m.Name, m.ClientID, businessErr)

		advanceErr := p.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
			_, next, err := resolveClientForPush(ctx, tx, userID, clientGroupID, m.ClientID)
			if err != nil {
				return err
			}
			if m.ID != next {
				return nil
			}
			return tx.ReplicacheClients().UpdateLastMutationID(ctx, m.ClientID, next)
		})
		if advanceErr != nil {
			return advanceErr
		}
		return nil
	}

	if responseTrigger != nil {
		p.jobs.Enqueue(*responseTrigger)
	}
	if titleTrigger {
		p.jobs.Enqueue(domain.Job{
			Kind:      domain.JobGenerateTitle,
			ChatID:    responseTrigger.ChatID,
			UserID:    userID,
			FirstBody: responseTrigger.FirstBody,
		})
	}

	return nil
}

// resolveClientForPush resolves-or-creates the client group and client row
// (§4.6 steps 1-2) and returns the group plus the client's expected next
// mutation id.
func resolveClientForPush(ctx context.Context, tx store.Tx, userID, clientGroupID, clientID string) (*domain.ReplicacheClientGroup, int32, error) {
	group, err := tx.ReplicacheGroups().FindOrCreate(ctx, clientGroupID, userID)
	if err != nil {
		return nil, 0, err
	}
	client, err := tx.ReplicacheClients().FindOrCreate(ctx, clientID, group.ID)
	if err != nil {
		return nil, 0, err
	}
	return group, client.LastMutationID + 1, nil
}

func toMessageSlice(messages []*domain.Message) []domain.Message {
	out := make([]domain.Message, len(messages))
	for i, m := range messages {
		out[i] = *m
	}
	return out
}
