// Package providers implements the uniform streaming contract of §4.1 over
// four vendor-specific SSE dialects. Each variant package (openai,
// anthropic, gemini, openrouter) parses its own wire format by hand — no
// vendor SDK client is used for streaming, since the vendor SDKs don't
// expose the raw event stream the uniform algorithm needs.
package providers

import (
	"context"

	"github.com/Scott-fo/t3-clone/internal/domain"
)

// DeltaSink receives each text or reasoning chunk as it is parsed off the
// wire, in provider order.
type DeltaSink func(delta Delta)

type DeltaKind int

const (
	DeltaText DeltaKind = iota
	DeltaReasoning
)

type Delta struct {
	Kind DeltaKind
	Text string
}

// StreamResult is the common shape every provider variant settles on.
type StreamResult struct {
	MsgID     string
	Content   string
	Reasoning string
}

// Provider is the contract C1 adapts a chat history through: one
// implementation per vendor dialect, all sharing this shape so the Job
// Worker never branches on provider identity beyond selecting one.
type Provider interface {
	ID() domain.ProviderID

	// GenerateTitle is a single non-streaming call against a cheap model.
	GenerateTitle(ctx context.Context, apiKey, firstUserText string) (string, error)

	// Stream runs the full chat completion, forwarding every delta to sink,
	// and returns once the provider signals completion or failure.
	Stream(ctx context.Context, apiKey, model string, history []domain.Message, effort *domain.ReasoningEffort, sink DeltaSink) (StreamResult, error)

	// ListSupportedModels reports the model ids this provider can drive.
	ListSupportedModels() []string
}
