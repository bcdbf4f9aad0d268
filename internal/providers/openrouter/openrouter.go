// Package openrouter drives OpenRouter's dialect: bearer auth, the OpenAI
// chat/completions wire shape (choices[0].delta.content / finish_reason).
package openrouter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/providers"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
	"github.com/Scott-fo/t3-clone/pkg/jsonutil"
)

const titleModel = "openai/gpt-4o-mini"

type Provider struct {
	baseURL string
	client  *http.Client
	models  []string
}

func New(baseURL string, client *http.Client, models []string) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{baseURL: baseURL, client: client, models: models}
}

func (p *Provider) ID() domain.ProviderID         { return domain.ProviderOpenRouter }
func (p *Provider) ListSupportedModels() []string { return p.models }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type requestBody struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	Stream    bool      `json:"stream"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

func (p *Provider) GenerateTitle(ctx context.Context, apiKey, firstUserText string) (string, error) {
	body := requestBody{
		Model:    titleModel,
		Messages: []message{{Role: "user", Content: providers.TitlePrompt(firstUserText)}},
		Stream:   false,
	}

	raw, err := p.do(ctx, apiKey, body)
	if err != nil {
		return "", err
	}
	defer raw.Close()

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := jsonutil.NewDecoder(raw).Decode(&resp); err != nil {
		return "", errorx.Wrap(errorx.ProviderStreamFailure, err, "decode openrouter title response")
	}
	if len(resp.Choices) == 0 {
		return "", errorx.New(errorx.ProviderStreamFailure, "openrouter returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (p *Provider) Stream(ctx context.Context, apiKey, model string, history []domain.Message, effort *domain.ReasoningEffort, sink providers.DeltaSink) (providers.StreamResult, error) {
	messages := make([]message, 0, len(history))
	for _, m := range history {
		messages = append(messages, message{Role: string(m.Role), Content: m.Body})
	}

	body := requestBody{Model: model, Messages: messages, Stream: true}

	raw, err := p.do(ctx, apiKey, body)
	if err != nil {
		return providers.StreamResult{}, err
	}
	defer raw.Close()

	parser := &eventParser{}
	return providers.RunSSE(raw, sink, parser.parse)
}

type eventParser struct {
	content strings.Builder
}

type streamEnvelope struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

func (p *eventParser) parse(raw []byte) (providers.ParsedEvent, error) {
	var evt streamEnvelope
	if err := jsonutil.Unmarshal(raw, &evt); err != nil {
		return providers.ParsedEvent{}, err
	}

	var deltas []providers.Delta
	for _, c := range evt.Choices {
		if c.Delta.Content != "" {
			p.content.WriteString(c.Delta.Content)
			deltas = append(deltas, providers.Delta{Kind: providers.DeltaText, Text: c.Delta.Content})
		}
		if c.FinishReason != nil && *c.FinishReason == "stop" {
			return providers.ParsedEvent{
				Deltas: deltas,
				Done:   true,
				Result: providers.StreamResult{MsgID: uuid.NewString(), Content: p.content.String()},
			}, nil
		}
	}

	return providers.ParsedEvent{Deltas: deltas}, nil
}

func (p *Provider) do(ctx context.Context, apiKey string, body requestBody) (io.ReadCloser, error) {
	if apiKey == "" {
		return nil, errorx.New(errorx.ProviderMissingKey, "missing api key for openrouter")
	}

	payload, err := jsonutil.Marshal(body)
	if err != nil {
		return nil, errorx.Wrap(errorx.Fatal, err, "encode openrouter request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, errorx.Wrap(errorx.Fatal, err, "build openrouter request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errorx.Wrap(errorx.Transient, err, "openrouter request failed")
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, errorx.New(errorx.ProviderStreamFailure, fmt.Sprintf("openrouter returned status %d", resp.StatusCode))
	}
	return resp.Body, nil
}
