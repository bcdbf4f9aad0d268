// Package openai drives the OpenAI Responses-API-like dialect: JSON POST
// with a bearer token, SSE events tagged response.output_text.delta,
// response.reasoning_summary_text.delta, response.completed and
// response.failed.
package openai

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
	"github.com/Scott-fo/t3-clone/pkg/logger"
)

const titleModel = "gpt-4.1-nano"

var reasoningModels = map[string]bool{
	"o3":      true,
	"o4-mini": true,
}

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

func (p *Provider) ID() domain.ProviderID { return domain.ProviderOpenAI }

func (p *Provider) ListSupportedModels() []string { return p.models }

type inputTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type requestBody struct {
	Model        string      `json:"model"`
	Input        any         `json:"input"`
	Stream       bool        `json:"stream"`
	Instructions string      `json:"instructions,omitempty"`
	Reasoning    *reasoning  `json:"reasoning,omitempty"`
}

type reasoning struct {
	Effort string `json:"effort"`
}

func (p *Provider) GenerateTitle(ctx context.Context, apiKey, firstUserText string) (string, error) {
	body := requestBody{
		Model:  titleModel,
		Input:  providers.TitlePrompt(firstUserText),
		Stream: false,
	}

	raw, err := p.do(ctx, apiKey, body)
	if err != nil {
		return "", err
	}
	defer raw.Close()

	var resp struct {
		OutputText string `json:"output_text"`
	}
	if err := jsonutil.NewDecoder(raw).Decode(&resp); err != nil {
		return "", errorx.Wrap(errorx.ProviderStreamFailure, err, "decode openai title response")
	}

	return strings.TrimSpace(resp.OutputText), nil
}

func (p *Provider) Stream(ctx context.Context, apiKey, model string, history []domain.Message, effort *domain.ReasoningEffort, sink providers.DeltaSink) (providers.StreamResult, error) {
	turns := make([]inputTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, inputTurn{Role: string(m.Role), Content: m.Body})
	}

	body := requestBody{
		Model:  model,
		Input:  turns,
		Stream: true,
	}
	if effort != nil {
		body.Reasoning = &reasoning{Effort: string(*effort)}
	} else if reasoningModels[model] {
		return providers.StreamResult{}, errorx.New(errorx.ValidationError, "effort required for reasoning model "+model)
	}

	raw, err := p.do(ctx, apiKey, body)
	if err != nil {
		return providers.StreamResult{}, err
	}
	defer raw.Close()

	return providers.RunSSE(raw, sink, parseEvent)
}

type streamEnvelope struct {
	Type     string `json:"type"`
	Delta    string `json:"delta"`
	Response *struct {
		OutputText string `json:"output_text"`
		Reasoning  *struct {
			Summary string `json:"summary"`
		} `json:"reasoning"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"response"`
}

func parseEvent(raw []byte) (providers.ParsedEvent, error) {
	var evt streamEnvelope
	if err := jsonutil.Unmarshal(raw, &evt); err != nil {
		return providers.ParsedEvent{}, err
	}

	switch evt.Type {
	case "response.output_text.delta":
		return providers.ParsedEvent{Deltas: []providers.Delta{{Kind: providers.DeltaText, Text: evt.Delta}}}, nil
	case "response.reasoning_summary_text.delta":
		return providers.ParsedEvent{Deltas: []providers.Delta{{Kind: providers.DeltaReasoning, Text: evt.Delta}}}, nil
	case "response.completed":
		result := providers.StreamResult{MsgID: uuid.NewString()}
		if evt.Response != nil {
			result.Content = evt.Response.OutputText
			if evt.Response.Reasoning != nil {
				result.Reasoning = evt.Response.Reasoning.Summary
			}
		}
		return providers.ParsedEvent{Done: true, Result: result}, nil
	case "response.failed":
		msg := "openai stream failed"
		if evt.Response != nil && evt.Response.Error != nil {
			msg = evt.Response.Error.Message
		}
		return providers.ParsedEvent{}, errorx.New(errorx.ProviderStreamFailure, msg)
	default:
		logger.Debug("openai: ignoring unknown event type %q", evt.Type)
		return providers.ParsedEvent{}, nil
	}
}

func (p *Provider) do(ctx context.Context, apiKey string, body requestBody) (io.ReadCloser, error) {
	if apiKey == "" {
		return nil, errorx.New(errorx.ProviderMissingKey, "missing api key for openai")
	}

	payload, err := jsonutil.Marshal(body)
	if err != nil {
		return nil, errorx.Wrap(errorx.Fatal, err, "encode openai request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/responses", bytes.NewReader(payload))
	if err != nil {
		return nil, errorx.Wrap(errorx.Fatal, err, "build openai request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errorx.Wrap(errorx.Transient, err, "openai request failed")
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, errorx.New(errorx.ProviderStreamFailure, fmt.Sprintf("openai returned status %d", resp.StatusCode))
	}
	return resp.Body, nil
}
