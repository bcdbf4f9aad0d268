// Package anthropic drives the Messages-like dialect: x-api-key and
// anthropic-version headers, event-tagged SSE frames (message_start,
// content_block_delta, message_stop, ...).
package anthropic

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

const (
	apiVersion  = "2023-06-01"
	titleModel  = "claude-3-5-haiku-20241022"
	maxTokens   = 4096
	titleTokens = 64
)

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

func (p *Provider) ID() domain.ProviderID         { return domain.ProviderAnthropic }
func (p *Provider) ListSupportedModels() []string { return p.models }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type requestBody struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
	System    string    `json:"system,omitempty"`
	Stream    bool      `json:"stream"`
}

func (p *Provider) GenerateTitle(ctx context.Context, apiKey, firstUserText string) (string, error) {
	body := requestBody{
		Model:     titleModel,
		MaxTokens: titleTokens,
		Messages:  []message{{Role: "user", Content: providers.TitlePrompt(firstUserText)}},
		Stream:    false,
	}

	raw, err := p.do(ctx, apiKey, body)
	if err != nil {
		return "", err
	}
	defer raw.Close()

	var resp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := jsonutil.NewDecoder(raw).Decode(&resp); err != nil {
		return "", errorx.Wrap(errorx.ProviderStreamFailure, err, "decode anthropic title response")
	}

	var sb strings.Builder
	for _, c := range resp.Content {
		sb.WriteString(c.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (p *Provider) Stream(ctx context.Context, apiKey, model string, history []domain.Message, effort *domain.ReasoningEffort, sink providers.DeltaSink) (providers.StreamResult, error) {
	messages := make([]message, 0, len(history))
	for _, m := range history {
		messages = append(messages, message{Role: string(m.Role), Content: m.Body})
	}

	body := requestBody{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  messages,
		Stream:    true,
	}

	raw, err := p.do(ctx, apiKey, body)
	if err != nil {
		return providers.StreamResult{}, err
	}
	defer raw.Close()

	parser := &eventParser{}
	return providers.RunSSE(raw, sink, parser.parse)
}

// eventParser carries state across frames: the text of every text_delta is
// accumulated so message_stop can return the whole message.
type eventParser struct {
	content strings.Builder
}

type streamEnvelope struct {
	Type  string `json:"type"`
	Delta *struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Message *struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// parse is handed the raw data line's bytes; the event tag itself is not
// passed through RunSSE's generic contract, so content_block_delta frames
// are identified by their own "type" field in the Anthropic dialect too.
func (p *eventParser) parse(raw []byte) (providers.ParsedEvent, error) {
	var evt streamEnvelope
	if err := jsonutil.Unmarshal(raw, &evt); err != nil {
		return providers.ParsedEvent{}, err
	}

	switch evt.Type {
	case "content_block_delta":
		if evt.Delta == nil {
			return providers.ParsedEvent{}, nil
		}
		switch evt.Delta.Type {
		case "text_delta":
			p.content.WriteString(evt.Delta.Text)
			return providers.ParsedEvent{Deltas: []providers.Delta{{Kind: providers.DeltaText, Text: evt.Delta.Text}}}, nil
		case "thinking_delta":
			return providers.ParsedEvent{Deltas: []providers.Delta{{Kind: providers.DeltaReasoning, Text: evt.Delta.Text}}}, nil
		default:
			return providers.ParsedEvent{}, nil
		}
	case "message_stop":
		return providers.ParsedEvent{
			Done:   true,
			Result: providers.StreamResult{MsgID: uuid.NewString(), Content: p.content.String()},
		}, nil
	case "error":
		msg := "anthropic stream failed"
		if evt.Error != nil {
			msg = evt.Error.Message
		}
		return providers.ParsedEvent{}, errorx.New(errorx.ProviderStreamFailure, msg)
	case "message_start", "content_block_start", "content_block_stop", "message_delta", "ping":
		return providers.ParsedEvent{}, nil
	default:
		logger.Debug("anthropic: ignoring unknown event type %q", evt.Type)
		return providers.ParsedEvent{}, nil
	}
}

func (p *Provider) do(ctx context.Context, apiKey string, body requestBody) (io.ReadCloser, error) {
	if apiKey == "" {
		return nil, errorx.New(errorx.ProviderMissingKey, "missing api key for anthropic")
	}

	payload, err := jsonutil.Marshal(body)
	if err != nil {
		return nil, errorx.Wrap(errorx.Fatal, err, "encode anthropic request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, errorx.Wrap(errorx.Fatal, err, "build anthropic request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errorx.Wrap(errorx.Transient, err, "anthropic request failed")
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, errorx.New(errorx.ProviderStreamFailure, fmt.Sprintf("anthropic returned status %d", resp.StatusCode))
	}
	return resp.Body, nil
}
