// Package gemini drives the Gemini-like dialect: API key as a query
// parameter, request/response bodies reusing google.golang.org/genai's wire
// types, candidates[] streamed as newline-delimited JSON events.
package gemini

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/providers"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
	"github.com/Scott-fo/t3-clone/pkg/jsonutil"
)

const (
	titleModel  = "gemini-2.0-flash"
	stopReason  = "STOP"
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

func (p *Provider) ID() domain.ProviderID         { return domain.ProviderGemini }
func (p *Provider) ListSupportedModels() []string { return p.models }

type requestBody struct {
	Contents []*genai.Content `json:"contents"`
}

// geminiRole maps a stored message role onto Gemini's two-party vocabulary.
func geminiRole(role domain.MessageRole) string {
	if role == domain.RoleAssistant {
		return "model"
	}
	return "user"
}

func toContents(history []domain.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		contents = append(contents, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []*genai.Part{{Text: m.Body}},
		})
	}
	return contents
}

func (p *Provider) GenerateTitle(ctx context.Context, apiKey, firstUserText string) (string, error) {
	body := requestBody{
		Contents: []*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: providers.TitlePrompt(firstUserText)}},
		}},
	}

	raw, err := p.do(ctx, apiKey, titleModel, "generateContent", body)
	if err != nil {
		return "", err
	}
	defer raw.Close()

	var resp candidateResponse
	if err := jsonutil.NewDecoder(raw).Decode(&resp); err != nil {
		return "", errorx.Wrap(errorx.ProviderStreamFailure, err, "decode gemini title response")
	}

	return strings.TrimSpace(extractText(resp)), nil
}

func (p *Provider) Stream(ctx context.Context, apiKey, model string, history []domain.Message, effort *domain.ReasoningEffort, sink providers.DeltaSink) (providers.StreamResult, error) {
	body := requestBody{Contents: toContents(history)}

	raw, err := p.do(ctx, apiKey, model, "streamGenerateContent", body)
	if err != nil {
		return providers.StreamResult{}, err
	}
	defer raw.Close()

	parser := &eventParser{}
	return providers.RunSSE(raw, sink, parser.parse)
}

type candidateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func extractText(resp candidateResponse) string {
	var sb strings.Builder
	for _, c := range resp.Candidates {
		for _, part := range c.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

type eventParser struct {
	content strings.Builder
}

func (p *eventParser) parse(raw []byte) (providers.ParsedEvent, error) {
	var resp candidateResponse
	if err := jsonutil.Unmarshal(raw, &resp); err != nil {
		return providers.ParsedEvent{}, err
	}

	var deltas []providers.Delta
	for _, c := range resp.Candidates {
		for _, part := range c.Content.Parts {
			if part.Text == "" {
				continue
			}
			p.content.WriteString(part.Text)
			deltas = append(deltas, providers.Delta{Kind: providers.DeltaText, Text: part.Text})
		}

		if c.FinishReason == "" {
			continue
		}
		if c.FinishReason != stopReason {
			return providers.ParsedEvent{}, errorx.New(errorx.ProviderStreamFailure,
				fmt.Sprintf("gemini finished with reason %s", c.FinishReason))
		}
		return providers.ParsedEvent{
			Deltas: deltas,
			Done:   true,
			Result: providers.StreamResult{MsgID: uuid.NewString(), Content: p.content.String()},
		}, nil
	}

	return providers.ParsedEvent{Deltas: deltas}, nil
}

func (p *Provider) do(ctx context.Context, apiKey, model, method string, body requestBody) (io.ReadCloser, error) {
	if apiKey == "" {
		return nil, errorx.New(errorx.ProviderMissingKey, "missing api key for gemini")
	}

	payload, err := jsonutil.Marshal(body)
	if err != nil {
		return nil, errorx.Wrap(errorx.Fatal, err, "encode gemini request")
	}

	reqURL := fmt.Sprintf("%s/models/%s:%s?key=%s", p.baseURL, model, method, url.QueryEscape(apiKey))
	if method == "streamGenerateContent" {
		reqURL += "&alt=sse"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errorx.Wrap(errorx.Fatal, err, "build gemini request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errorx.Wrap(errorx.Transient, err, "gemini request failed")
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, errorx.New(errorx.ProviderStreamFailure, fmt.Sprintf("gemini returned status %d", resp.StatusCode))
	}
	return resp.Body, nil
}
