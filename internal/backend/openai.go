// ABOUTME: OpenAI-compatible generation backend (OpenAI and Groq)
// ABOUTME: Chat completions for drafts, image API for covers, retry with backoff
package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"blogforge/internal/config"
	"blogforge/internal/models"
	"blogforge/internal/util"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

const systemPrompt = "You are a junior sysadmin who also teaches Python at a school. " +
	"You write practical, how-to style technical articles with real commands and checklists. " +
	"Plain technical tone, no marketing, no clickbait. " +
	"For security topics focus on hardening, defense and best practice."

const userPromptFmt = "Topic: %s\n" +
	"Write an article of 800 to 1400 words.\n" +
	"Mandatory structure (H2 headings): introduction, real-world scenario, " +
	"step-by-step procedure, commands (at least one bash block), common errors " +
	"and fixes, hardening, checklist, mini glossary (max 5 entries), recap.\n" +
	"Output ONLY JSON with fields: title, excerpt, tags, content_markdown.\n" +
	"content_markdown must NOT contain an H1 title (the title is separate).\n" +
	"tags: 4-7 lowercase hyphenated tags, avoid generic tags like tech or news.\n"

const imagePrompt = "Realistic PCB background, dark green and black palette, " +
	"thin traces, pads, vias, soft blur, professional and clean. " +
	"No text, no logos, no people."

// OpenAIClient generates drafts and cover images through any
// OpenAI-compatible API. The Groq provider is the same client pointed at a
// different base URL.
type OpenAIClient struct {
	client     *openai.Client
	textModel  string
	imageModel string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIClient creates a backend client from configuration.
func NewOpenAIClient(cfg *config.Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Provider == config.ProviderGroq {
		clientCfg.BaseURL = groqBaseURL
	}

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientCfg),
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// GenerateDraft asks the chat API for one candidate article as a JSON object.
// Transient failures are retried with backoff; quota errors stop immediately.
func (c *OpenAIClient) GenerateDraft(ctx context.Context, topic string) (*models.Draft, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(util.Backoff(c.retryDelay, attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model: c.textModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(userPromptFmt, topic)},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.7,
		})
		cancel()

		if err != nil {
			if quotaLike(err) {
				return nil, fmt.Errorf("%w: %v", ErrQuota, err)
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}

		draft, err := ParseDraft(resp.Choices[0].Message.Content)
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		return draft, nil
	}

	return nil, fmt.Errorf("failed to generate draft after %d attempts: %w", c.maxRetries+1, lastErr)
}

// ParseDraft decodes the model's JSON payload into a Draft, rejecting
// responses that lack the mandatory title and body.
func ParseDraft(content string) (*models.Draft, error) {
	var draft models.Draft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if draft.Title == "" || draft.Body == "" {
		return nil, fmt.Errorf("%w: missing title or content_markdown", ErrBadPayload)
	}
	return &draft, nil
}

// GenerateCover produces cover image bytes through the image API.
func (c *OpenAIClient) GenerateCover(ctx context.Context) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateImage(attemptCtx, openai.ImageRequest{
		Model:          c.imageModel,
		Prompt:         imagePrompt,
		Size:           "1024x576",
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		if quotaLike(err) {
			return nil, fmt.Errorf("%w: %v", ErrQuota, err)
		}
		return nil, fmt.Errorf("generating cover image: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("%w: image response without b64_json", ErrBadPayload)
	}

	img, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", ErrBadPayload, err)
	}
	return img, nil
}
