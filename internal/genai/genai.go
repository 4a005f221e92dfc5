// Package genai talks to the AI models behind the assistant via the OpenAI
// API surface (routed through OpenRouter by default). A text model carries
// the dialogue; a separate vision model analyzes interior photos.
package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ateliergo/atelier/internal/models"
)

// Default model and endpoint configuration.
const (
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultTextModel   = "deepseek/deepseek-r1:free"
	DefaultVisionModel = "google/gemma-3-27b-it:free"
	DefaultTimeout     = 60 * time.Second

	textMaxTokens   = 800
	visionMaxTokens = 1000
	temperature     = 0.7
)

// ErrNoChoicesReturned indicates the model returned an empty choice list.
var ErrNoChoicesReturned = errors.New("no choices returned")

// chatService defines minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// completionsAdapter adapts the real OpenAI client to chatService.
type completionsAdapter struct {
	cli openai.Client
}

func (a completionsAdapter) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := a.cli.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// ClientInterface is the AI contract the dialogue flow depends on.
type ClientInterface interface {
	CompleteText(ctx context.Context, systemPrompt string, history []models.ConversationMessage, userMessage string) (string, error)
	CompleteVision(ctx context.Context, systemPrompt string, history []models.ConversationMessage, promptText string, image []byte) (string, error)
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	VisionModel string
	Timeout     time.Duration
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithTextModel overrides the dialogue model.
func WithTextModel(model string) Option {
	return func(o *Opts) { o.TextModel = model }
}

// WithVisionModel overrides the image analysis model.
func WithVisionModel(model string) Option {
	return func(o *Opts) { o.VisionModel = model }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client wraps the chat completions service for dialogue and image analysis.
type Client struct {
	chat        chatService
	textModel   string
	visionModel string
	timeout     time.Duration
}

// NewClient initializes a GenAI client. An API key is required; everything
// else has OpenRouter defaults.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		BaseURL:     DefaultBaseURL,
		TextModel:   DefaultTextModel,
		VisionModel: DefaultVisionModel,
		Timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not set")
	}

	cli := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	)
	slog.Debug("GenAI client initialized", "baseURL", cfg.BaseURL, "textModel", cfg.TextModel, "visionModel", cfg.VisionModel)

	return &Client{
		chat:        completionsAdapter{cli: cli},
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		timeout:     cfg.Timeout,
	}, nil
}

// CompleteText runs one dialogue turn: persona prompt, recent history, then
// the user message. The reply comes back with markdown artifacts stripped.
func (c *Client) CompleteText(ctx context.Context, systemPrompt string, history []models.ConversationMessage, userMessage string) (string, error) {
	messages := buildMessages(systemPrompt, history)
	messages = append(messages, openai.UserMessage(userMessage))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.textModel),
		Messages:    messages,
		MaxTokens:   openai.Int(textMaxTokens),
		Temperature: openai.Float(temperature),
	}
	return c.complete(ctx, params)
}

// CompleteVision runs one image analysis turn against the vision model. The
// image travels inline as a base64 data URL.
func (c *Client) CompleteVision(ctx context.Context, systemPrompt string, history []models.ConversationMessage, promptText string, image []byte) (string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	messages := buildMessages(systemPrompt, history)
	messages = append(messages, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(promptText),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
	}))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.visionModel),
		Messages:    messages,
		MaxTokens:   openai.Int(visionMaxTokens),
		Temperature: openai.Float(temperature),
	}
	return c.complete(ctx, params)
}

func (c *Client) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		slog.Error("GenAI completion failed", "error", err, "model", params.Model)
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return CleanFormatting(resp.Choices[0].Message.Content), nil
}

// buildMessages turns the recent conversation history into chat messages
// after the system prompt. The window is trimmed to the last six entries to
// keep token usage bounded.
func buildMessages(systemPrompt string, history []models.ConversationMessage) []openai.ChatCompletionMessageParamUnion {
	if len(history) > 6 {
		history = history[len(history)-6:]
	}
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, m := range history {
		switch m.Sender {
		case models.SenderUser:
			messages = append(messages, openai.UserMessage(m.Text))
		case models.SenderBot:
			messages = append(messages, openai.AssistantMessage(m.Text))
		}
	}
	return messages
}

var (
	boldRe      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	headingRe   = regexp.MustCompile(`#{1,3}\s*`)
	italicRe    = regexp.MustCompile(`\*(.*?)\*`)
	underlineRe = regexp.MustCompile(`__(.*?)__`)
	blankRunRe  = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// CleanFormatting strips markdown artifacts the models emit despite being
// told not to: bold and italic markers, heading prefixes and runs of blank
// lines.
func CleanFormatting(text string) string {
	text = boldRe.ReplaceAllString(text, "$1")
	text = headingRe.ReplaceAllString(text, "")
	text = italicRe.ReplaceAllString(text, "$1")
	text = underlineRe.ReplaceAllString(text, "$1")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return text
}
