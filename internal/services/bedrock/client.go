// Package bedrock invokes Anthropic models on Amazon Bedrock for translation
// and speaker-notes generation.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"pptx-translator/internal/config"
	"pptx-translator/internal/logging"
	"pptx-translator/internal/services"
	"pptx-translator/internal/translate"
)

const backendName = "bedrock"

// API is the subset of *bedrockruntime.Client the adapter calls.
type API interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client sends Anthropic messages payloads through InvokeModel.
type Client struct {
	api     API
	modelID string
	version string
	logger  *slog.Logger
}

// New wraps api using the model settings from cfg.
func New(api API, cfg config.Bedrock, logger *slog.Logger) *Client {
	return &Client{
		api:     api,
		modelID: strings.TrimSpace(cfg.ModelID),
		version: strings.TrimSpace(cfg.AnthropicVersion),
		logger:  logging.NewComponentLogger(logger, backendName),
	}
}

// NewFromConfig builds a client on top of a resolved AWS configuration.
func NewFromConfig(awsCfg aws.Config, cfg config.Bedrock, logger *slog.Logger) *Client {
	return New(bedrockruntime.NewFromConfig(awsCfg), cfg, logger)
}

// Message is one request to the model.
type Message struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

type requestPayload struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Temperature      float64          `json:"temperature"`
	System           string           `json:"system,omitempty"`
	Messages         []messagePayload `json:"messages"`
}

type messagePayload struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responsePayload struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// Invoke runs msg and returns the concatenated text blocks of the reply.
func (c *Client) Invoke(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(requestPayload{
		AnthropicVersion: c.version,
		MaxTokens:        msg.MaxTokens,
		Temperature:      msg.Temperature,
		System:           msg.System,
		Messages: []messagePayload{{
			Role:    "user",
			Content: []contentBlock{{Type: "text", Text: msg.User}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("encode bedrock payload: %w", err)
	}
	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", err
	}
	var resp responsePayload
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", services.Wrap(services.ErrExternal, backendName, "invoke model", "decode response", err)
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", services.Wrap(services.ErrExternal, backendName, "invoke model", "empty response", nil)
	}
	if resp.StopReason == "max_tokens" {
		c.logger.Warn("model reply truncated",
			logging.String(logging.FieldEventType, "bedrock_truncated"),
			logging.Int("max_tokens", msg.MaxTokens),
			logging.Hint("raise bedrock.max_tokens or notes.max_tokens"),
		)
	}
	return text, nil
}

func classify(err error, op string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ValidationException" {
		if translate.InputRejected(apiErr.ErrorMessage()) {
			return translate.Validation(backendName, "request rejected", err)
		}
		return services.Wrap(services.ErrConfiguration, backendName, op, "request refused; check bedrock.model_id and bedrock.anthropic_version", err)
	}
	var denied *types.AccessDeniedException
	if errors.As(err, &denied) {
		return services.Wrap(services.ErrConfiguration, backendName, op, "model access denied", err)
	}
	if errors.Is(err, services.ErrExternal) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, backendName, op, "request cancelled", err)
	}
	return services.Wrap(services.ErrExternal, backendName, op, "invoke model failed", err)
}
