// Package awstranslate adapts Amazon Translate to the translate interfaces.
package awstranslate

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awstr "github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/aws/aws-sdk-go-v2/service/translate/types"
	"github.com/aws/smithy-go"

	"pptx-translator/internal/logging"
	"pptx-translator/internal/services"
	"pptx-translator/internal/translate"
)

const backendName = "amazon-translate"

// API is the subset of *translate.Client the adapter calls.
type API interface {
	TranslateText(ctx context.Context, in *awstr.TranslateTextInput, optFns ...func(*awstr.Options)) (*awstr.TranslateTextOutput, error)
	ImportTerminology(ctx context.Context, in *awstr.ImportTerminologyInput, optFns ...func(*awstr.Options)) (*awstr.ImportTerminologyOutput, error)
}

// Client implements translate.Translator and translate.TerminologyImporter.
type Client struct {
	api    API
	logger *slog.Logger
}

// New wraps an existing API implementation.
func New(api API, logger *slog.Logger) *Client {
	return &Client{api: api, logger: logging.NewComponentLogger(logger, backendName)}
}

// NewFromConfig builds a client on top of a resolved AWS configuration.
func NewFromConfig(cfg aws.Config, logger *slog.Logger) *Client {
	return New(awstr.NewFromConfig(cfg), logger)
}

// Translate calls TranslateText. Terminology names are passed through as-is.
func (c *Client) Translate(ctx context.Context, req translate.Request) (string, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = translate.AutoSource
	}
	in := &awstr.TranslateTextInput{
		Text:               aws.String(req.Text),
		SourceLanguageCode: aws.String(source),
		TargetLanguageCode: aws.String(req.Target),
	}
	if len(req.Terminology) > 0 {
		in.TerminologyNames = append([]string(nil), req.Terminology...)
	}
	out, err := c.api.TranslateText(ctx, in)
	if err != nil {
		return "", classify(err, "translate text")
	}
	if len(out.AppliedTerminologies) > 0 {
		logging.WithContext(ctx, c.logger).Debug("terminology applied",
			logging.Int("terminologies", len(out.AppliedTerminologies)))
	}
	return aws.ToString(out.TranslatedText), nil
}

// ImportTerminology uploads a glossary under term.Name.
func (c *Client) ImportTerminology(ctx context.Context, term translate.Terminology) error {
	format := types.TerminologyDataFormat(term.Format)
	if term.Format == "" {
		format = types.TerminologyDataFormatCsv
	}
	merge := types.MergeStrategy(term.MergeStrategy)
	if term.MergeStrategy == "" {
		merge = types.MergeStrategyOverwrite
	}
	out, err := c.api.ImportTerminology(ctx, &awstr.ImportTerminologyInput{
		Name:          aws.String(term.Name),
		MergeStrategy: merge,
		TerminologyData: &types.TerminologyData{
			File:   term.Data,
			Format: format,
		},
	})
	if err != nil {
		return classify(err, "import terminology")
	}
	attrs := []logging.Attr{logging.String("name", term.Name)}
	if out.TerminologyProperties != nil {
		attrs = append(attrs, logging.Int("terms", int(aws.ToInt32(out.TerminologyProperties.TermCount))))
	}
	c.logger.Debug("terminology imported", logging.Args(attrs...)...)
	return nil
}

func classify(err error, op string) error {
	var tooLong *types.TextSizeLimitExceededException
	if errors.As(err, &tooLong) {
		return translate.Validation(backendName, "text exceeds size limit", err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ValidationException" {
		return translate.Validation(backendName, "request rejected", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, backendName, op, "request cancelled", err)
	}
	return services.Wrap(services.ErrExternal, backendName, op, "call failed", err)
}
