package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/training-portal/internal/core/domain"
	"github.com/kirillkom/training-portal/internal/core/ports"
	"github.com/kirillkom/training-portal/internal/infrastructure/resilience"
)

// ChatClient is the subset of *openai.Client used for summaries.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Seed       int
	HTTPClient *http.Client
}

func NewClient(cfg Config) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}
	return openai.NewClientWithConfig(clientConfig)
}

// Summarizer implements ports.SummaryModel over an OpenAI-compatible chat endpoint.
type Summarizer struct {
	client   ChatClient
	model    string
	seed     int
	executor *resilience.Executor
}

func NewSummarizer(client ChatClient, model string, seed int, executor *resilience.Executor) *Summarizer {
	return &Summarizer{client: client, model: model, seed: seed, executor: executor}
}

func (s *Summarizer) Summarize(ctx context.Context, text string, opts ports.SummaryOptions) (string, error) {
	seed := s.seed
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("You summarize internal training documents for employees. "+
					"Reply with one plain-text paragraph of %d to %d words. No headings or lists.", opts.MinLength, opts.MaxLength),
			},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens: opts.MaxLength * 4 / 3,
		// A zero temperature is dropped by omitempty and the server default applies.
		Temperature: math.SmallestNonzeroFloat32,
		Seed:        &seed,
	}

	call := func(callCtx context.Context) (string, error) {
		resp, err := s.client.CreateChatCompletion(callCtx, req)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("openai summary: empty choices")
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}

	out, err := resilience.Do(ctx, s.executor, "openai.chat", call, classifyOpenAIError)
	if err != nil {
		if classifyOpenAIError(err).Retryable {
			return "", domain.WrapError(domain.ErrTemporary, "openai summary", err)
		}
		return "", fmt.Errorf("openai summary: %w", err)
	}
	return out, nil
}

func classifyOpenAIError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status != 0 {
		switch status {
		case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
