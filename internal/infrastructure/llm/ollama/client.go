package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/training-portal/internal/core/ports"
	"github.com/kirillkom/training-portal/internal/infrastructure/resilience"
)

const defaultSeed = 42

type Client struct {
	baseURL    string
	model      string
	seed       int
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Seed               int
	HTTPClient         *http.Client
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, model string) *Client {
	return NewWithOptions(baseURL, model, Options{})
}

func NewWithOptions(baseURL, model string, options Options) *Client {
	httpClient := options.HTTPClient
	if httpClient == nil {
		// Summaries are blocking; the timeout only guards against a hung backend.
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	seed := options.Seed
	if seed == 0 {
		seed = defaultSeed
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		seed:       seed,
		httpClient: httpClient,
		executor:   options.ResilienceExecutor,
	}
}

func (c *Client) Model() string {
	return c.model
}

// Summarizer adapts the client to ports.SummaryModel.
type Summarizer struct {
	client *Client
}

func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

func (s *Summarizer) Summarize(ctx context.Context, text string, opts ports.SummaryOptions) (string, error) {
	reqBody := map[string]any{
		"model":  s.client.model,
		"prompt": buildSummaryPrompt(text, opts),
		"stream": false,
		"options": map[string]any{
			"temperature": 0,
			"seed":        s.client.seed,
			"num_predict": tokenBudget(opts.MaxLength),
		},
	}
	return s.client.generate(ctx, reqBody)
}

// Preload asks the server to load the model and keep it resident for the
// lifetime of the process.
func (c *Client) Preload(ctx context.Context) error {
	reqBody := map[string]any{
		"model":      c.model,
		"keep_alive": -1,
	}
	_, err := c.generate(ctx, reqBody)
	return err
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	call := func(callCtx context.Context) (string, error) {
		var response struct {
			Response string `json:"response"`
		}
		if err := c.postJSON(callCtx, "/api/generate", reqBody, &response, "generate"); err != nil {
			return "", err
		}
		return strings.TrimSpace(response.Response), nil
	}

	out, err := resilience.Do(ctx, c.executor, "ollama.generate", call, classifyOllamaError)
	if err != nil {
		return "", wrapTemporaryIfNeeded("ollama generate", err)
	}
	return out, nil
}

// tokenBudget converts a word bound into a generation limit with headroom.
func tokenBudget(maxWords int) int {
	if maxWords <= 0 {
		return 0
	}
	return maxWords * 4 / 3
}
