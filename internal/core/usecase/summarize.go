package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/training-portal/internal/core/domain"
	"github.com/kirillkom/training-portal/internal/core/ports"
)

const (
	DefaultMaxInputChars    = 3000
	DefaultSummaryMinLength = 50
	DefaultSummaryMaxLength = 150
)

type SummaryConfig struct {
	MaxInputChars int
	MinLength     int
	MaxLength     int
}

func (c SummaryConfig) normalize() SummaryConfig {
	if c.MaxInputChars <= 0 {
		c.MaxInputChars = DefaultMaxInputChars
	}
	if c.MinLength <= 0 {
		c.MinLength = DefaultSummaryMinLength
	}
	if c.MaxLength <= 0 {
		c.MaxLength = DefaultSummaryMaxLength
	}
	if c.MinLength > c.MaxLength {
		c.MinLength = c.MaxLength
	}
	return c
}

type SummarizeUseCase struct {
	model    ports.SummaryModel
	cfg      SummaryConfig
	observer Observer
}

func NewSummarizeUseCase(model ports.SummaryModel, cfg SummaryConfig, observer Observer) *SummarizeUseCase {
	return &SummarizeUseCase{
		model:    model,
		cfg:      cfg.normalize(),
		observer: observerOrNop(observer),
	}
}

// Summarize cuts the input to the first MaxInputChars characters and returns
// the sentinel without calling the model when nothing but whitespace is left.
func (uc *SummarizeUseCase) Summarize(ctx context.Context, text string) (string, error) {
	text = truncateChars(text, uc.cfg.MaxInputChars)
	if strings.TrimSpace(text) == "" {
		uc.observer.ObserveSummary("sentinel", 0)
		return domain.SentinelSummary, nil
	}

	start := time.Now()
	summary, err := uc.model.Summarize(ctx, text, ports.SummaryOptions{
		MinLength: uc.cfg.MinLength,
		MaxLength: uc.cfg.MaxLength,
	})
	if err != nil {
		uc.observer.ObserveSummary("error", time.Since(start))
		return "", fmt.Errorf("summarize material: %w", err)
	}
	uc.observer.ObserveSummary("generated", time.Since(start))

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return domain.SentinelSummary, nil
	}
	return summary, nil
}

func truncateChars(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}
