package ports

import (
	"context"
	"io"

	"github.com/kirillkom/training-portal/internal/core/domain"
)

// MaterialStore enumerates and opens training materials.
type MaterialStore interface {
	List(ctx context.Context) ([]domain.Material, error)
	Stat(ctx context.Context, name string) (domain.Material, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// TextExtractor turns a stored material into plain text. Unsupported formats yield "".
type TextExtractor interface {
	Extract(ctx context.Context, name string) (string, error)
}

type SummaryOptions struct {
	MinLength int
	MaxLength int
}

// SummaryModel is the pretrained summarization backend.
type SummaryModel interface {
	Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error)
}

// AccessLogStore persists access records in append order.
type AccessLogStore interface {
	Append(ctx context.Context, record domain.AccessRecord) error
	Load(ctx context.Context) (domain.AccessLog, error)
	Open(ctx context.Context) (io.ReadCloser, error)
}

// AccessEventPublisher notifies downstream systems about recorded access.
type AccessEventPublisher interface {
	PublishAccessRecorded(ctx context.Context, event domain.AccessRecorded) error
}
