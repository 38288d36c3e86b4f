package ports

import (
	"context"
	"io"

	"github.com/kirillkom/training-portal/internal/core/domain"
)

// Summarizer is the inbound contract for material previews.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// AccessRecorder validates and records access events.
type AccessRecorder interface {
	Record(ctx context.Context, name, email, material string) (domain.RecordResult, error)
}

// MaterialLister exposes the material catalog.
type MaterialLister interface {
	Materials(ctx context.Context) ([]domain.Material, error)
}

// PortalService is the inbound contract of the training portal page.
type PortalService interface {
	Page(ctx context.Context) (*domain.PageView, error)
	Submit(ctx context.Context, submission domain.Submission) (*domain.PageView, error)
	MaterialLister
	AccessLog(ctx context.Context) (domain.AccessLog, error)
	OpenMaterial(ctx context.Context, name string) (io.ReadCloser, domain.Material, error)
	OpenAccessLog(ctx context.Context) (io.ReadCloser, error)
}
