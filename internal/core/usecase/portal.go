package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kirillkom/training-portal/internal/core/domain"
	"github.com/kirillkom/training-portal/internal/core/ports"
)

// PortalUseCase drives one page interaction: list materials, record access,
// preview the selected material and render the admin view.
type PortalUseCase struct {
	materials  ports.MaterialStore
	extractor  ports.TextExtractor
	summarizer ports.Summarizer
	recorder   ports.AccessRecorder
	accessLog  ports.AccessLogStore
	logger     *slog.Logger
}

func NewPortalUseCase(
	materials ports.MaterialStore,
	extractor ports.TextExtractor,
	summarizer ports.Summarizer,
	recorder ports.AccessRecorder,
	accessLog ports.AccessLogStore,
	logger *slog.Logger,
) *PortalUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortalUseCase{
		materials:  materials,
		extractor:  extractor,
		summarizer: summarizer,
		recorder:   recorder,
		accessLog:  accessLog,
		logger:     logger,
	}
}

func (uc *PortalUseCase) Page(ctx context.Context) (*domain.PageView, error) {
	return uc.render(ctx, domain.SubmissionOutcome{State: domain.StateIdle})
}

// Submit handles one form submission. Without a selected material nothing is
// recorded and the page stays idle. A material that is not currently listed is
// rejected before anything is recorded.
func (uc *PortalUseCase) Submit(ctx context.Context, submission domain.Submission) (*domain.PageView, error) {
	material := strings.TrimSpace(submission.Material)
	if material == "" {
		return uc.Page(ctx)
	}
	if err := domain.ValidateMaterialName(material); err != nil {
		return nil, err
	}
	if err := uc.requireListed(ctx, material); err != nil {
		return nil, err
	}

	result, err := uc.recorder.Record(ctx, submission.Name, submission.Email, material)
	if err != nil {
		return nil, fmt.Errorf("record access: %w", err)
	}
	if !result.OK {
		return uc.render(ctx, domain.SubmissionOutcome{
			State:    domain.StateInvalid,
			Material: material,
			Result:   result,
		})
	}

	outcome := domain.SubmissionOutcome{
		State:    domain.StateValid,
		Material: material,
		Result:   result,
	}

	text, err := uc.extract(ctx, material)
	if err != nil {
		return nil, err
	}
	summary, err := uc.summarizer.Summarize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", material, err)
	}
	outcome.Summary = summary

	if _, err := uc.materials.Stat(ctx, material); err != nil {
		if !domain.IsKind(err, domain.ErrMaterialNotFound) {
			return nil, fmt.Errorf("stat material: %w", err)
		}
		outcome.Error = domain.MessageFileNotFound
	} else {
		outcome.DownloadAvailable = true
	}

	return uc.render(ctx, outcome)
}

func (uc *PortalUseCase) requireListed(ctx context.Context, material string) error {
	items, err := uc.Materials(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Name == material {
			return nil
		}
	}
	return domain.WrapError(domain.ErrMaterialNotFound, "submit access", fmt.Errorf("material %q is not listed", material))
}

// extract treats a vanished file or an unreadable document as "no text" so the
// recorded access still gets a page with the sentinel preview.
func (uc *PortalUseCase) extract(ctx context.Context, material string) (string, error) {
	text, err := uc.extractor.Extract(ctx, material)
	if err == nil {
		return text, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	if domain.IsKind(err, domain.ErrMaterialNotFound) {
		return "", nil
	}
	uc.logger.Warn("material_extract_failed", "material", material, "error", err)
	return "", nil
}

func (uc *PortalUseCase) Materials(ctx context.Context) ([]domain.Material, error) {
	items, err := uc.materials.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return items, nil
}

func (uc *PortalUseCase) AccessLog(ctx context.Context) (domain.AccessLog, error) {
	log, err := uc.accessLog.Load(ctx)
	if err != nil {
		return domain.AccessLog{}, fmt.Errorf("load access log: %w", err)
	}
	return log, nil
}

func (uc *PortalUseCase) OpenMaterial(ctx context.Context, name string) (io.ReadCloser, domain.Material, error) {
	if err := domain.ValidateMaterialName(name); err != nil {
		return nil, domain.Material{}, err
	}
	item, err := uc.materials.Stat(ctx, name)
	if err != nil {
		return nil, domain.Material{}, err
	}
	rc, err := uc.materials.Open(ctx, name)
	if err != nil {
		return nil, domain.Material{}, err
	}
	uc.logger.Info("material_download", "material", name, "size", item.Size)
	return rc, item, nil
}

func (uc *PortalUseCase) OpenAccessLog(ctx context.Context) (io.ReadCloser, error) {
	return uc.accessLog.Open(ctx)
}

func (uc *PortalUseCase) render(ctx context.Context, outcome domain.SubmissionOutcome) (*domain.PageView, error) {
	items, err := uc.Materials(ctx)
	if err != nil {
		return nil, err
	}
	log, err := uc.AccessLog(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.PageView{
		Materials: items,
		Outcome:   outcome,
		Admin:     domain.AdminView{Log: log},
	}, nil
}
