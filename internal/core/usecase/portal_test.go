package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/training-portal/internal/core/domain"
)

type materialStoreFake struct {
	files map[string]string
	// stale names are listed but no longer on disk.
	stale []string
}

func (f *materialStoreFake) List(_ context.Context) ([]domain.Material, error) {
	out := make([]domain.Material, 0, len(f.files)+len(f.stale))
	for name, body := range f.files {
		out = append(out, domain.Material{Name: name, Size: int64(len(body))})
	}
	for _, name := range f.stale {
		out = append(out, domain.Material{Name: name})
	}
	return out, nil
}

func (f *materialStoreFake) Stat(_ context.Context, name string) (domain.Material, error) {
	body, ok := f.files[name]
	if !ok {
		return domain.Material{}, domain.WrapError(domain.ErrMaterialNotFound, "stat", errors.New(name))
	}
	return domain.Material{Name: name, Size: int64(len(body))}, nil
}

func (f *materialStoreFake) Open(_ context.Context, name string) (io.ReadCloser, error) {
	body, ok := f.files[name]
	if !ok {
		return nil, domain.WrapError(domain.ErrMaterialNotFound, "open", errors.New(name))
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type extractorFake struct {
	store *materialStoreFake
	err   error
}

func (f *extractorFake) Extract(ctx context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if domain.FormatForName(name) != domain.FormatText {
		return "", nil
	}
	if _, err := f.store.Stat(ctx, name); err != nil {
		return "", err
	}
	return f.store.files[name], nil
}

type portalFixture struct {
	uc        *PortalUseCase
	store     *materialStoreFake
	accessLog *accessLogFake
	model     *modelFake
	extractor *extractorFake
}

func newPortalFixture(files map[string]string) *portalFixture {
	store := &materialStoreFake{files: files}
	accessLog := &accessLogFake{}
	model := &modelFake{out: "Employees must finish the course."}
	extractor := &extractorFake{store: store}
	recorder := NewRecordAccessUseCase(accessLog, nil, nil, discardLogger())
	summarizer := NewSummarizeUseCase(model, SummaryConfig{}, nil)
	return &portalFixture{
		uc:        NewPortalUseCase(store, extractor, summarizer, recorder, accessLog, discardLogger()),
		store:     store,
		accessLog: accessLog,
		model:     model,
		extractor: extractor,
	}
}

func TestPortalPageIdle(t *testing.T) {
	fx := newPortalFixture(map[string]string{})

	view, err := fx.uc.Page(context.Background())
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if view.Outcome.State != domain.StateIdle {
		t.Fatalf("expected idle, got %s", view.Outcome.State)
	}
	if len(view.Materials) != 0 || view.Admin.Log.Exists {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestPortalSubmitValidTextMaterial(t *testing.T) {
	fx := newPortalFixture(map[string]string{"policy.txt": "Employees must complete training."})

	view, err := fx.uc.Submit(context.Background(), domain.Submission{
		Name: "Jane Doe", Email: "jane@co.com", Material: "policy.txt",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	out := view.Outcome
	if out.State != domain.StateValid || out.Result.Message != "Access recorded for Jane Doe." {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.Summary != "Employees must finish the course." || !out.DownloadAvailable || out.Error != "" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(view.Admin.Log.Records) != 1 || view.Admin.Log.Records[0].Name != "Jane Doe" {
		t.Fatalf("admin view must include the new row, got %+v", view.Admin.Log)
	}
	if fx.model.inputs[0] != "Employees must complete training." {
		t.Fatalf("unexpected model input %q", fx.model.inputs[0])
	}
}

func TestPortalSubmitMissingIdentity(t *testing.T) {
	fx := newPortalFixture(map[string]string{"policy.txt": "text"})

	view, err := fx.uc.Submit(context.Background(), domain.Submission{Email: "jane@co.com", Material: "policy.txt"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if view.Outcome.State != domain.StateInvalid || view.Outcome.Result.Message != domain.MessageMissingIdentity {
		t.Fatalf("unexpected outcome %+v", view.Outcome)
	}
	if view.Outcome.Summary != "" || view.Outcome.DownloadAvailable {
		t.Fatalf("invalid submission must not show preview")
	}
	if len(fx.accessLog.records) != 0 || fx.model.calls != 0 {
		t.Fatalf("invalid submission must not write or summarize")
	}
}

func TestPortalSubmitWithoutMaterialStaysIdle(t *testing.T) {
	fx := newPortalFixture(map[string]string{})

	view, err := fx.uc.Submit(context.Background(), domain.Submission{Name: "Jane", Email: "jane@co.com"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if view.Outcome.State != domain.StateIdle || len(fx.accessLog.records) != 0 {
		t.Fatalf("expected idle with no writes, got %+v", view.Outcome)
	}
}

func TestPortalSubmitUnsupportedFormatShowsSentinel(t *testing.T) {
	fx := newPortalFixture(map[string]string{"slides.pptx": "binary"})

	view, err := fx.uc.Submit(context.Background(), domain.Submission{
		Name: "Jane", Email: "jane@co.com", Material: "slides.pptx",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if view.Outcome.Summary != domain.SentinelSummary || !view.Outcome.DownloadAvailable {
		t.Fatalf("unexpected outcome %+v", view.Outcome)
	}
	if fx.model.calls != 0 {
		t.Fatalf("model must not be called for unsupported formats")
	}
}

func TestPortalSubmitMissingFileAfterRecord(t *testing.T) {
	fx := newPortalFixture(map[string]string{})
	fx.store.stale = []string{"gone.txt"}

	view, err := fx.uc.Submit(context.Background(), domain.Submission{
		Name: "Jane", Email: "jane@co.com", Material: "gone.txt",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	out := view.Outcome
	if out.State != domain.StateValid || out.Error != domain.MessageFileNotFound || out.DownloadAvailable {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.Summary != domain.SentinelSummary {
		t.Fatalf("expected sentinel, got %q", out.Summary)
	}
	if len(fx.accessLog.records) != 1 {
		t.Fatalf("access must still be recorded")
	}
}

func TestPortalSubmitUnlistedMaterialIsNotRecorded(t *testing.T) {
	fx := newPortalFixture(map[string]string{"policy.txt": "text"})

	_, err := fx.uc.Submit(context.Background(), domain.Submission{
		Name: "Jane", Email: "jane@co.com", Material: "forged.txt",
	})
	if !domain.IsKind(err, domain.ErrMaterialNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(fx.accessLog.records) != 0 || fx.model.calls != 0 {
		t.Fatalf("unlisted material must not be recorded or summarized")
	}
}

func TestPortalSubmitCorruptDocumentFallsBackToSentinel(t *testing.T) {
	fx := newPortalFixture(map[string]string{"broken.pdf": "not a pdf"})
	fx.extractor.err = errors.New("malformed pdf")

	view, err := fx.uc.Submit(context.Background(), domain.Submission{
		Name: "Jane", Email: "jane@co.com", Material: "broken.pdf",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if view.Outcome.Summary != domain.SentinelSummary {
		t.Fatalf("expected sentinel, got %q", view.Outcome.Summary)
	}
}

func TestPortalSubmitModelFailurePropagates(t *testing.T) {
	fx := newPortalFixture(map[string]string{"policy.txt": "text"})
	fx.model.err = domain.WrapError(domain.ErrTemporary, "generate", errors.New("down"))

	_, err := fx.uc.Submit(context.Background(), domain.Submission{
		Name: "Jane", Email: "jane@co.com", Material: "policy.txt",
	})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestPortalSubmitRejectsTraversal(t *testing.T) {
	fx := newPortalFixture(map[string]string{})

	_, err := fx.uc.Submit(context.Background(), domain.Submission{
		Name: "Jane", Email: "jane@co.com", Material: "../secret.txt",
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(fx.accessLog.records) != 0 {
		t.Fatalf("rejected material must not be recorded")
	}
}

func TestPortalOpenMaterial(t *testing.T) {
	fx := newPortalFixture(map[string]string{"policy.txt": "body"})

	rc, item, err := fx.uc.OpenMaterial(context.Background(), "policy.txt")
	if err != nil {
		t.Fatalf("OpenMaterial() error = %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "body" || item.Size != 4 {
		t.Fatalf("unexpected download %q %+v", data, item)
	}

	if _, _, err := fx.uc.OpenMaterial(context.Background(), "missing.txt"); !domain.IsKind(err, domain.ErrMaterialNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPortalOpenAccessLog(t *testing.T) {
	fx := newPortalFixture(map[string]string{"policy.txt": "body"})

	if _, err := fx.uc.OpenAccessLog(context.Background()); !domain.IsKind(err, domain.ErrMaterialNotFound) {
		t.Fatalf("expected not found before first record, got %v", err)
	}
	if _, err := fx.uc.Submit(context.Background(), domain.Submission{Name: "A", Email: "a@co.com", Material: "policy.txt"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	rc, err := fx.uc.OpenAccessLog(context.Background())
	if err != nil {
		t.Fatalf("OpenAccessLog() error = %v", err)
	}
	_ = rc.Close()
}
