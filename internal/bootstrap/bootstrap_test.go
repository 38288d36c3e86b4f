package bootstrap

import (
	"archive/zip"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/training-portal/internal/config"
	"github.com/kirillkom/training-portal/internal/core/domain"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	return config.Config{
		MaterialsDir:            filepath.Join(root, "materials"),
		AccessLogPath:           filepath.Join(root, "access_log.xlsx"),
		AccessLogSheet:          "Sheet1",
		ProvisionArchive:        filepath.Join(root, "materials.zip"),
		ProvisionDest:           root,
		ProvisionMarker:         ".materials.provisioned",
		SummaryProvider:         ProviderOllama,
		OllamaURL:               "http://127.0.0.1:1",
		OllamaSummaryModel:      "llama3.1:8b",
		SummaryRetryMaxAttempts: 1,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.SummaryProvider = "mystery"

	if _, err := New(context.Background(), cfg, discardLogger()); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestNewBuildsPortalWithOpenAIProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.SummaryProvider = ProviderOpenAI
	cfg.OpenAISummaryModel = "gpt-4o-mini"

	app, err := New(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()
	if app.Portal == nil {
		t.Fatalf("expected portal service")
	}
}

func TestProvisionThenPageListsMaterials(t *testing.T) {
	cfg := testConfig(t)
	writeArchive(t, cfg.ProvisionArchive, map[string]string{
		"materials/policy.txt": "Employees must complete training.",
		"materials/safety.txt": "Wear a helmet.",
	})

	app, err := New(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if err := app.Provision(context.Background()); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.ProvisionDest, cfg.ProvisionMarker)); err != nil {
		t.Fatalf("marker must exist: %v", err)
	}

	view, err := app.Portal.Page(context.Background())
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if len(view.Materials) != 2 || view.Materials[0].Name != "policy.txt" {
		t.Fatalf("unexpected materials %+v", view.Materials)
	}
	if view.Outcome.State != domain.StateIdle || view.Admin.Log.Exists {
		t.Fatalf("unexpected view %+v", view)
	}

	if err := app.Provision(context.Background()); err != nil {
		t.Fatalf("second Provision() error = %v", err)
	}
}

func writeArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := io.WriteString(w, body); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
}
