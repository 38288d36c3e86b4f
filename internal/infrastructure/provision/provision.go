// Package provision unpacks the bundled materials archive once per deployment.
package provision

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Result string

const (
	ResultExtracted      Result = "extracted"
	ResultNoArchive      Result = "no_archive"
	ResultAlreadyPresent Result = "already_provisioned"
)

type Provisioner struct {
	archivePath string
	destDir     string
	markerName  string
	logger      *slog.Logger
}

func New(archivePath, destDir, markerName string, logger *slog.Logger) *Provisioner {
	if destDir == "" {
		destDir = "."
	}
	if markerName == "" {
		markerName = ".materials.provisioned"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		archivePath: archivePath,
		destDir:     destDir,
		markerName:  markerName,
		logger:      logger,
	}
}

func (p *Provisioner) MarkerPath() string {
	return filepath.Join(p.destDir, p.markerName)
}

// Ensure extracts the archive unless the marker shows it already ran.
// Existing files with the same names are overwritten on the first run.
func (p *Provisioner) Ensure(ctx context.Context) (Result, error) {
	if _, err := os.Stat(p.MarkerPath()); err == nil {
		p.logger.Info("provision_skipped", "reason", string(ResultAlreadyPresent), "marker", p.MarkerPath())
		return ResultAlreadyPresent, nil
	}
	if p.archivePath == "" {
		return ResultNoArchive, nil
	}
	if _, err := os.Stat(p.archivePath); errors.Is(err, fs.ErrNotExist) {
		p.logger.Info("provision_skipped", "reason", string(ResultNoArchive), "archive", p.archivePath)
		return ResultNoArchive, nil
	}

	count, err := p.extract(ctx)
	if err != nil {
		return "", err
	}

	marker := fmt.Sprintf("archive=%s\nfiles=%d\nat=%s\n", filepath.Base(p.archivePath), count, time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(p.MarkerPath(), []byte(marker), 0o644); err != nil {
		return "", fmt.Errorf("write provision marker: %w", err)
	}
	p.logger.Info("provision_completed", "archive", p.archivePath, "dest", p.destDir, "files", count)
	return ResultExtracted, nil
}

func (p *Provisioner) extract(ctx context.Context) (int, error) {
	zr, err := zip.OpenReader(p.archivePath)
	if err != nil {
		return 0, fmt.Errorf("open materials archive: %w", err)
	}
	defer zr.Close()

	if err := os.MkdirAll(p.destDir, 0o755); err != nil {
		return 0, fmt.Errorf("create provision dest: %w", err)
	}
	root, err := filepath.Abs(p.destDir)
	if err != nil {
		return 0, fmt.Errorf("resolve provision dest: %w", err)
	}

	files := 0
	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		target, err := safeJoin(root, entry.Name)
		if err != nil {
			return files, err
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return files, fmt.Errorf("create dir %s: %w", entry.Name, err)
			}
			continue
		}
		if err := writeEntry(entry, target); err != nil {
			return files, err
		}
		files++
	}
	return files, nil
}

func writeEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", entry.Name, err)
	}
	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("extract %s: %w", entry.Name, err)
	}
	return dst.Close()
}

// safeJoin rejects entries that would land outside root.
func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return target, nil
}
