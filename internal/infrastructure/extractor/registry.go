package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/training-portal/internal/core/domain"
	"github.com/kirillkom/training-portal/internal/core/ports"
	"github.com/kirillkom/training-portal/internal/infrastructure/extractor/docx"
	"github.com/kirillkom/training-portal/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/training-portal/internal/infrastructure/extractor/plaintext"
)

// FormatExtractor turns the raw bytes of one document format into text.
type FormatExtractor interface {
	ExtractBytes(raw []byte) (string, error)
}

// Registry dispatches extraction through a fixed format lookup table.
type Registry struct {
	store   ports.MaterialStore
	formats map[domain.Format]FormatExtractor
}

func NewRegistry(store ports.MaterialStore, formats map[domain.Format]FormatExtractor) *Registry {
	table := make(map[domain.Format]FormatExtractor, len(formats))
	for format, ex := range formats {
		table[format] = ex
	}
	return &Registry{store: store, formats: table}
}

// NewDefault registers the text, Word and PDF extractors.
func NewDefault(store ports.MaterialStore) *Registry {
	return NewRegistry(store, map[domain.Format]FormatExtractor{
		domain.FormatText: plaintext.NewExtractor(),
		domain.FormatDocx: docx.NewExtractor(),
		domain.FormatPDF:  pdf.NewExtractor(),
	})
}

// Extract returns "" for formats without a registered extractor; the file is not read.
func (r *Registry) Extract(ctx context.Context, name string) (string, error) {
	format := domain.FormatForName(name)
	ex, ok := r.formats[format]
	if !ok {
		return "", nil
	}

	reader, err := r.store.Open(ctx, name)
	if err != nil {
		return "", fmt.Errorf("open source material: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source material: %w", err)
	}

	text, err := ex.ExtractBytes(raw)
	if err != nil {
		return "", fmt.Errorf("extract %s text from %s: %w", format, name, err)
	}
	return strings.TrimSpace(text), nil
}
