package domain

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// Format is the closed set of material encodings the portal can preview.
type Format string

const (
	FormatText        Format = "text"
	FormatDocx        Format = "docx"
	FormatPDF         Format = "pdf"
	FormatUnsupported Format = "unsupported"
)

var formatsByExt = map[string]Format{
	".txt":  FormatText,
	".docx": FormatDocx,
	".pdf":  FormatPDF,
}

// FormatForName resolves the preview format from a file name's extension, case-insensitively.
func FormatForName(name string) Format {
	if f, ok := formatsByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return f
	}
	return FormatUnsupported
}

type Material struct {
	Name    string    `json:"name"`
	Ext     string    `json:"ext"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

func (m Material) Format() Format {
	return FormatForName(m.Name)
}

// ValidateMaterialName accepts only bare file names located directly in the store root.
func ValidateMaterialName(name string) error {
	if strings.TrimSpace(name) == "" {
		return WrapError(ErrInvalidInput, "validate material", errors.New("material name is required"))
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return WrapError(ErrInvalidInput, "validate material", errors.New("material name must be a plain file name"))
	}
	return nil
}
