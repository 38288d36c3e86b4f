package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/kirillkom/training-portal/internal/core/domain"
)

// Storage is the material store: a flat directory of training documents.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./materials"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create materials dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// List returns regular files directly under the root, sorted by name.
// A missing root is recreated and reported as empty.
func (s *Storage) List(_ context.Context) ([]domain.Material, error) {
	entries, err := os.ReadDir(s.basePath)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(s.basePath, 0o755); err != nil {
			return nil, fmt.Errorf("create materials dir: %w", err)
		}
		return []domain.Material{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read materials dir: %w", err)
	}

	materials := make([]domain.Material, 0, len(entries))
	for _, entry := range entries {
		info, err := os.Stat(filepath.Join(s.basePath, entry.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		materials = append(materials, toMaterial(info))
	}
	sort.Slice(materials, func(i, j int) bool {
		return materials[i].Name < materials[j].Name
	})
	return materials, nil
}

func (s *Storage) Stat(_ context.Context, name string) (domain.Material, error) {
	path, err := s.resolve(name)
	if err != nil {
		return domain.Material{}, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Material{}, domain.WrapError(domain.ErrMaterialNotFound, "stat material", fmt.Errorf("name=%s", name))
	}
	if err != nil {
		return domain.Material{}, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return domain.Material{}, domain.WrapError(domain.ErrMaterialNotFound, "stat material", fmt.Errorf("name=%s is not a regular file", name))
	}
	return toMaterial(info), nil
}

func (s *Storage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if _, err := s.Stat(ctx, name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.basePath, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.WrapError(domain.ErrMaterialNotFound, "open material", fmt.Errorf("name=%s", name))
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *Storage) resolve(name string) (string, error) {
	if err := domain.ValidateMaterialName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, name), nil
}

func toMaterial(info fs.FileInfo) domain.Material {
	return domain.Material{
		Name:    info.Name(),
		Ext:     filepath.Ext(info.Name()),
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
	}
}
