package excel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/training-portal/internal/core/domain"
)

const DefaultSheet = "Sheet1"

// Store keeps the access log in a single .xlsx workbook. Appends are
// serialized and the workbook is replaced atomically, so concurrent
// submissions within one process never lose rows.
type Store struct {
	path  string
	sheet string

	mu sync.Mutex
}

func New(path, sheet string) (*Store, error) {
	if path == "" {
		path = "./access_log.xlsx"
	}
	if sheet == "" {
		sheet = DefaultSheet
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create access log dir: %w", err)
		}
	}
	return &Store{path: path, sheet: sheet}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Append(ctx context.Context, record domain.AccessRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, sheet, rows, err := s.openOrCreate()
	if err != nil {
		return err
	}
	defer f.Close()

	next := len(rows) + 1
	if len(rows) == 0 {
		if err := setRow(f, sheet, 1, domain.AccessLogColumns); err != nil {
			return err
		}
		next = 2
	}
	if err := setRow(f, sheet, next, record.Row()); err != nil {
		return err
	}
	return s.replace(f)
}

// Load returns every recorded row in append order. Exists is false when no
// log has been written yet.
func (s *Store) Load(ctx context.Context) (domain.AccessLog, error) {
	if err := ctx.Err(); err != nil {
		return domain.AccessLog{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.AccessLog{Exists: false, Records: []domain.AccessRecord{}}, nil
	}
	if err != nil {
		return domain.AccessLog{}, fmt.Errorf("open access log: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheetName(f))
	if err != nil {
		return domain.AccessLog{}, fmt.Errorf("read access log rows: %w", err)
	}

	records := make([]domain.AccessRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		records = append(records, toRecord(row))
	}
	return domain.AccessLog{Exists: true, Records: records}, nil
}

// Open returns a snapshot of the workbook bytes for download.
func (s *Store) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.WrapError(domain.ErrMaterialNotFound, "open access log", err)
	}
	if err != nil {
		return nil, fmt.Errorf("read access log: %w", err)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *Store) openOrCreate() (*excelize.File, string, [][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		f = excelize.NewFile()
		if s.sheet != DefaultSheet {
			if err := f.SetSheetName(DefaultSheet, s.sheet); err != nil {
				_ = f.Close()
				return nil, "", nil, fmt.Errorf("name access log sheet: %w", err)
			}
		}
		return f, s.sheet, nil, nil
	}
	if err != nil {
		return nil, "", nil, fmt.Errorf("open access log: %w", err)
	}

	sheet := s.sheetName(f)
	rows, err := f.GetRows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, "", nil, fmt.Errorf("read access log rows: %w", err)
	}
	return f, sheet, rows, nil
}

// sheetName falls back to the first sheet so logs written by other tools stay readable.
func (s *Store) sheetName(f *excelize.File) string {
	list := f.GetSheetList()
	for _, name := range list {
		if name == s.sheet {
			return name
		}
	}
	if len(list) > 0 {
		return list[0]
	}
	return s.sheet
}

func (s *Store) replace(f *excelize.File) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".access-log-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp access log: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if err := f.Write(tmp); err != nil {
		cleanup()
		return fmt.Errorf("write access log: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync access log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp access log: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace access log: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolve cell for row %d: %w", row, err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write access log row %d: %w", row, err)
	}
	return nil
}

// toRecord pads short rows; GetRows drops trailing empty cells.
func toRecord(row []string) domain.AccessRecord {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return domain.AccessRecord{Name: cell(0), Email: cell(1), Material: cell(2)}
}
