package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/guttosm/profitpulse/internal/analysis"
	"github.com/guttosm/profitpulse/internal/domain/models"
)

// FileStore keeps results in a plain text file, one delimited block per
// analysis, with a banner at the top of a fresh file.
//
// Every Append is a full open → single write → fsync → close cycle. The mutex
// serializes writers inside this process; O_APPEND keeps whole blocks intact
// for writers in other processes.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates the parent directory of path if needed.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create results dir: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string { return s.path }

// Append writes one record block (preceded by the banner when the file is empty).
func (s *FileStore) Append(_ context.Context, req *models.AnalysisRequest, res analysis.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open results file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat results file: %w", err)
	}

	var lines []string
	if info.Size() == 0 {
		lines = bannerLines()
	}
	lines = append(lines, newRecord(req, res).lines()...)

	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync results file: %w", err)
	}
	return nil
}

// ListAll returns every line of the file. A missing file is an empty log.
func (s *FileStore) ListAll(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("open results file: %w", err)
	}
	defer func() { _ = f.Close() }()

	lines := []string{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	return lines, nil
}

// Clear truncates the file (creating it if absent).
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, nil, 0o644); err != nil {
		return fmt.Errorf("clear results file: %w", err)
	}
	return nil
}

// Ping checks that the directory holding the file is still there.
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return fmt.Errorf("results dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("results dir %s is not a directory", filepath.Dir(s.path))
	}
	return nil
}
