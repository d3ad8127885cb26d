// Package store persists benchmark outputs to the local filesystem.
// Each benchmark execution gets its own timestamped directory so
// successive runs never overwrite each other.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// FileRunStore implements ports.RunStore under a results root.
// Layout:
//
//	<root>/<timestamp>-<short-uuid>/
//	    runs/<implementation>.json
//	    report.json
//	    <renderer artifacts>
type FileRunStore struct {
	runDir string
}

// NewFileRunStore creates the run directory and returns a store bound
// to it.
func NewFileRunStore(resultsDir string) (*FileRunStore, error) {
	if resultsDir == "" {
		return nil, fmt.Errorf("%w: results directory is required", domain.ErrInvalidConfiguration)
	}

	runID := fmt.Sprintf("%s-%s",
		time.Now().UTC().Format("20060102-150405"),
		uuid.NewString()[:8],
	)
	runDir := filepath.Join(resultsDir, runID)
	if err := os.MkdirAll(filepath.Join(runDir, "runs"), 0o750); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	return &FileRunStore{runDir: runDir}, nil
}

// Dir returns the run's output directory.
func (s *FileRunStore) Dir() string { return s.runDir }

// SaveRun writes the per-example results for one implementation.
func (s *FileRunStore) SaveRun(run domain.ImplementationRun) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run %q: %w", run.Name, err)
	}
	name := filepath.Join("runs", sanitizeFileName(run.Name)+".json")
	return s.writeAtomic(name, data)
}

// SaveReport writes the aggregated comparison table.
func (s *FileRunStore) SaveReport(report domain.ComparisonReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return s.writeAtomic("report.json", data)
}

// SaveArtifact writes a rendered artifact under the given file name.
func (s *FileRunStore) SaveArtifact(name string, data []byte) error {
	return s.writeAtomic(sanitizeFileName(name), data)
}

// writeAtomic stages the write in a temp file and renames it into
// place, so readers never observe a partial artifact.
func (s *FileRunStore) writeAtomic(name string, data []byte) error {
	path := filepath.Join(s.runDir, name)

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("staging %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

// sanitizeFileName replaces path separators so adapter names cannot
// escape the run directory.
func sanitizeFileName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case '/', '\\', ':':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

var _ ports.RunStore = (*FileRunStore)(nil)
