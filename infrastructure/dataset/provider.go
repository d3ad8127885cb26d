// Package dataset provides the caching dataset provider and the
// built-in dataset registry. Datasets are cached on disk with a
// SHA-256 manifest so repeated runs reuse identical bytes and silent
// cache corruption is detected instead of producing drifted scores.
package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

const (
	datasetFileName  = "dataset.json"
	manifestFileName = "manifest.json"
	sourceFilesDir   = "source_files"
)

// datasetFile is the on-disk representation of a cached dataset.
type datasetFile struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Labeled     bool          `json:"labeled"`
	Examples    []exampleSeed `json:"examples"`
}

type exampleSeed struct {
	Query             string   `json:"query"`
	ReferenceAnswer   string   `json:"reference_answer,omitempty"`
	ReferenceContexts []string `json:"reference_contexts,omitempty"`
	HasReference      bool     `json:"has_reference,omitempty"`
}

// manifest records content digests for integrity verification.
type manifest struct {
	DatasetSHA256 string            `json:"dataset_sha256"`
	SourceFiles   map[string]string `json:"source_files"`
}

// CachingProvider implements ports.DatasetProvider with a local disk
// cache in front of a catalog. A cache hit never touches the catalog,
// so loading is idempotent and runs are reproducible offline once the
// dataset has been pulled.
type CachingProvider struct {
	cacheDir string
	catalog  ports.DatasetCatalog
	tracer   trace.Tracer
}

// NewCachingProvider creates a provider caching under cacheDir.
func NewCachingProvider(cacheDir string, catalog ports.DatasetCatalog) (*CachingProvider, error) {
	if cacheDir == "" {
		return nil, fmt.Errorf("%w: cache directory is required", domain.ErrInvalidConfiguration)
	}
	if catalog == nil {
		return nil, fmt.Errorf("%w: dataset catalog is required", domain.ErrInvalidConfiguration)
	}
	return &CachingProvider{
		cacheDir: cacheDir,
		catalog:  catalog,
		tracer:   otel.Tracer("dataset-provider"),
	}, nil
}

// Load returns the dataset for id, fetching and caching it on a miss.
// A cached copy that fails integrity or parse checks wraps
// domain.ErrDatasetCorrupt; the cache is not silently refetched so the
// operator can inspect what changed.
func (p *CachingProvider) Load(ctx context.Context, id string) (domain.Dataset, error) {
	ctx, span := p.tracer.Start(ctx, "CachingProvider.Load",
		trace.WithAttributes(attribute.String("dataset.id", id)),
	)
	defer span.End()

	dir := filepath.Join(p.cacheDir, id)
	if _, err := os.Stat(filepath.Join(dir, datasetFileName)); err == nil {
		span.AddEvent("cache hit")
		dataset, err := p.loadCached(dir, id)
		if err != nil {
			span.RecordError(err)
		}
		return dataset, err
	}

	span.AddEvent("cache miss")
	dataset, sources, err := p.catalog.Fetch(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.Dataset{}, &ports.DatasetError{ID: id, Operation: "fetch", Err: err}
	}

	if err := p.writeCache(dir, dataset, sources); err != nil {
		span.RecordError(err)
		return domain.Dataset{}, &ports.DatasetError{ID: id, Operation: "cache", Err: err}
	}
	return dataset, nil
}

// loadCached reads, verifies, and parses a cached dataset directory.
func (p *CachingProvider) loadCached(dir, id string) (domain.Dataset, error) {
	datasetBytes, err := os.ReadFile(filepath.Join(dir, datasetFileName))
	if err != nil {
		return domain.Dataset{}, &ports.DatasetError{ID: id, Operation: "read", Err: err}
	}

	manifestBytes, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if err != nil {
		return domain.Dataset{}, corrupt(id, fmt.Errorf("missing manifest: %w", err))
	}
	var m manifest
	if err := json.Unmarshal(manifestBytes, &m); err != nil {
		return domain.Dataset{}, corrupt(id, fmt.Errorf("unreadable manifest: %w", err))
	}

	if digest := digestOf(datasetBytes); digest != m.DatasetSHA256 {
		return domain.Dataset{}, corrupt(id,
			fmt.Errorf("dataset digest mismatch: manifest %s, actual %s", m.DatasetSHA256, digest))
	}
	for name, want := range m.SourceFiles {
		sourceBytes, err := os.ReadFile(filepath.Join(dir, sourceFilesDir, name))
		if err != nil {
			return domain.Dataset{}, corrupt(id, fmt.Errorf("missing source file %s: %w", name, err))
		}
		if digest := digestOf(sourceBytes); digest != want {
			return domain.Dataset{}, corrupt(id,
				fmt.Errorf("source file %s digest mismatch", name))
		}
	}

	var file datasetFile
	if err := json.Unmarshal(datasetBytes, &file); err != nil {
		return domain.Dataset{}, corrupt(id, fmt.Errorf("unparseable dataset: %w", err))
	}
	if file.ID != id {
		return domain.Dataset{}, corrupt(id,
			fmt.Errorf("cached dataset identifies as %q", file.ID))
	}
	return toDomain(file), nil
}

// writeCache materializes the dataset directory atomically: everything
// is staged into a temporary sibling and renamed into place, so a
// partial write never masquerades as a valid cache entry.
func (p *CachingProvider) writeCache(dir string, dataset domain.Dataset, sources map[string]string) error {
	staging, err := os.MkdirTemp(filepath.Dir(dir), filepath.Base(dir)+".tmp-*")
	if err != nil {
		if mkErr := os.MkdirAll(filepath.Dir(dir), 0o750); mkErr != nil {
			return mkErr
		}
		staging, err = os.MkdirTemp(filepath.Dir(dir), filepath.Base(dir)+".tmp-*")
		if err != nil {
			return err
		}
	}
	defer os.RemoveAll(staging)

	datasetBytes, err := json.MarshalIndent(fromDomain(dataset), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(staging, datasetFileName), datasetBytes, 0o600); err != nil {
		return err
	}

	m := manifest{
		DatasetSHA256: digestOf(datasetBytes),
		SourceFiles:   make(map[string]string, len(sources)),
	}
	if len(sources) > 0 {
		if err := os.Mkdir(filepath.Join(staging, sourceFilesDir), 0o750); err != nil {
			return err
		}
		for name, content := range sources {
			if err := os.WriteFile(filepath.Join(staging, sourceFilesDir, name), []byte(content), 0o600); err != nil {
				return err
			}
			m.SourceFiles[name] = digestOf([]byte(content))
		}
	}

	manifestBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(staging, manifestFileName), manifestBytes, 0o600); err != nil {
		return err
	}

	if err := os.Rename(staging, dir); err != nil {
		// A concurrent loader may have won the rename; treat an existing
		// valid cache as success.
		if _, statErr := os.Stat(filepath.Join(dir, datasetFileName)); statErr == nil {
			return nil
		}
		return err
	}
	return nil
}

func corrupt(id string, err error) error {
	return &ports.DatasetError{
		ID:        id,
		Operation: "verify",
		Err:       fmt.Errorf("%w: %v", domain.ErrDatasetCorrupt, err),
	}
}

func digestOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func toDomain(file datasetFile) domain.Dataset {
	seeds := make([]domain.ExampleSeed, len(file.Examples))
	for i, example := range file.Examples {
		seeds[i] = domain.ExampleSeed{
			Query:             example.Query,
			ReferenceAnswer:   example.ReferenceAnswer,
			ReferenceContexts: example.ReferenceContexts,
			// A reference answer implies a reference even in cache files
			// written before has_reference was persisted.
			HasReference: example.HasReference || example.ReferenceAnswer != "",
		}
	}
	return domain.Dataset{
		ID:          file.ID,
		Name:        file.Name,
		Description: file.Description,
		Labeled:     file.Labeled,
		Seeds:       seeds,
	}
}

func fromDomain(dataset domain.Dataset) datasetFile {
	examples := make([]exampleSeed, len(dataset.Seeds))
	for i, seed := range dataset.Seeds {
		examples[i] = exampleSeed{
			Query:             seed.Query,
			ReferenceAnswer:   seed.ReferenceAnswer,
			ReferenceContexts: seed.ReferenceContexts,
			HasReference:      seed.HasReference,
		}
	}
	return datasetFile{
		ID:          dataset.ID,
		Name:        dataset.Name,
		Description: dataset.Description,
		Labeled:     dataset.Labeled,
		Examples:    examples,
	}
}

var _ ports.DatasetProvider = (*CachingProvider)(nil)
