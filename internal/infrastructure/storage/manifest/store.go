// Package manifest persists run manifests: a JSON document acting as a
// lightweight key-value store keyed by run identifier.  All mutation goes
// through an explicit read-modify-write transaction with atomic replacement
// (temp file + fsync + rename), so a concurrent reader never observes a
// partially written manifest.  Updates are last-writer-wins at file
// granularity; concurrent writers for different run ids merge cleanly
// because they touch disjoint keys, same-run writers race on who finishes
// last.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/logging"
	"github.com/hc-tap/clinspan/pkg/errors"
)

// SchemaVersion is the manifest schema generation written by this code.
const SchemaVersion = 2

// Manifest is the decoded manifest document.  Top-level fields describe the
// designated active run; per-run metric blocks live under run-id keys
// inside "extractor_metrics".
type Manifest map[string]interface{}

// ActiveRunID returns the manifest's designated active run, or "".
func (m Manifest) ActiveRunID() string {
	id, _ := m["run_id"].(string)
	return id
}

// RunMetrics returns the metrics block for runID, creating it when absent.
func (m Manifest) RunMetrics(runID string) map[string]interface{} {
	all, ok := m["extractor_metrics"].(map[string]interface{})
	if !ok {
		all = map[string]interface{}{}
		m["extractor_metrics"] = all
	}
	block, ok := all[runID].(map[string]interface{})
	if !ok {
		block = map[string]interface{}{}
		all[runID] = block
	}
	return block
}

// Store reads and transactionally updates one manifest file.
type Store struct {
	path string
	log  logging.Logger
}

// NewStore creates a Store over path.  The file need not exist yet.
func NewStore(path string, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNop()
	}
	return &Store{path: path, log: log.Named("manifest")}
}

// Path returns the manifest file path.
func (s *Store) Path() string { return s.path }

// Read loads the current manifest.  A missing or malformed file yields an
// empty manifest rather than an error: the store's job is to accumulate
// results, and a corrupt manifest must not block a batch run.
func (s *Store) Read() (Manifest, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeManifestReadFailed, "failed to read run manifest").
			WithDetail("path=" + s.path)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		s.log.Warn("run manifest is malformed, starting fresh",
			logging.String("path", s.path), logging.Err(err))
		return Manifest{}, nil
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}

// Update runs fn against the current manifest and atomically replaces the
// file with the mutated document.  fn returning an error aborts the
// transaction with the file untouched.
func (s *Store) Update(fn func(m Manifest) error) error {
	m, err := s.Read()
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	m["manifest_version"] = SchemaVersion
	return s.writeAtomic(m)
}

// writeAtomic writes m to a temp file in the manifest's directory, fsyncs,
// and renames over the target.  A crash before the rename leaves the
// previous manifest intact.
func (s *Store) writeAtomic(m Manifest) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeManifestWriteFailed, "failed to create manifest directory")
	}

	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeManifestWriteFailed, "failed to encode run manifest")
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.tmp")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeManifestWriteFailed, "failed to create manifest temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeManifestWriteFailed, "failed to write manifest temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeManifestWriteFailed, "failed to sync manifest temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeManifestWriteFailed, "failed to close manifest temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrap(err, errors.ErrCodeManifestWriteFailed, "failed to replace run manifest").
			WithDetail("path=" + s.path)
	}
	return nil
}
