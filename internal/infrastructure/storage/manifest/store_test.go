package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "runs_LOCAL.json"), nil)
}

func TestRead_MissingFileYieldsEmptyManifest(t *testing.T) {
	m, err := newStore(t).Read()
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestRead_MalformedFileYieldsEmptyManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	m, err := NewStore(path, nil).Read()
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestUpdate_PersistsAndStampsSchemaVersion(t *testing.T) {
	s := newStore(t)
	err := s.Update(func(m Manifest) error {
		m["run_id"] = "LOCAL"
		m["note_count"] = 3
		return nil
	})
	require.NoError(t, err)

	m, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, "LOCAL", m.ActiveRunID())
	assert.EqualValues(t, SchemaVersion, m["manifest_version"])
	assert.EqualValues(t, 3, m["note_count"])
}

func TestUpdate_MergePreservesOtherRuns(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Update(func(m Manifest) error {
		m.RunMetrics("LOCAL")["f1_exact_micro"] = 0.5
		return nil
	}))
	require.NoError(t, s.Update(func(m Manifest) error {
		m.RunMetrics("SPACY")["f1_exact_micro"] = 0.7
		return nil
	}))

	m, err := s.Read()
	require.NoError(t, err)
	assert.EqualValues(t, 0.5, m.RunMetrics("LOCAL")["f1_exact_micro"])
	assert.EqualValues(t, 0.7, m.RunMetrics("SPACY")["f1_exact_micro"])
}

func TestUpdate_ErrorAbortsWithoutWriting(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Update(func(m Manifest) error {
		m["run_id"] = "LOCAL"
		return nil
	}))

	err := s.Update(func(m Manifest) error {
		m["run_id"] = "CLOBBERED"
		return assert.AnError
	})
	require.Error(t, err)

	m, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, "LOCAL", m.ActiveRunID())
}

func TestUpdate_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "runs.json"), nil)
	require.NoError(t, s.Update(func(m Manifest) error { return nil }))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "runs.json", entries[0].Name())
}

func TestWrittenManifestIsValidJSON(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Update(func(m Manifest) error {
		m.RunMetrics("LOCAL")["coverage"] = map[string]interface{}{"gold_items": 4}
		return nil
	}))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &decoded))
}
