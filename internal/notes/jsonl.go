package notes

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/logging"
	"github.com/hc-tap/clinspan/pkg/errors"
	"github.com/hc-tap/clinspan/pkg/types/entity"
)

// ReadEntityFile parses a newline-delimited JSON entity file.  Blank and
// malformed lines are skipped (optionally logged), matching the evaluation
// engine's tolerance for data-quality problems.  A missing file is an
// error; callers that treat absence as "no data" should check with
// os.Stat first or use ReadEntityFileIfExists.
func ReadEntityFile(path string, log logging.Logger) ([]*entity.Record, error) {
	if log == nil {
		log = logging.NewNop()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusUnreadable, "failed to open entity file").
			WithDetail("path=" + path)
	}
	defer f.Close()

	var records []*entity.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var r entity.Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			log.Warn("skipping malformed entity line",
				logging.String("path", path), logging.Int("line", lineNo), logging.Err(err))
			continue
		}
		if err := r.Validate(); err != nil {
			log.Warn("skipping invalid entity record",
				logging.String("path", path), logging.Int("line", lineNo), logging.Err(err))
			continue
		}
		records = append(records, &r)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusUnreadable, "failed to scan entity file").
			WithDetail("path=" + path)
	}
	return records, nil
}

// ReadEntityFileIfExists is ReadEntityFile, except a missing file yields an
// empty slice with found=false instead of an error.
func ReadEntityFileIfExists(path string, log logging.Logger) (records []*entity.Record, found bool, err error) {
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return nil, false, nil
	}
	records, err = ReadEntityFile(path, log)
	return records, err == nil, err
}

// WriteEntityFile writes records as one JSON object per line, replacing any
// existing file.  Parent directories are created as needed.
func WriteEntityFile(path string, records []*entity.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeEntityWriteFailed, "failed to create entity directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeEntityWriteFailed, "failed to create entity file").
			WithDetail("path=" + path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, errors.ErrCodeEntityWriteFailed, "failed to encode entity record")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeEntityWriteFailed, "failed to flush entity file")
	}
	return nil
}

// EntitySink persists extracted entities the way the fixture layout expects:
// one JSONL per note under the entities dir, plus a bundled part file under
// enriched/entities/run=<RUN_ID>/part-000.jsonl.
type EntitySink struct {
	entitiesDir string
	enrichedDir string
}

// NewEntitySink creates a sink rooted at the two output directories.
func NewEntitySink(entitiesDir, enrichedDir string) *EntitySink {
	return &EntitySink{entitiesDir: entitiesDir, enrichedDir: enrichedDir}
}

// WriteNote writes one note's records to <entitiesDir>/<note_id>.jsonl.
func (s *EntitySink) WriteNote(noteID string, records []*entity.Record) error {
	return WriteEntityFile(filepath.Join(s.entitiesDir, noteID+".jsonl"), records)
}

// WriteBundle writes the full run's records to the bundled part file and
// returns its path.
func (s *EntitySink) WriteBundle(runID string, records []*entity.Record) (string, error) {
	path := filepath.Join(s.enrichedDir, "run="+runID, "part-000.jsonl")
	if err := WriteEntityFile(path, records); err != nil {
		return "", err
	}
	return path, nil
}
