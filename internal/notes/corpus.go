// Package notes reads the note corpus and persists entity records as
// newline-delimited JSON.  It is deliberately thin: storage is a directory
// of JSON documents, one per note, plus JSONL entity files, matching the
// fixture layout the rest of the tooling consumes.
package notes

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/logging"
	"github.com/hc-tap/clinspan/pkg/errors"
)

// Note is one source document: an opaque identifier and its raw UTF-8 text.
type Note struct {
	NoteID string `json:"note_id"`
	Text   string `json:"text"`
}

// Reader retrieves notes.  The extraction pipeline depends on this
// interface; the directory-backed Corpus is the only in-tree implementation.
type Reader interface {
	Notes(limit int) ([]*Note, error)
	ByID(noteID string) (*Note, error)
}

// Corpus reads notes from a directory of *.json documents.
type Corpus struct {
	dir string
	log logging.Logger
}

// NewCorpus creates a Corpus over dir.
func NewCorpus(dir string, log logging.Logger) *Corpus {
	if log == nil {
		log = logging.NewNop()
	}
	return &Corpus{dir: dir, log: log.Named("corpus")}
}

// Notes loads every well-formed note in the corpus in filename order.
// Malformed documents and notes missing note_id or text are skipped with a
// warning, never fatal.  A positive limit caps the number of notes returned.
func (c *Corpus) Notes(limit int) ([]*Note, error) {
	paths, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusUnreadable, "failed to list note corpus").
			WithDetail("dir=" + c.dir)
	}
	sort.Strings(paths)

	out := make([]*Note, 0, len(paths))
	for _, p := range paths {
		if limit > 0 && len(out) >= limit {
			break
		}
		note, err := c.load(p)
		if err != nil {
			c.log.Warn("skipping malformed note document",
				logging.String("path", p), logging.Err(err))
			continue
		}
		out = append(out, note)
	}
	return out, nil
}

// ByID reads a single note by identifier (the corpus names files
// <note_id>.json).
func (c *Corpus) ByID(noteID string) (*Note, error) {
	note, err := c.load(filepath.Join(c.dir, noteID+".json"))
	if err != nil {
		if os.IsNotExist(stdCause(err)) {
			return nil, errors.Newf(errors.ErrCodeNoteNotFound, "note %s not found", noteID)
		}
		return nil, err
	}
	return note, nil
}

func (c *Corpus) load(path string) (*Note, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusUnreadable, "failed to read note document")
	}
	var n Note
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNoteMalformed, "invalid note JSON").
			WithDetail("path=" + path)
	}
	if strings.TrimSpace(n.NoteID) == "" {
		return nil, errors.New(errors.ErrCodeNoteMalformed, "note document missing note_id").
			WithDetail("path=" + path)
	}
	if n.Text == "" {
		return nil, errors.New(errors.ErrCodeNoteMalformed, "note document missing text").
			WithDetail("note_id=" + n.NoteID)
	}
	return &n, nil
}

// stdCause unwraps to the innermost error for os.IsNotExist checks.
func stdCause(err error) error {
	var ae *errors.AppError
	if stderrors.As(err, &ae) && ae.Cause != nil {
		return stdCause(ae.Cause)
	}
	return err
}
