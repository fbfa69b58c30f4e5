// Package record persists per-submission grading records as JSON sidecars.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rbright/marker/internal/catalog"
)

var (
	// ErrWriteFailure reports that a sidecar could not be written.
	ErrWriteFailure = errors.New("record write failed")
	// ErrCorruptRecord reports a sidecar that is not a valid grading record.
	ErrCorruptRecord = errors.New("corrupt grading record")
)

// Mark holds the three free-form marks fields.
type Mark struct {
	Code  string `json:"code"`
	Text  string `json:"text"`
	Total string `json:"total"`
}

// Record is the persisted grading result for one submission.
type Record struct {
	Mark    Mark   `json:"mark"`
	Comment string `json:"comment"`
}

// Pristine reports whether every field is empty or equal to defaultMark.
func (r Record) Pristine(defaultMark string) bool {
	for _, field := range []string{r.Mark.Code, r.Mark.Text, r.Mark.Total} {
		if field != "" && field != defaultMark {
			return false
		}
	}
	return r.Comment == ""
}

// Save writes rec next to sub. The sidecar is replaced atomically: readers
// see either the previous file or the complete new one.
func Save(sub catalog.Submission, rec Record) error {
	payload, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}

	path := sub.SidecarPath()
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	return nil
}

// Encode renders rec with four-space indentation.
func Encode(rec Record) ([]byte, error) {
	return json.MarshalIndent(rec, "", "    ")
}

// Load reads the sidecar for sub. A missing sidecar yields (Record{}, false, nil).
func Load(sub catalog.Submission) (Record, bool, error) {
	path := sub.SidecarPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("read %s: %w", path, err)
	}

	rec, err := Decode(data)
	if err != nil {
		return Record{}, true, fmt.Errorf("%s: %w", path, err)
	}
	return rec, true, nil
}

// Decode parses a sidecar payload. Unknown fields are tolerated; mark and
// comment must be present with string values.
func Decode(data []byte) (Record, error) {
	var raw struct {
		Mark    *json.RawMessage `json:"mark"`
		Comment *string          `json:"comment"`
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&raw); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return Record{}, fmt.Errorf("%w: trailing data", ErrCorruptRecord)
	}
	if raw.Mark == nil {
		return Record{}, fmt.Errorf("%w: missing mark", ErrCorruptRecord)
	}
	if raw.Comment == nil {
		return Record{}, fmt.Errorf("%w: missing comment", ErrCorruptRecord)
	}

	var mark struct {
		Code  *string `json:"code"`
		Text  *string `json:"text"`
		Total *string `json:"total"`
	}
	if err := json.Unmarshal(*raw.Mark, &mark); err != nil {
		return Record{}, fmt.Errorf("%w: mark: %v", ErrCorruptRecord, err)
	}

	rec := Record{Comment: *raw.Comment}
	for _, field := range []struct {
		name string
		src  *string
		dst  *string
	}{
		{name: "code", src: mark.Code, dst: &rec.Mark.Code},
		{name: "text", src: mark.Text, dst: &rec.Mark.Text},
		{name: "total", src: mark.Total, dst: &rec.Mark.Total},
	} {
		if field.src == nil {
			return Record{}, fmt.Errorf("%w: missing mark.%s", ErrCorruptRecord, field.name)
		}
		*field.dst = *field.src
	}
	return rec, nil
}

// FileStore saves and loads sidecars on the local filesystem.
type FileStore struct{}

func (FileStore) Save(sub catalog.Submission, rec Record) error { return Save(sub, rec) }

func (FileStore) Load(sub catalog.Submission) (Record, bool, error) { return Load(sub) }
