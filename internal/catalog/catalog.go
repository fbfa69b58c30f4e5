// Package catalog lists the gradeable submissions in a folder and tracks the
// reviewer's position within them.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrInvalidDirectory reports a folder path that is missing or not a directory.
	ErrInvalidDirectory = errors.New("invalid directory")
	// ErrEmptyCatalog reports that no eligible submissions were found.
	ErrEmptyCatalog = errors.New("no submissions in catalog")
)

// Submission is one gradeable file.
type Submission struct {
	Path string
	Name string
	Ext  string
}

// SidecarPath is the grading record location: same directory and stem, ".json".
func (s Submission) SidecarPath() string {
	return strings.TrimSuffix(s.Path, filepath.Ext(s.Path)) + ".json"
}

// Graded reports whether a sidecar record exists for the submission.
func (s Submission) Graded() bool {
	info, err := os.Stat(s.SidecarPath())
	return err == nil && info.Mode().IsRegular()
}

// Catalog is an ordered snapshot of a folder plus the active position.
type Catalog struct {
	Dir   string
	items []Submission
	index int
}

// Scan lists regular files directly inside dir whose extension is in
// extensions, sorted by name. With excludeGraded, files that already have a
// sidecar record are left out.
func Scan(dir string, extensions []string, excludeGraded bool) (*Catalog, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidDirectory)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidDirectory, abs)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidDirectory, abs, err)
	}

	allowed := extensionSet(extensions)
	items := make([]Submission, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext, ok := matchExtension(entry.Name(), allowed)
		if !ok {
			continue
		}
		sub := Submission{
			Path: filepath.Join(abs, entry.Name()),
			Name: entry.Name(),
			Ext:  ext,
		}
		if excludeGraded && sub.Graded() {
			continue
		}
		items = append(items, sub)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return &Catalog{Dir: abs, items: items}, nil
}

// Lookup resolves a single file as a submission without scanning its folder.
func Lookup(path string, extensions []string) (Submission, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Submission{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Submission{}, fmt.Errorf("stat submission: %w", err)
	}
	if !info.Mode().IsRegular() {
		return Submission{}, fmt.Errorf("%s is not a regular file", abs)
	}
	ext, ok := matchExtension(info.Name(), extensionSet(extensions))
	if !ok {
		return Submission{}, fmt.Errorf("%s is not a supported submission type (%s)", info.Name(), strings.Join(extensions, ", "))
	}
	return Submission{Path: abs, Name: info.Name(), Ext: ext}, nil
}

// Len returns the number of submissions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Index returns the active 0-based position.
func (c *Catalog) Index() int {
	if c == nil {
		return 0
	}
	return c.index
}

// Items returns a copy of the ordered submissions.
func (c *Catalog) Items() []Submission {
	if c == nil {
		return nil
	}
	return append([]Submission(nil), c.items...)
}

// Current returns the submission at the active position.
func (c *Catalog) Current() (Submission, error) {
	if c.Len() == 0 {
		return Submission{}, ErrEmptyCatalog
	}
	return c.items[c.index], nil
}

// Peek returns the position Advance(delta) would move to and whether it differs
// from the current one.
func (c *Catalog) Peek(delta int) (int, bool) {
	if c.Len() == 0 {
		return 0, false
	}
	next := c.index + delta
	if next < 0 {
		next = 0
	}
	if last := len(c.items) - 1; next > last {
		next = last
	}
	return next, next != c.index
}

// Advance moves the position by delta, clamped to the catalog bounds.
// It reports whether the position changed.
func (c *Catalog) Advance(delta int) bool {
	next, moved := c.Peek(delta)
	if moved {
		c.index = next
	}
	return moved
}

// Seek moves to the submission at path, reporting whether it was found.
func (c *Catalog) Seek(path string) bool {
	for i, item := range c.Items() {
		if item.Path == path {
			c.index = i
			return true
		}
	}
	return false
}

func extensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

func matchExtension(name string, allowed map[string]struct{}) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return "", false
	}
	_, ok := allowed[ext]
	return ext, ok
}
