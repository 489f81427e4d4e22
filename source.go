package madtsql

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/ginga924/madt4001-sql/domain/model"
	"github.com/ginga924/madt4001-sql/driver"
)

// Source is one file scheduled for loading.
type Source struct {
	// Path identifies the file in logs and reports
	Path string
	// Name is the basename used for table naming and override lookup
	Name string
	// Group is the base name of the directory the file was found in, empty
	// for files added one by one
	Group string

	open func() (io.ReadCloser, error)
}

// sourceFailure is a path that could not even be scheduled.
type sourceFailure struct {
	path string
	err  error
}

// collectSources expands the builder's paths and filesystems into an ordered
// list of sources. Paths come first in the order added, then filesystems.
// A directory contributes its supported files in lexical order, without
// descending into subdirectories.
func (b *Builder) collectSources() ([]Source, []sourceFailure) {
	var (
		sources  []Source
		failures []sourceFailure
		seen     = make(map[string]bool)
	)

	for _, p := range b.paths {
		found, err := collectPath(p, seen)
		if err != nil {
			failures = append(failures, sourceFailure{path: p, err: err})
			continue
		}
		sources = append(sources, found...)
	}

	for _, fsys := range b.filesystems {
		found, err := collectFS(fsys)
		if err != nil {
			failures = append(failures, sourceFailure{path: "fs.FS", err: err})
			continue
		}
		sources = append(sources, found...)
	}
	return sources, failures
}

func collectPath(p string, seen map[string]bool) ([]Source, error) {
	if err := driver.ValidatePath(p); err != nil {
		return nil, fmt.Errorf("%w: %q", err, p)
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, NewErrorContext("stat", p).Error(err)
	}

	if !info.IsDir() {
		if !model.IsSupportedFile(p) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, p)
		}
		return addFile(p, "", seen)
	}

	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, NewErrorContext("read directory", p).Error(err)
	}

	group := filepath.Base(filepath.Clean(p))
	var sources []Source
	for _, entry := range entries {
		if entry.IsDir() || !driver.IsValidFileName(entry.Name()) || !model.IsSupportedFile(entry.Name()) {
			continue
		}
		found, err := addFile(filepath.Join(p, entry.Name()), group, seen)
		if err != nil {
			return nil, err
		}
		sources = append(sources, found...)
	}
	return sources, nil
}

// addFile schedules a file unless the same absolute path was already added.
func addFile(p, group string, seen map[string]bool) ([]Source, error) {
	absPath, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", p, err)
	}
	if seen[absPath] {
		return nil, nil
	}
	seen[absPath] = true

	return []Source{{
		Path:  p,
		Name:  filepath.Base(p),
		Group: group,
		open: func() (io.ReadCloser, error) {
			return os.Open(p) //nolint:gosec // paths are supplied by the caller
		},
	}}, nil
}

// collectFS walks an fs.FS in lexical order and schedules every supported
// file. Files are read straight from the filesystem.
func collectFS(fsys fs.FS) ([]Source, error) {
	if fsys == nil {
		return nil, fmt.Errorf("%w: nil fs.FS", driver.ErrInvalidPath)
	}

	var sources []Source
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && !driver.IsValidFileName(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !driver.IsValidFileName(d.Name()) || !model.IsSupportedFile(p) {
			return nil
		}

		group := ""
		if dir := path.Dir(p); dir != "." {
			group = path.Base(dir)
		}
		sources = append(sources, Source{
			Path:  p,
			Name:  path.Base(p),
			Group: group,
			open: func() (io.ReadCloser, error) {
				return fsys.Open(p)
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk filesystem: %w", err)
	}
	return sources, nil
}
