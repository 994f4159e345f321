package scan

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// binarySniffLen is how much of a file's prefix is sampled for the
// text/binary heuristic.
const binarySniffLen = 512

// FileDescriptor identifies one discovered candidate file. Immutable once
// produced by Discover.
type FileDescriptor struct {
	Path    string // absolute path
	RelPath string // path relative to the scan root, slash-separated
	Size    int64
	Text    bool
}

// InvalidRootError reports a scan root that does not exist or is not a
// directory.
type InvalidRootError struct {
	Path string
	Err  error
}

func (e *InvalidRootError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid scan root %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid scan root %q: not a directory", e.Path)
}

func (e *InvalidRootError) Unwrap() error { return e.Err }

// Discover walks root depth-first in lexicographic order and returns the
// ordered list of files passing the policy. Directories matching an
// exclusion pattern are pruned without being descended into. Files that
// look binary are dropped silently. An empty result is not an error.
func Discover(root string, policy FilterPolicy) ([]FileDescriptor, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &InvalidRootError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &InvalidRootError{Path: root}
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &InvalidRootError{Path: root, Err: err}
	}

	var files []FileDescriptor
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			return nil // unreadable subtree, skip
		}
		if d.IsDir() {
			if path != absRoot && policy.PruneDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if policy.Excluded(rel) {
			return nil
		}
		if !policy.Included(d.Name()) {
			return nil
		}

		fi, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if looksBinary(path) {
			return nil
		}

		files = append(files, FileDescriptor{
			Path:    path,
			RelPath: rel,
			Size:    fi.Size(),
			Text:    true,
		})
		return nil
	})
	if err != nil {
		return nil, &InvalidRootError{Path: root, Err: err}
	}
	return files, nil
}

// looksBinary samples the file prefix and reports whether it contains a NUL
// byte. Files that cannot be opened are treated as text; the packer surfaces
// the read failure as a warning instead.
func looksBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, binarySniffLen)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}
	return bytes.IndexByte(buf[:n], 0) >= 0
}
