// Package filex provides the private scratch directory uploads are staged in.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	errors "github.com/Laisky/errors/v2"
	"github.com/google/uuid"
)

// ScratchFilePerm is applied to every staged file.
const ScratchFilePerm os.FileMode = 0o600

// maxCollisionRetries bounds the rename attempts on name collision.
const maxCollisionRetries = 8

// maxNameBytes is NAME_MAX on the filesystems we stage on.
const maxNameBytes = 255

// newToken produces the unique prefix used to dodge name collisions.
var newToken = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// EnsureDir creates root/name (and parents) with owner-only permissions and
// returns its path. An empty root means the process temp directory.
func EnsureDir(root, name string) (string, error) {
	if root == "" {
		root = os.TempDir()
	}

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// ScratchDir stages request payloads on local disk. Concurrent writers never
// overwrite each other: a taken name gets a fresh unique token prefix.
type ScratchDir struct {
	dir string
}

// NewScratchDir ensures root/name exists and returns a ScratchDir over it.
func NewScratchDir(root, name string) (*ScratchDir, error) {
	dir, err := EnsureDir(root, name)
	if err != nil {
		return nil, err
	}
	return &ScratchDir{dir: dir}, nil
}

// Path returns the directory backing the scratch area.
func (s *ScratchDir) Path() string {
	return s.dir
}

// Write stores data under filename and returns the path actually used.
func (s *ScratchDir) Write(filename string, data []byte) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", errors.Errorf("invalid scratch file name %q", filename)
	}

	name := filename
	for attempt := 0; attempt <= maxCollisionRetries; attempt++ {
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, ScratchFilePerm)
		if errors.Is(err, os.ErrExist) {
			token := newToken()
			name = token + shortenName(filename, maxNameBytes-len(token))
			continue
		}
		if err != nil {
			return "", errors.Wrap(err, "create scratch file")
		}

		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", errors.Wrap(err, "write scratch file")
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", errors.Wrap(err, "close scratch file")
		}
		return path, nil
	}

	return "", errors.Errorf("no free scratch name for %q", filename)
}

// shortenName trims name to at most n bytes. The extension survives when it
// fits and the cut never splits a UTF-8 sequence.
func shortenName(name string, n int) string {
	if len(name) <= n {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) >= n {
		ext = ""
	}
	stem := name[:len(name)-len(ext)]
	cut := n - len(ext)
	for cut > 0 && !utf8.RuneStart(stem[cut]) {
		cut--
	}
	return stem[:cut] + ext
}

// Restrict sets owner-only permissions on a staged file.
func Restrict(path string) error {
	return os.Chmod(path, ScratchFilePerm)
}

// Remove deletes a staged file; a missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
