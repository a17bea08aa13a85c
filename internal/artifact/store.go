// Package artifact owns the shared download directory: artifact naming,
// recovery scans, and the path containment rules enforced before any file is
// served back to a client.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/savetube/savetube/internal/fetch"
)

// Store wraps a flat directory of artifacts named by job-identifier prefix.
// The fetch pipeline writes here (through the engine); delivery only reads.
type Store struct {
	dir    string
	hasher fetch.Hasher
}

// New creates a Store rooted at dir, creating the directory when missing and
// verifying it is writable.
func New(dir string, hasher fetch.Hasher) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("download directory is required")
	}
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create download directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat download directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("download directory path is not a directory")
	}

	probe := filepath.Join(dir, ".writable_test")
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("download directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("clean up writability probe: %w", err)
	}

	return &Store{dir: dir, hasher: hasher}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// OutputTemplate builds the engine output path template for a job id, using
// the engine's wildcard extension placeholder.
func (s *Store) OutputTemplate(jobID string) string {
	return filepath.Join(s.dir, jobID+".%(ext)s")
}

// SanitizeFilename strips path separators and null bytes, then any remaining
// traversal or shell/glob-special characters. Stripping one sequence can
// splice another together (".|." becomes ".."), so the pass repeats until the
// name stops changing. Sanitizing an already-sanitized name yields the same
// name.
func SanitizeFilename(name string) string {
	for {
		prev := name
		for _, c := range []string{"/", "\\", "\x00"} {
			name = strings.ReplaceAll(name, c, "")
		}
		for _, c := range []string{"..", "<", ">", `"`, "|", "?", "*"} {
			name = strings.ReplaceAll(name, c, "")
		}
		if name == prev {
			return name
		}
	}
}

// Resolve sanitizes a filename token and resolves it to an absolute path,
// requiring the result to stay inside the download directory. Escaping the
// directory returns ErrForbidden regardless of how safe the sanitized name
// looks; a missing file returns ErrNotFound.
func (s *Store) Resolve(name string) (string, error) {
	clean := SanitizeFilename(name)

	absDir, err := filepath.Abs(s.dir)
	if err != nil {
		return "", fmt.Errorf("resolve download directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.dir, clean))
	if err != nil {
		return "", fmt.Errorf("resolve artifact path: %w", err)
	}
	if absPath != absDir && !strings.HasPrefix(absPath, absDir+string(filepath.Separator)) {
		return "", fetch.ErrForbidden
	}
	if absPath == absDir {
		// An empty sanitized name resolves to the directory itself.
		return "", fetch.ErrNotFound
	}

	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		return "", fetch.ErrNotFound
	}
	return absPath, nil
}

// FindByPrefix scans the directory for the first file whose name begins with
// prefix. This is the recovery path for engine runs that report an error
// after already writing a usable artifact.
func (s *Store) FindByPrefix(prefix string) (string, bool, error) {
	if prefix == "" {
		return "", false, fmt.Errorf("prefix is required")
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", false, fmt.Errorf("scan download directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			return entry.Name(), true, nil
		}
	}
	return "", false, nil
}

// SizeOf returns the byte size of a named artifact, or zero when missing.
func (s *Store) SizeOf(name string) int64 {
	info, err := os.Stat(filepath.Join(s.dir, name))
	if err != nil {
		return 0
	}
	return info.Size()
}

// Stats reports the total size and file count of the download directory.
func (s *Store) Stats() (int64, int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read download directory: %w", err)
	}
	var total int64
	files := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
		files++
	}
	return total, files, nil
}

// Purge deletes every file in the download directory and reports how many
// were removed and how many bytes were freed.
func (s *Store) Purge() (int, int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read download directory: %w", err)
	}
	deleted := 0
	var freed int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			return deleted, freed, fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
		deleted++
		freed += info.Size()
	}
	return deleted, freed, nil
}

// Checksum returns the hex digest of a named artifact, for strong ETags on
// delivery. The artifact is streamed through the hasher, never loaded whole.
// It returns an empty string when no hasher is configured.
func (s *Store) Checksum(name string) (string, error) {
	if s.hasher == nil {
		return "", nil
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()
	sum, err := s.hasher.Hash(f)
	if err != nil {
		return "", fmt.Errorf("hash artifact: %w", err)
	}
	return sum, nil
}
