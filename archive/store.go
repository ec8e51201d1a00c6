package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// archiveExt is the filename extension for session archives.
const archiveExt = ".sift"

// Store is the storage boundary for session archives. Implementations must
// be safe for sequential single-writer use; reads may happen concurrently.
type Store interface {
	// Put writes an archive blob under the given session id.
	Put(ctx context.Context, sessionID string, data []byte) error
	// Get reads the archive blob for the given session id.
	Get(ctx context.Context, sessionID string) ([]byte, error)
	// List returns archived session ids in lexical order.
	List(ctx context.Context) ([]string, error)
}

// DirStore stores archives as files in a local directory.
type DirStore struct {
	dir string
}

// NewDirStore creates a directory-backed store, creating the directory if
// needed.
func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory %q: %w", dir, err)
	}
	return &DirStore{dir: dir}, nil
}

// Put implements Store.
func (s *DirStore) Put(_ context.Context, sessionID string, data []byte) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	path := filepath.Join(s.dir, sessionID+archiveExt)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write archive %q: %w", path, err)
	}
	return nil
}

// Get implements Store.
func (s *DirStore) Get(_ context.Context, sessionID string) ([]byte, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, sessionID+archiveExt)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session %s not found", sessionID)
		}
		return nil, fmt.Errorf("read archive %q: %w", path, err)
	}
	return data, nil
}

// List implements Store.
func (s *DirStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list archive directory %q: %w", s.dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), archiveExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), archiveExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// validateSessionID rejects ids that would escape the storage prefix.
func validateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return fmt.Errorf("invalid session id %q", id)
	}
	return nil
}
