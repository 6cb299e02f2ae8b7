// Package filestore persists the bearer credential in a small JSON key-value
// file, the command line equivalent of browser local storage.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/sanctyr/credential"
	"github.com/rs/zerolog/log"
)

var _ credential.Store = (*FileStore)(nil)

// FileStore keeps credential.Key in a JSON object on disk. Other keys in the
// file are preserved across writes. A file that does not decode reads as
// empty and is replaced by the next write.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func New(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file backing the store.
func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Get(_ context.Context) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.read()
	if err != nil {
		return "", err
	}
	return entries[credential.Key], nil
}

func (fs *FileStore) Set(_ context.Context, cred string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.read()
	if err != nil {
		return err
	}
	entries[credential.Key] = cred
	return fs.write(entries)
}

func (fs *FileStore) Remove(_ context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.read()
	if err != nil {
		return err
	}
	if _, ok := entries[credential.Key]; !ok {
		return nil
	}
	delete(entries, credential.Key)
	return fs.write(entries)
}

func (fs *FileStore) read() (map[string]string, error) {
	entries := make(map[string]string)
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[FileStore] read %s: %w", fs.path, err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Str("path", fs.path).Msg("filestore: undecodable credential file, treating as empty")
		return make(map[string]string), nil
	}
	return entries, nil
}

// write replaces the file atomically via a temp file in the same directory.
func (fs *FileStore) write(entries map[string]string) error {
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("[FileStore] create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("[FileStore] encode: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("[FileStore] temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileStore] write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileStore] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[FileStore] close: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		return fmt.Errorf("[FileStore] rename: %w", err)
	}
	return nil
}
