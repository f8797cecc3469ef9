package score

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements Store using a JSON file
type FileStore struct {
	path string
	mu   sync.Mutex
}

type fileData struct {
	Entries []Entry `json:"entries"`
}

// NewFileStore creates a file-backed store. The parent directory is created if needed.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create scores directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file path
func (fs *FileStore) Path() string {
	return fs.path
}

// Add records an entry
func (fs *FileStore) Add(entry Entry) (Entry, int, error) {
	if err := entry.Validate(); err != nil {
		return Entry{}, 0, err
	}
	entry = prepare(entry)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	table, err := fs.load()
	if err != nil {
		return Entry{}, 0, err
	}

	table, rank := insert(table, entry)
	if err := fs.write(table); err != nil {
		return Entry{}, 0, err
	}
	return entry, rank, nil
}

// Top returns up to limit entries, best first
func (fs *FileStore) Top(limit int) ([]Entry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	table, err := fs.load()
	if err != nil {
		return nil, err
	}
	return top(table, limit), nil
}

func (fs *FileStore) load() ([]Entry, error) {
	jsonData, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read scores file: %w", err)
	}
	if len(jsonData) == 0 {
		return nil, nil
	}

	var data fileData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
	}
	return data.Entries, nil
}

func (fs *FileStore) write(table []Entry) error {
	jsonData, err := json.MarshalIndent(fileData{Entries: table}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	// Write through a temp file so a crash never leaves a truncated table
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write scores file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace scores file: %w", err)
	}
	return nil
}
