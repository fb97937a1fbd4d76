// Package session persists per-working-directory conversation history.
//
// A session is the ordered sequence of prompt/response entries for one
// working directory. Sessions are keyed by a stable hash of the directory
// path, passed explicitly by callers; nothing in this package reads ambient
// process state.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry kinds as stored on disk.
const (
	KindSuccess       = "success"
	KindError         = "error"
	KindCompacted     = "compacted"
	KindCurrentPrompt = "current_prompt"
)

// Entry is one prompt/response pair in a session's history.
type Entry struct {
	Kind            string `json:"type"`
	UserPrompt      string `json:"user_prompt"`
	Response        string `json:"response"`
	Timestamp       string `json:"timestamp"`
	CompactionLevel int    `json:"compaction_level,omitempty"`
}

// Now returns a timestamp string for new entries.
func Now() string {
	return time.Now().Format(time.RFC3339)
}

// Key returns the stable session key for a working directory.
func Key(workdir string) string {
	sum := sha256.Sum256([]byte(workdir))
	return hex.EncodeToString(sum[:])
}

// Store is the durable session store. A missing key yields an empty
// sequence, never an error.
type Store interface {
	Load(key string) ([]Entry, error)
	Save(key string, entries []Entry) error
	Append(key string, entry Entry) error
}

// FileStore keeps all sessions in a single JSON file: a map from session
// key to entry sequence. Writes go through a temp file and rename so a
// crashed compaction pass cannot leave a partially written record.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the given file path. The parent
// directory is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) readAll() (map[string][]Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string][]Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	sessions := map[string][]Entry{}
	if len(data) == 0 {
		return sessions, nil
	}
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	return sessions, nil
}

func (s *FileStore) writeAll(sessions map[string][]Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Load returns the entry sequence for key, or an empty slice if the key
// has no session yet.
func (s *FileStore) Load(key string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions, err := s.readAll()
	if err != nil {
		return nil, err
	}
	return sessions[key], nil
}

// Save overwrites the entry sequence for key.
func (s *FileStore) Save(key string, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions, err := s.readAll()
	if err != nil {
		return err
	}
	sessions[key] = entries
	return s.writeAll(sessions)
}

// Append adds one entry to the end of the sequence for key.
func (s *FileStore) Append(key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions, err := s.readAll()
	if err != nil {
		return err
	}
	sessions[key] = append(sessions[key], entry)
	return s.writeAll(sessions)
}
