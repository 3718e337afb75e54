package storage

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"sync"

	"github.com/bjo0vj/zalo-image-bot/internal/models"
)

// DefaultDataFile is used when BOT_DATA_FILE is not set
const DefaultDataFile = "botdata.json"

// FileStore persists the session as a single JSON document on disk
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed session store
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultDataFile
	}
	return &FileStore{path: path}
}

// LoadSession reads the JSON document, falling back to defaults when
// the file is missing or unreadable. It never returns a nil session.
func (f *FileStore) LoadSession() (*models.CountingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.NewCountingSession(), nil
		}
		log.Printf("⚠️  Could not read data file, using default state: %v", err)
		return models.NewCountingSession(), nil
	}

	session := models.NewCountingSession()
	if err := json.Unmarshal(data, session); err != nil {
		log.Printf("⚠️  Could not parse data file, using default state: %v", err)
		return models.NewCountingSession(), nil
	}
	session.Normalize()
	return session, nil
}

// SaveSession overwrites the JSON document wholesale
func (f *FileStore) SaveSession(session *models.CountingSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0644)
}
