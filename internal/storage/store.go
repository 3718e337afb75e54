package storage

import (
	"github.com/bjo0vj/zalo-image-bot/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for session persistence.
// The session is a process-wide singleton: LoadSession is called once
// at start-up and SaveSession overwrites the whole document on every
// mutation.
type Store interface {
	LoadSession() (*models.CountingSession, error)
	SaveSession(session *models.CountingSession) error
}
