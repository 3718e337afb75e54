package models

import (
	"encoding/json"
	"log"

	"gorm.io/gorm"
)

// SessionRecord is the database row form of CountingSession.
// CountedUsers is stored as a JSON-encoded array column.
type SessionRecord struct {
	gorm.Model
	TargetCount  int    `json:"target_count"`
	Counting     bool   `json:"counting"`
	CountedUsers string `json:"counted_users"`
}

// ToSession converts the row back into a CountingSession
func (r *SessionRecord) ToSession() *CountingSession {
	session := &CountingSession{
		TargetCount: r.TargetCount,
		Counting:    r.Counting,
	}
	if r.CountedUsers != "" {
		if err := json.Unmarshal([]byte(r.CountedUsers), &session.CountedUsers); err != nil {
			log.Printf("⚠️  Could not decode counted users column: %v", err)
		}
	}
	session.Normalize()
	return session
}

// FromSession copies a CountingSession into the row
func (r *SessionRecord) FromSession(session *CountingSession) {
	r.TargetCount = session.TargetCount
	r.Counting = session.Counting
	users, err := json.Marshal(session.CountedUsers)
	if err != nil {
		users = []byte("[]")
	}
	r.CountedUsers = string(users)
}
