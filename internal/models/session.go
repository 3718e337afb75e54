package models

// DefaultTargetCount is used when no persisted session exists
const DefaultTargetCount = 10

// CountingSession is the single persisted counting state for the bot
type CountingSession struct {
	TargetCount  int      `json:"targetCount"`
	Counting     bool     `json:"counting"`
	CountedUsers []string `json:"countedUsers"`
}

// NewCountingSession creates a session with default values
func NewCountingSession() *CountingSession {
	return &CountingSession{
		TargetCount:  DefaultTargetCount,
		Counting:     false,
		CountedUsers: []string{},
	}
}

// Normalize repairs a session loaded from storage so invariants hold
// (positive target, non-nil user list)
func (s *CountingSession) Normalize() {
	if s.TargetCount <= 0 {
		s.TargetCount = DefaultTargetCount
	}
	if s.CountedUsers == nil {
		s.CountedUsers = []string{}
	}
}

// HasCounted reports whether a sender was already counted in this run
func (s *CountingSession) HasCounted(userID string) bool {
	for _, id := range s.CountedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to use outside the session lock
func (s *CountingSession) Clone() *CountingSession {
	users := make([]string, len(s.CountedUsers))
	copy(users, s.CountedUsers)
	return &CountingSession{
		TargetCount:  s.TargetCount,
		Counting:     s.Counting,
		CountedUsers: users,
	}
}
