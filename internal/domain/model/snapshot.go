package model

import "time"

// Snapshot is the durable record of one save event. Each save produces a new,
// independent snapshot; snapshots are never updated.
type Snapshot struct {
	ID           string       `json:"-"`
	UserID       string       `json:"userId"`
	UserInfo     SnapshotUser `json:"userInfo"`
	StartTime    time.Time    `json:"startTime"`
	EndTime      time.Time    `json:"endTime"`
	MessageCount int          `json:"messageCount"`
	Messages     []Turn       `json:"messages"`
}

type SnapshotUser struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	SessionStart time.Time `json:"sessionStart"`
	LastActive   time.Time `json:"lastActive"`
}

// NewSnapshot captures turns for s at time at. StartTime is the first turn's timestamp.
func NewSnapshot(id string, s *Session, turns []Turn, at time.Time) *Snapshot {
	at = at.UTC()
	msgs := RecentTurns(turns, 0)
	start := at
	if len(msgs) > 0 {
		start = msgs[0].Timestamp
	}
	return &Snapshot{
		ID:     id,
		UserID: s.ID,
		UserInfo: SnapshotUser{
			Name:         s.Name,
			Email:        s.Email,
			SessionStart: s.StartedAt,
			LastActive:   at,
		},
		StartTime:    start,
		EndTime:      at,
		MessageCount: len(msgs),
		Messages:     msgs,
	}
}
