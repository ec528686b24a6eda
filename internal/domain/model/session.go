package model

import (
	"strings"
	"time"
)

const (
	DefaultName  = "Anonymous"
	DefaultEmail = "Not provided"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one entry of a conversation log.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// Session is the identity record of one chat user. It is never mutated after creation.
type Session struct {
	ID        string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	StartedAt time.Time `json:"sessionStart"`
}

func NewSession(id, name, email string) *Session {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	email = strings.TrimSpace(email)
	if email == "" {
		email = DefaultEmail
	}
	return &Session{
		ID:        id,
		Name:      name,
		Email:     email,
		StartedAt: time.Now().UTC(),
	}
}

// RecentTurns returns the last n turns of log, or all of them when n <= 0.
// The returned slice shares no memory with log.
func RecentTurns(log []Turn, n int) []Turn {
	if n > 0 && len(log) > n {
		log = log[len(log)-n:]
	}
	out := make([]Turn, len(log))
	copy(out, log)
	return out
}
