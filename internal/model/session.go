package model

import "time"

// MaxHistory bounds the number of messages retained per session.
const MaxHistory = 50

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry of a session's history.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UserInfo is the profile accumulated for a session.
type UserInfo struct {
	Name   string   `json:"name,omitempty"`
	Skills []string `json:"skills,omitempty"`
}

// Session is a conversation and the profile inferred from it.
type Session struct {
	ID       string    `json:"sessionId"`
	History  []Message `json:"history"`
	UserInfo UserInfo  `json:"userInfo"`
}
