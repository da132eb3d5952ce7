package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession represents a chat session entity and its conversation state
type ChatSession struct {
	ID                uuid.UUID         `json:"id"`
	SessionKey        string            `json:"session_key"`
	Title             string            `json:"title"`
	ConversationState ConversationState `json:"conversation_state"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
