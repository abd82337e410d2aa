package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageType identifies who authored a chat message.
type MessageType string

const (
	MessageUser      MessageType = "user"
	MessageAssistant MessageType = "ai"
	MessageSystem    MessageType = "system"
)

// Chat groups the ordered messages of one conversation session.
type Chat struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	CacheName string    `json:"-"` // instruction-cache handle, empty when none
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatTitleFromMessage derives a chat title from the first user message.
func ChatTitleFromMessage(message string) string {
	const maxLen = 50
	runes := []rune(message)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return message
}

// Message is one immutable entry in a chat transcript.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	ChatID    uuid.UUID   `json:"chatId"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	ModelUsed string      `json:"modelUsed,omitempty"`
	AudioData string      `json:"audioData,omitempty"` // base64 WAV payload, empty when speech was skipped
	AudioMIME string      `json:"audioMimeType,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
