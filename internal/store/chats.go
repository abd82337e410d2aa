package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yarimal/ai-crm/internal/domain"
)

const chatColumns = `id, title, summary, cache_name, created_at, updated_at`
const messageColumns = `id, chat_id, content, message_type, model_used, audio_data, audio_mime_type, created_at`

func scanChat(row pgx.Row) (domain.Chat, error) {
	var c domain.Chat
	err := row.Scan(&c.ID, &c.Title, &c.Summary, &c.CacheName, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanMessage(row pgx.Row) (domain.Message, error) {
	var (
		m   domain.Message
		typ string
	)
	err := row.Scan(&m.ID, &m.ChatID, &m.Content, &typ, &m.ModelUsed,
		&m.AudioData, &m.AudioMIME, &m.CreatedAt)
	m.Type = domain.MessageType(typ)
	return m, err
}

// GetChat loads one chat by id.
func (q *Queries) GetChat(ctx context.Context, id uuid.UUID) (*domain.Chat, error) {
	c, err := scanChat(q.db.QueryRow(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Chat not found")
	}
	if err != nil {
		return nil, fmt.Errorf("store: get chat: %w", err)
	}
	return &c, nil
}

// ListChats returns chats ordered by last activity, newest first.
func (q *Queries) ListChats(ctx context.Context) ([]domain.Chat, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+chatColumns+` FROM chats ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list chats: %w", err)
	}
	defer rows.Close()

	var out []domain.Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan chat: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateChat inserts a chat row.
func (q *Queries) CreateChat(ctx context.Context, c *domain.Chat) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := q.db.Exec(ctx, `
		INSERT INTO chats (id, title, summary, cache_name, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$5)`,
		c.ID, c.Title, c.Summary, c.CacheName, now)
	if err != nil {
		return domain.Internal("failed to create chat", err)
	}
	return nil
}

// TouchChat bumps the chat's last-activity timestamp.
func (q *Queries) TouchChat(ctx context.Context, id uuid.UUID) error {
	if _, err := q.db.Exec(ctx,
		`UPDATE chats SET updated_at = NOW() WHERE id = $1`, id); err != nil {
		return domain.Internal("failed to touch chat", err)
	}
	return nil
}

// SetChatCacheName stores (or clears) the chat's instruction-cache handle.
func (q *Queries) SetChatCacheName(ctx context.Context, id uuid.UUID, cacheName string) error {
	if _, err := q.db.Exec(ctx,
		`UPDATE chats SET cache_name = $2 WHERE id = $1`, id, cacheName); err != nil {
		return domain.Internal("failed to set chat cache name", err)
	}
	return nil
}

// DeleteChat removes the chat; messages cascade at the schema level. Chats
// are the one entity with hard deletes, matching the session lifecycle.
func (q *Queries) DeleteChat(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return domain.Internal("failed to delete chat", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Chat not found")
	}
	return nil
}

// CreateMessage appends an immutable message to a chat.
func (q *Queries) CreateMessage(ctx context.Context, m *domain.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.Exec(ctx, `
		INSERT INTO messages (id, chat_id, content, message_type, model_used, audio_data, audio_mime_type, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.ChatID, m.Content, string(m.Type), m.ModelUsed, m.AudioData, m.AudioMIME, m.CreatedAt)
	if err != nil {
		return domain.Internal("failed to create message", err)
	}
	return nil
}

// ListMessages returns a chat's messages in creation order.
func (q *Queries) ListMessages(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE chat_id = $1 ORDER BY created_at`, chatID)
	if err != nil {
		return nil, fmt.Errorf("store: list messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
