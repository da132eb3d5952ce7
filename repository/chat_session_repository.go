package repository

import (
	"context"
	"errors"

	"github.com/danilovichz/lawpro-v2/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSessionNotFound is returned when no chat session has the given key
var ErrSessionNotFound = errors.New("chat session not found")

// ChatSessionRepository handles database operations for chat sessions and
// their conversation state
type ChatSessionRepository struct {
	db *pgxpool.Pool
}

// NewChatSessionRepository creates a new chat session repository
func NewChatSessionRepository(db *pgxpool.Pool) *ChatSessionRepository {
	return &ChatSessionRepository{db: db}
}

// Create creates a new chat session; a blank SessionKey is generated
func (r *ChatSessionRepository) Create(ctx context.Context, session *models.ChatSession) error {
	if session.SessionKey == "" {
		session.SessionKey = uuid.NewString()
	}

	query := `
		INSERT INTO chat_sessions (session_key, title, conversation_state)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		session.SessionKey,
		session.Title,
		session.ConversationState,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
}

// GetByKey retrieves a chat session by its session key
func (r *ChatSessionRepository) GetByKey(ctx context.Context, sessionKey string) (*models.ChatSession, error) {
	session := &models.ChatSession{}
	query := `
		SELECT id, session_key, title, conversation_state, created_at, updated_at
		FROM chat_sessions
		WHERE session_key = $1`

	err := r.db.QueryRow(ctx, query, sessionKey).Scan(
		&session.ID,
		&session.SessionKey,
		&session.Title,
		&session.ConversationState,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// GetState returns the conversation state of a session
func (r *ChatSessionRepository) GetState(ctx context.Context, sessionID string) (*models.ConversationState, error) {
	state := &models.ConversationState{}
	query := `SELECT conversation_state FROM chat_sessions WHERE session_key = $1`

	err := r.db.QueryRow(ctx, query, sessionID).Scan(state)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}

	return state, nil
}

// SaveState upserts the conversation state of a session
func (r *ChatSessionRepository) SaveState(ctx context.Context, sessionID string, state *models.ConversationState) error {
	query := `
		INSERT INTO chat_sessions (session_key, conversation_state)
		VALUES ($1, $2)
		ON CONFLICT (session_key) DO UPDATE SET
			conversation_state = EXCLUDED.conversation_state,
			updated_at = NOW()`

	_, err := r.db.Exec(ctx, query, sessionID, *state)
	return err
}

// DeleteState deletes the session together with its state
func (r *ChatSessionRepository) DeleteState(ctx context.Context, sessionID string) error {
	query := `DELETE FROM chat_sessions WHERE session_key = $1`
	tag, err := r.db.Exec(ctx, query, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrStateNotFound
	}
	return nil
}
