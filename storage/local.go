package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danilovichz/lawpro-v2/models"
)

// LocalStateStore keeps one JSON document per session on the local filesystem
type LocalStateStore struct {
	basePath string
}

// NewLocalStateStore creates a new local state store
func NewLocalStateStore(basePath string) (*LocalStateStore, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStateStore{
		basePath: basePath,
	}, nil
}

// GetState reads a session's state from disk
func (s *LocalStateStore) GetState(ctx context.Context, sessionID string) (*models.ConversationState, error) {
	rel, err := statePath(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.basePath, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	state := &models.ConversationState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return state, nil
}

// SaveState writes a session's state, replacing the previous document atomically
func (s *LocalStateStore) SaveState(ctx context.Context, sessionID string, state *models.ConversationState) error {
	rel, err := statePath(sessionID)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(s.basePath, rel)

	// Create directory structure
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name()) // Clean up on error
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace state: %w", err)
	}
	return nil
}

// DeleteState removes a session's state from disk
func (s *LocalStateStore) DeleteState(ctx context.Context, sessionID string) error {
	rel, err := statePath(sessionID)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(s.basePath, rel))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state: %w", err)
	}

	return nil
}
