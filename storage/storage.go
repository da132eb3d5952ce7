package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/danilovichz/lawpro-v2/models"
	"github.com/danilovichz/lawpro-v2/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StateStore persists conversation state per session
type StateStore interface {
	// GetState returns models.ErrStateNotFound when the session has no state
	GetState(ctx context.Context, sessionID string) (*models.ConversationState, error)

	// SaveState replaces the stored state
	SaveState(ctx context.Context, sessionID string, state *models.ConversationState) error

	// DeleteState removes the stored state
	DeleteState(ctx context.Context, sessionID string) error
}

// StoreType represents the state store backend type
type StoreType string

const (
	StoreTypePostgres StoreType = "postgres"
	StoreTypeLocal    StoreType = "local"
	StoreTypeS3       StoreType = "s3"
)

// StoreConfig holds configuration for the state store
type StoreConfig struct {
	Type         StoreType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	S3Prefix     string // Key prefix for state objects
	AWSAccessKey string
	AWSSecretKey string
}

var ErrInvalidSessionID = errors.New("invalid session id")

var sessionIDRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

// NewStateStore creates a state store based on configuration. db is only
// used by the postgres backend.
func NewStateStore(cfg StoreConfig, db *pgxpool.Pool) (StateStore, error) {
	switch cfg.Type {
	case StoreTypePostgres:
		if db == nil {
			return nil, errors.New("postgres state store requires a database pool")
		}
		return repository.NewChatSessionRepository(db), nil
	case StoreTypeLocal:
		return NewLocalStateStore(cfg.LocalPath)
	case StoreTypeS3:
		return NewS3StateStore(cfg)
	default:
		return nil, fmt.Errorf("unknown state store type: %s", cfg.Type)
	}
}

// StoreConfigFromEnv reads the state store configuration from environment variables
func StoreConfigFromEnv() (StoreConfig, error) {
	storeType := os.Getenv("STATE_STORE")
	if storeType == "" {
		storeType = string(StoreTypePostgres)
	}

	cfg := StoreConfig{
		Type: StoreType(storeType),
	}

	switch cfg.Type {
	case StoreTypePostgres:
	case StoreTypeLocal:
		cfg.LocalPath = os.Getenv("STATE_LOCAL_PATH")
		if cfg.LocalPath == "" {
			cfg.LocalPath = "./storage/state" // Default local storage path
		}

	case StoreTypeS3:
		cfg.S3Bucket = os.Getenv("AWS_S3_BUCKET")
		cfg.S3Region = os.Getenv("AWS_REGION")
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1" // Default region
		}
		cfg.S3Prefix = os.Getenv("STATE_S3_PREFIX")
		if cfg.S3Prefix == "" {
			cfg.S3Prefix = "conversation-state/"
		}
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

		if cfg.S3Bucket == "" {
			return cfg, errors.New("AWS_S3_BUCKET environment variable is required for S3 state store")
		}

	default:
		return cfg, fmt.Errorf("unknown state store type: %s", storeType)
	}

	return cfg, nil
}

// NewStateStoreFromEnv creates a state store from environment variables
func NewStateStoreFromEnv(db *pgxpool.Pool) (StateStore, error) {
	cfg, err := StoreConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewStateStore(cfg, db)
}

// statePath returns the sharded relative path of a session's state document
func statePath(sessionID string) (string, error) {
	if !sessionIDRe.MatchString(sessionID) || strings.Trim(sessionID, ".") == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	shard := sessionID
	if len(shard) > 2 {
		shard = shard[:2]
	}
	shard = strings.ReplaceAll(shard, ".", "_")
	return fmt.Sprintf("%s/%s.json", shard, sessionID), nil
}
