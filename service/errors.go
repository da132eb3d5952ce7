package service

import (
	"errors"
	"fmt"
)

var (
	ErrParse       = errors.New("failed to parse message")
	ErrCorrection  = errors.New("failed to correct location")
	ErrPersistence = errors.New("failed to persist conversation state")
	ErrSearch      = errors.New("failed to search lawyer directory")
)

// Parse failure stages
const (
	ParseStageTransport  = "transport"
	ParseStageTimeout    = "timeout"
	ParseStageStatus     = "status"
	ParseStageEmpty      = "empty"
	ParseStageJSON       = "json"
	ParseStageValidation = "validation"
)

// ParseError reports why the AI parser could not produce a ParsedQuery
type ParseError struct {
	Provider string
	Stage    string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s parser %s failure", e.Provider, e.Stage)
	}
	return fmt.Sprintf("%s parser %s failure: %v", e.Provider, e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrParse) true for every ParseError
func (e *ParseError) Is(target error) bool { return target == ErrParse }
