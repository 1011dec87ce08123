package docker

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Deployment errors
	ErrUnsupportedDeployment = errors.New("unsupported deployment type")

	// Build errors
	ErrBuildFailed              = errors.New("image build failed")
	ErrBuildScriptFailed        = errors.New("build script failed")
	ErrArchiveImportUnsupported = errors.New("image archive import is not supported")

	// Start errors
	ErrMissingImage   = errors.New("image not found")
	ErrMissingNetwork = errors.New("network not found")
	ErrMissingVolume  = errors.New("volume not found")

	// Connection errors
	ErrEngineUnreachable = errors.New("insufficient privilege or engine unreachable")
)

// EngineError wraps errors with additional context. Every error the
// orchestrator surfaces is fatal for the current phase; there is no
// retryable tier and no rollback of already-created resources.
type EngineError struct {
	Op      string // Operation that failed
	Entity  string // Entity type (container, network, volume, image, deployment)
	ID      string // Entity name or ID if applicable
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Op, e.Entity, e.ID, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError creates a new EngineError.
func NewEngineError(op, entity, id, message string, err error) *EngineError {
	return &EngineError{
		Op:      op,
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}
