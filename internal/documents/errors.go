package documents

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks client-side validation failures.
var ErrInvalidInput = errors.New("invalid input")

// ExternalServiceError wraps a failure from one of the managed collaborators
// so handlers can map it to a stable error code.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Collaborator names used in ExternalServiceError.Service.
const (
	ServiceObjectStore = "object_store"
	ServiceEmbedding   = "embedding"
	ServiceVectorIndex = "vector_index"
	ServiceCompletion  = "completion"
	ServiceDatabase    = "database"
)
