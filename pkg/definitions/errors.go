package definitions

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidArgument indicates a required argument was missing
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates no approved outcome definition exists for the id and culture
	ErrNotFound = errors.New("not found")

	// ErrConsistencyFault indicates stored data references content that cannot be resolved
	ErrConsistencyFault = errors.New("content consistency fault")

	// ErrNotSupported indicates a write operation this layer does not provide
	ErrNotSupported = errors.New("operation not supported")

	// ErrTaxonomyUnavailable indicates no taxonomy manager is configured
	ErrTaxonomyUnavailable = errors.New("taxonomy manager unavailable")

	// ErrImageTooLarge indicates an image payload exceeded the configured limit
	ErrImageTooLarge = errors.New("image exceeds size limit")
)

// DefinitionError represents an error related to outcome definition operations
type DefinitionError struct {
	DefinitionID uuid.UUID
	Op           string
	Err          error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("definition operation %s failed for definition %s: %v", e.Op, e.DefinitionID, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}
