package definitions

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/tendant/outcome-content/pkg/itemstore"
)

// Repository is the outcome definition read/write surface.
type Repository interface {
	// Definition operations
	Get(ctx context.Context, id uuid.UUID, culture itemstore.Culture, includeCultureSpecific bool) (*OutcomeDefinitionRecord, error)
	GetAll(ctx context.Context, culture itemstore.Culture, includeCultureSpecific bool) ([]*OutcomeDefinitionRecord, error)
	Save(ctx context.Context, record *OutcomeDefinitionRecord, culture itemstore.Culture) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Image operations
	GetImage(ctx context.Context, definitionID uuid.UUID, culture itemstore.Culture) (*Image, error)
	SaveImage(ctx context.Context, definitionID uuid.UUID, image *Image) error
	DeleteImage(ctx context.Context, definitionID uuid.UUID) error

	// Outcome type operations, kept for callers that predate outcome groups
	GetType(ctx context.Context, id uuid.UUID) (*OutcomeDefinitionType, error)
	GetAllTypes(ctx context.Context) ([]*OutcomeDefinitionType, error)
	SaveType(ctx context.Context, t *OutcomeDefinitionType) error
	DeleteType(ctx context.Context, id uuid.UUID) error
}

// VersionResolver selects the authoritative version of an item.
// Both methods return (nil, nil) when nothing qualifies.
type VersionResolver interface {
	ResolveApproved(ctx context.Context, templateID, itemID uuid.UUID, culture itemstore.Culture) (*itemstore.ItemVersion, error)
	ResolveApprovedMedia(ctx context.Context, itemID uuid.UUID, culture itemstore.Culture) (*itemstore.ItemVersion, error)
}

// MediaService reads the media type and payload of a resolved media item.
type MediaService interface {
	MimeType(ctx context.Context, iv itemstore.ItemVersion) (string, error)
	Open(ctx context.Context, iv itemstore.ItemVersion) (io.ReadCloser, error)
}
