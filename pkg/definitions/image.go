package definitions

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/tendant/outcome-content/pkg/itemstore"
	"github.com/tendant/outcome-content/pkg/media"
)

// Image is a fully buffered image payload.
type Image struct {
	Data     []byte
	MimeType string
}

// GetImage returns the image referenced by a definition's image field in
// culture. It returns (nil, nil) when the definition has no image. A
// reference to media that cannot be resolved is ErrConsistencyFault.
func (r *OutcomeRepository) GetImage(ctx context.Context, definitionID uuid.UUID, culture itemstore.Culture) (*Image, error) {
	img, result, err := r.getImage(ctx, definitionID, culture)
	r.metrics.IncrementImageResolution(result)
	if err != nil {
		return nil, err
	}
	if img != nil {
		r.metrics.ObserveImageBytes(len(img.Data))
	}
	return img, nil
}

func (r *OutcomeRepository) getImage(ctx context.Context, definitionID uuid.UUID, culture itemstore.Culture) (*Image, string, error) {
	if definitionID == uuid.Nil {
		return nil, imageResultError, fmt.Errorf("%w: definition id is required", ErrInvalidArgument)
	}
	definition, err := r.resolver.ResolveApproved(ctx, r.templateID, definitionID, culture)
	if err != nil {
		return nil, imageResultError, &DefinitionError{DefinitionID: definitionID, Op: "get_image", Err: err}
	}
	if definition == nil {
		return nil, imageResultNotFound, &DefinitionError{DefinitionID: definitionID, Op: "get_image", Err: ErrNotFound}
	}

	mediaID := ParseMediaReference(definition.Field(FieldImage))
	if mediaID == nil {
		return nil, imageResultNoImage, nil
	}
	if r.media == nil {
		return nil, imageResultError, &DefinitionError{DefinitionID: definitionID, Op: "get_image", Err: errors.New("media service not configured")}
	}

	mediaItem, err := r.resolver.ResolveApprovedMedia(ctx, *mediaID, culture)
	if err != nil {
		return nil, imageResultError, &DefinitionError{DefinitionID: definitionID, Op: "get_image", Err: err}
	}
	if mediaItem == nil {
		r.logger.Error("outcome definition references missing image",
			"definition_id", definitionID,
			"media_id", *mediaID,
			"culture", culture.String())
		return nil, imageResultConsistencyFault, &DefinitionError{
			DefinitionID: definitionID,
			Op:           "get_image",
			Err:          fmt.Errorf("%w: image item %s cannot be found", ErrConsistencyFault, *mediaID),
		}
	}

	mimeType, err := r.media.MimeType(ctx, *mediaItem)
	if err != nil {
		return nil, imageResultError, &DefinitionError{DefinitionID: definitionID, Op: "get_image", Err: err}
	}

	rc, err := r.media.Open(ctx, *mediaItem)
	if err != nil {
		if errors.Is(err, media.ErrNoMediaStream) {
			r.logger.Error("outcome definition image has no stream",
				"definition_id", definitionID,
				"media_id", *mediaID)
			return nil, imageResultConsistencyFault, &DefinitionError{
				DefinitionID: definitionID,
				Op:           "get_image",
				Err:          fmt.Errorf("%w: %v", ErrConsistencyFault, err),
			}
		}
		return nil, imageResultError, &DefinitionError{DefinitionID: definitionID, Op: "get_image", Err: err}
	}
	defer rc.Close()

	data, err := r.readImage(rc)
	if err != nil {
		return nil, imageResultError, &DefinitionError{DefinitionID: definitionID, Op: "get_image", Err: err}
	}
	return &Image{Data: data, MimeType: mimeType}, imageResultFound, nil
}

func (r *OutcomeRepository) readImage(rc io.Reader) ([]byte, error) {
	if r.maxImageBytes == 0 {
		return io.ReadAll(rc)
	}
	data, err := io.ReadAll(io.LimitReader(rc, r.maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > r.maxImageBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, r.maxImageBytes)
	}
	return data, nil
}

// SaveImage always fails: images are managed in the media library.
func (r *OutcomeRepository) SaveImage(ctx context.Context, definitionID uuid.UUID, image *Image) error {
	return &DefinitionError{DefinitionID: definitionID, Op: "save_image", Err: ErrNotSupported}
}

// DeleteImage always fails: images are managed in the media library.
func (r *OutcomeRepository) DeleteImage(ctx context.Context, definitionID uuid.UUID) error {
	return &DefinitionError{DefinitionID: definitionID, Op: "delete_image", Err: ErrNotSupported}
}
