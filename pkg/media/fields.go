package media

import (
	"github.com/google/uuid"
	"github.com/tendant/outcome-content/pkg/itemstore"
)

// Media item templates.
var (
	TemplateUnversionedImage = uuid.MustParse("f1828a2c-7e5d-4bbd-98ca-320474871548")
	TemplateUnversionedJpeg  = uuid.MustParse("daf085e8-602e-43a6-8299-038ff171349f")
	TemplateVersionedImage   = uuid.MustParse("c97ba923-8009-4858-bdd5-d8be5fccecf7")
	TemplateVersionedJpeg    = uuid.MustParse("eb3fb96c-d56b-4ac9-97f8-f07b24bb9bf7")
	TemplateFile             = uuid.MustParse("962b53c4-f93b-4df9-9821-415c867b8903")
)

// Templates returns every template treated as media by the resolver.
func Templates() []uuid.UUID {
	return []uuid.UUID{
		TemplateUnversionedImage,
		TemplateUnversionedJpeg,
		TemplateVersionedImage,
		TemplateVersionedJpeg,
		TemplateFile,
	}
}

// Shared fields on media items.
var (
	FieldBlobKey   = itemstore.MustField("40e50ed9-ba07-4702-992e-a912738d32dc")
	FieldMimeType  = itemstore.MustField("6f47a0a5-9c94-4b48-abeb-42d38def6054")
	FieldExtension = itemstore.MustField("c06867fe-9a43-4c7d-b739-48780492d06f")
	FieldSize      = itemstore.MustField("6954b7c7-2487-423f-8600-436cb3b6dc0e")
	FieldFileName  = itemstore.MustField("2b6cd8f1-4e0a-4d7c-9f35-8a1e6b2c7d40")
)
