// Package definitions maps outcome definition items to typed records.
//
// An outcome definition is an item based on TemplateOutcomeDefinition. Its
// group reference and the two behavioral flags are culture-invariant and
// stored as shared fields; name and description are stored per culture
// version. The Codec performs the field translation using a table of
// FieldBindings, and OutcomeMapper is the Codec configured for outcomes.
//
// OutcomeRepository reads definitions through a VersionResolver, so only
// approved content is ever returned, and resolves definition images by
// following the image field to a media item:
//
//	definition (approved, culture) -> image field -> media item -> MediaService
//
// A definition without an image yields a nil Image. A reference that cannot
// be resolved is reported as ErrConsistencyFault.
//
// Storing outcome types is no longer supported. GetType and GetAllTypes
// answer from the outcome group taxonomy; SaveType and DeleteType, like
// SaveImage and DeleteImage, return ErrNotSupported.
package definitions
