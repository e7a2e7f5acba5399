package definitions

import (
	"github.com/google/uuid"
	"github.com/tendant/outcome-content/pkg/itemstore"
)

// Outcome definition template and the container item new definitions are
// created under.
var (
	TemplateOutcomeDefinition = uuid.MustParse("ee43c2a6-5a4e-46b8-a3f1-6dd4d0d4e8b0")
	ContainerOutcomes         = uuid.MustParse("062a1e69-0bf6-4d6b-ab8f-2bdbfb0b0f34")
)

// Field identifiers. These and the "0"/"1" boolean encoding are the only
// bit-exact contract with the item store.
var (
	FieldName                              = itemstore.MustField("d2a2b9d6-2c3b-4d29-8c6c-9ab6f4cda6e1")
	FieldDescription                       = itemstore.MustField("4b9e7c8a-7a3f-4b8d-9e55-3f2a1c0d9e42")
	FieldImage                             = itemstore.MustField("8b7c2f14-0a6d-4d8e-b1c3-5e9f7a2d4c63")
	FieldOutcomeGroupID                    = itemstore.MustField("36ce2d3e-4f1a-4b9c-8d7e-6f5a4b3c2d11")
	FieldMonetaryValueApplicable           = itemstore.MustField("9d4e5f6a-7b8c-4d9e-a0f1-b2c3d4e5f607")
	FieldAdditionalRegistrationsAreIgnored = itemstore.MustField("1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d")
)

// Classification fields shared by every definition type.
var (
	FieldClassificationChannel       = itemstore.MustField("b1c2d3e4-f5a6-4b7c-8d9e-0f1a2b3c4d01")
	FieldClassificationCampaignGroup = itemstore.MustField("b1c2d3e4-f5a6-4b7c-8d9e-0f1a2b3c4d02")
	FieldClassificationAssetType     = itemstore.MustField("b1c2d3e4-f5a6-4b7c-8d9e-0f1a2b3c4d03")
)

// Custom value fields shared by every definition type.
var (
	FieldCustomValueScore    = itemstore.MustField("c9d8e7f6-a5b4-4c3d-9e2f-1a0b9c8d7e01")
	FieldCustomValueCurrency = itemstore.MustField("c9d8e7f6-a5b4-4c3d-9e2f-1a0b9c8d7e02")
	FieldCustomValueNotes    = itemstore.MustField("c9d8e7f6-a5b4-4c3d-9e2f-1a0b9c8d7e03")
)

// ClassificationFields returns the default classification field set.
func ClassificationFields() []itemstore.FieldID {
	return []itemstore.FieldID{
		FieldClassificationChannel,
		FieldClassificationCampaignGroup,
		FieldClassificationAssetType,
	}
}

// CustomValueFields returns the default custom value field set.
func CustomValueFields() []itemstore.FieldID {
	return []itemstore.FieldID{
		FieldCustomValueScore,
		FieldCustomValueCurrency,
		FieldCustomValueNotes,
	}
}
