package itemstore_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/outcome-content/pkg/itemstore"
)

var descriptionField = itemstore.MustField("5b2e8d1a-9c47-4f3e-a6b0-7d1c2e3f4a50")

func TestParseCulture(t *testing.T) {
	tests := []struct {
		input   string
		want    itemstore.Culture
		wantErr bool
	}{
		{"", itemstore.InvariantCulture, false},
		{"invariant", itemstore.InvariantCulture, false},
		{"und", itemstore.InvariantCulture, false},
		{"en", "en", false},
		{"en-us", "en-US", false},
		{" da-DK ", "da-DK", false},
		{"not a culture!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := itemstore.ParseCulture(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, itemstore.ErrInvalidCulture)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestItem_AddVersionNumbersPerCulture(t *testing.T) {
	item := itemstore.NewItem(uuid.New(), uuid.Nil, "x")
	en := itemstore.MustCulture("en")
	de := itemstore.MustCulture("de")

	assert.Equal(t, 1, item.AddVersion(en, itemstore.WorkflowStateDraft).Number)
	assert.Equal(t, 2, item.AddVersion(en, itemstore.WorkflowStateDraft).Number)
	assert.Equal(t, 1, item.AddVersion(de, itemstore.WorkflowStateDraft).Number)
	assert.Equal(t, []itemstore.Culture{"de", "en"}, item.Cultures())
	assert.Equal(t, 2, item.LatestVersion(en).Number)
	assert.Nil(t, item.LatestApprovedVersion(en))
}

func TestItemVersion_FieldPrefersVersionValue(t *testing.T) {
	item := itemstore.NewItem(uuid.New(), uuid.Nil, "x")
	item.SetShared(descriptionField, "shared")
	v := item.AddVersion(itemstore.MustCulture("en"), itemstore.WorkflowStateApproved)

	iv := itemstore.ItemVersion{Item: item, Version: v}
	assert.Equal(t, "shared", iv.Field(descriptionField))

	v.SetField(descriptionField, "")
	assert.Equal(t, "", iv.Field(descriptionField), "an explicitly empty version value shadows the shared one")

	v.SetField(descriptionField, "local")
	assert.Equal(t, "local", iv.Field(descriptionField))
}

func TestItem_CloneIsDeep(t *testing.T) {
	item := itemstore.NewItem(uuid.New(), uuid.Nil, "x")
	item.SetShared(descriptionField, "a")
	item.AddVersion(itemstore.InvariantCulture, itemstore.WorkflowStateApproved).SetField(descriptionField, "b")

	clone := item.Clone()
	clone.SetShared(descriptionField, "changed")
	clone.Versions[0].SetField(descriptionField, "changed")

	assert.Equal(t, "a", item.Shared(descriptionField))
	assert.Equal(t, "b", item.Versions[0].Field(descriptionField))
}
