package taxonomy_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/outcome-content/pkg/itemstore"
	"github.com/tendant/outcome-content/pkg/taxonomy"
)

func TestMemoryManager(t *testing.T) {
	ctx := context.Background()
	m := taxonomy.NewMemoryManager()

	revenue := uuid.New()
	engagement := uuid.New()
	m.Put(revenue, uuid.Nil, itemstore.InvariantCulture, "Revenue")
	m.Put(revenue, uuid.Nil, itemstore.MustCulture("da"), "Omsætning")
	m.Put(engagement, uuid.Nil, itemstore.InvariantCulture, "Engagement")

	t.Run("GetOutcomeGroup", func(t *testing.T) {
		g, err := m.GetOutcomeGroup(ctx, revenue, itemstore.InvariantCulture)
		require.NoError(t, err)
		require.NotNil(t, g)
		assert.Equal(t, "Revenue", g.Name)

		g, err = m.GetOutcomeGroup(ctx, revenue, itemstore.MustCulture("da"))
		require.NoError(t, err)
		assert.Equal(t, "Omsætning", g.Name)
	})

	t.Run("FallsBackToInvariantName", func(t *testing.T) {
		g, err := m.GetOutcomeGroup(ctx, engagement, itemstore.MustCulture("da"))
		require.NoError(t, err)
		assert.Equal(t, "Engagement", g.Name)
	})

	t.Run("Missing", func(t *testing.T) {
		g, err := m.GetOutcomeGroup(ctx, uuid.New(), itemstore.InvariantCulture)
		require.NoError(t, err)
		assert.Nil(t, g)
	})

	t.Run("GetTaxonomySorted", func(t *testing.T) {
		tax, err := m.GetTaxonomy(ctx, itemstore.InvariantCulture)
		require.NoError(t, err)
		require.Len(t, tax.OutcomeGroups, 2)
		assert.Equal(t, "Engagement", tax.OutcomeGroups[0].Name)
		assert.Equal(t, "Revenue", tax.OutcomeGroups[1].Name)
	})
}

func TestMemoryManager_Load(t *testing.T) {
	ctx := context.Background()
	revenue := uuid.New()
	doc := `[
		{"id": "` + revenue.String() + `", "culture": "", "name": "Revenue"},
		{"id": "` + revenue.String() + `", "culture": "DA", "name": "Omsætning"}
	]`

	m := taxonomy.NewMemoryManager()
	require.NoError(t, m.Load(strings.NewReader(doc)))

	g, err := m.GetOutcomeGroup(ctx, revenue, itemstore.MustCulture("da"))
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "Omsætning", g.Name)

	assert.Error(t, m.Load(strings.NewReader(`[{"name": "no id"}]`)))
	assert.Error(t, m.Load(strings.NewReader(`{`)))

	t.Run("InvalidEntryRegistersNothing", func(t *testing.T) {
		m := taxonomy.NewMemoryManager()
		valid := uuid.New()
		doc := `[
			{"id": "` + valid.String() + `", "name": "Revenue"},
			{"id": "` + uuid.New().String() + `", "culture": "!!", "name": "Broken"}
		]`
		require.Error(t, m.Load(strings.NewReader(doc)))

		g, err := m.GetOutcomeGroup(ctx, valid, itemstore.InvariantCulture)
		require.NoError(t, err)
		assert.Nil(t, g)
	})
}
