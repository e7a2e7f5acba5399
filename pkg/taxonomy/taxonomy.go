// Package taxonomy exposes outcome group classification lookups.
//
// Only the read surface needed by the outcome definition shims is provided;
// maintaining the group hierarchy is the job of the taxonomy owner.
package taxonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/outcome-content/pkg/itemstore"
)

// OutcomeGroup is one classification entity in the outcome group taxonomy.
type OutcomeGroup struct {
	ID       uuid.UUID         `json:"id"`
	ParentID uuid.UUID         `json:"parent_id,omitempty"`
	Name     string            `json:"name"`
	Culture  itemstore.Culture `json:"culture"`
}

// OutcomeGroupTaxonomy is the full set of groups in one culture.
type OutcomeGroupTaxonomy struct {
	Culture       itemstore.Culture
	OutcomeGroups []OutcomeGroup
}

// Manager resolves outcome groups.
type Manager interface {
	// GetOutcomeGroup returns nil, nil when no group has the id.
	GetOutcomeGroup(ctx context.Context, id uuid.UUID, culture itemstore.Culture) (*OutcomeGroup, error)
	GetTaxonomy(ctx context.Context, culture itemstore.Culture) (*OutcomeGroupTaxonomy, error)
}

type group struct {
	parentID uuid.UUID
	names    map[itemstore.Culture]string
}

// MemoryManager is an in-memory Manager. Names are localized per culture and
// fall back to the invariant name.
type MemoryManager struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]*group
}

// NewMemoryManager creates an empty manager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{groups: make(map[uuid.UUID]*group)}
}

// Put registers or renames a group in culture.
func (m *MemoryManager) Put(id, parentID uuid.UUID, culture itemstore.Culture, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[id]
	if !ok {
		g = &group{names: make(map[itemstore.Culture]string)}
		m.groups[id] = g
	}
	g.parentID = parentID
	g.names[culture] = name
}

func (m *MemoryManager) GetOutcomeGroup(ctx context.Context, id uuid.UUID, culture itemstore.Culture) (*OutcomeGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok {
		return nil, nil
	}
	og := g.localize(id, culture)
	return &og, nil
}

func (m *MemoryManager) GetTaxonomy(ctx context.Context, culture itemstore.Culture) (*OutcomeGroupTaxonomy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tax := &OutcomeGroupTaxonomy{Culture: culture}
	for id, g := range m.groups {
		tax.OutcomeGroups = append(tax.OutcomeGroups, g.localize(id, culture))
	}
	sort.Slice(tax.OutcomeGroups, func(i, j int) bool {
		a, b := tax.OutcomeGroups[i], tax.OutcomeGroups[j]
		if a.Name == b.Name {
			return a.ID.String() < b.ID.String()
		}
		return a.Name < b.Name
	})
	return tax, nil
}

func (g *group) localize(id uuid.UUID, culture itemstore.Culture) OutcomeGroup {
	name, ok := g.names[culture]
	if !ok {
		name = g.names[itemstore.InvariantCulture]
	}
	return OutcomeGroup{ID: id, ParentID: g.parentID, Name: name, Culture: culture}
}

// GroupEntry is one localized group name in a taxonomy seed document.
type GroupEntry struct {
	ID       uuid.UUID         `json:"id"`
	ParentID uuid.UUID         `json:"parent_id"`
	Culture  itemstore.Culture `json:"culture"`
	Name     string            `json:"name"`
}

// Load registers the groups in a JSON array of GroupEntry values. Nothing is
// registered when any entry is invalid.
func (m *MemoryManager) Load(r io.Reader) error {
	var entries []GroupEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return fmt.Errorf("decode taxonomy: %w", err)
	}
	cultures := make([]itemstore.Culture, len(entries))
	for i, e := range entries {
		if e.ID == uuid.Nil {
			return fmt.Errorf("taxonomy entry %d: id is required", i)
		}
		culture, err := itemstore.ParseCulture(string(e.Culture))
		if err != nil {
			return fmt.Errorf("taxonomy entry %d: %w", i, err)
		}
		cultures[i] = culture
	}
	for i, e := range entries {
		m.Put(e.ID, e.ParentID, cultures[i], e.Name)
	}
	return nil
}
