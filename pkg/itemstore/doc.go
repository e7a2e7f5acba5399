// Package itemstore models a versioned, culture-aware content item store.
//
// An Item carries culture-invariant (shared) fields plus a list of Versions.
// Each Version belongs to one culture, has a 1-based number within that
// culture and a workflow state. Only approved versions are visible to
// readers; the Resolver picks the latest approved version for a culture.
//
// Repositories (memory, Postgres) live under repo/.
package itemstore
