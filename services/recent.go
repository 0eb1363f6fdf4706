package services

import "sync"

const recentFacetLimit = 10

// RecentFacets keeps a small most-recently-used list of facet ids for
// quick-add suggestions. It is deliberately in-memory only: the list is
// a throwaway preference, not part of the durable dataset.
type RecentFacets struct {
	mu  sync.Mutex
	ids []string
}

// NewRecentFacets creates an empty MRU list
func NewRecentFacets() *RecentFacets {
	return &RecentFacets{}
}

// Record moves a facet id to the front of the list, dropping the oldest
// entry past the limit
func (r *RecentFacets) Record(facetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.ids)+1)
	ids = append(ids, facetID)
	for _, id := range r.ids {
		if id != facetID {
			ids = append(ids, id)
		}
	}
	if len(ids) > recentFacetLimit {
		ids = ids[:recentFacetLimit]
	}
	r.ids = ids
}

// IDs returns the most-recently-used facet ids, newest first
func (r *RecentFacets) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}
