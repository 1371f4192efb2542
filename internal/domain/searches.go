package domain

// MaxRecentSearches caps the recent-search history.
const MaxRecentSearches = 10

// RecentSearchesSnapshot is the persisted recent-search document:
// most-recent-first, deduplicated, capped at MaxRecentSearches.
type RecentSearchesSnapshot struct {
	Queries []string `json:"queries"`
}

// EmptyRecentSearches returns the default document used when the persisted
// key is absent.
func EmptyRecentSearches() RecentSearchesSnapshot {
	return RecentSearchesSnapshot{Queries: []string{}}
}

// Clone returns an independent copy safe to hand to subscribers.
func (r RecentSearchesSnapshot) Clone() RecentSearchesSnapshot {
	queries := make([]string, len(r.Queries))
	copy(queries, r.Queries)
	return RecentSearchesSnapshot{Queries: queries}
}
