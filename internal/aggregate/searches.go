package aggregate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"marketplace-state-service/internal/domain"
	"marketplace-state-service/internal/repository"
	"marketplace-state-service/internal/store"
)

// RecentSearches owns the search-history document: most-recent-first,
// deduplicated, capped.
type RecentSearches struct {
	core *core[domain.RecentSearchesSnapshot]
}

// NewRecentSearches creates the search-history aggregate over the given
// store.
func NewRecentSearches(kv store.KVStore, logger *zap.Logger) *RecentSearches {
	repo := repository.New[domain.RecentSearchesSnapshot](kv, logger)
	return &RecentSearches{core: newCore(store.KeyRecentSearches, repo, logger, domain.RecentSearchesSnapshot.Clone)}
}

// Load pulls the persisted history into memory. Call once at startup.
func (r *RecentSearches) Load(ctx context.Context) error {
	return r.core.load(ctx, domain.EmptyRecentSearches())
}

// Ready reports whether the initial load completed.
func (r *RecentSearches) Ready() bool { return r.core.isReady() }

// Snapshot returns a copy of the current history.
func (r *RecentSearches) Snapshot() domain.RecentSearchesSnapshot { return r.core.current() }

// Subscribe registers a callback invoked with every committed snapshot.
func (r *RecentSearches) Subscribe(fn Subscriber[domain.RecentSearchesSnapshot]) {
	r.core.subscribe(fn)
}

// Record moves the query to the front of the history, dropping an earlier
// occurrence and trimming past the cap.
func (r *RecentSearches) Record(ctx context.Context, query string) (domain.RecentSearchesSnapshot, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.Snapshot(), fmt.Errorf("%w: search query is empty", domain.ErrValidation)
	}
	return r.core.mutate(ctx, func(cur domain.RecentSearchesSnapshot) (domain.RecentSearchesSnapshot, error) {
		queries := make([]string, 0, len(cur.Queries)+1)
		queries = append(queries, query)
		for _, q := range cur.Queries {
			if q != query {
				queries = append(queries, q)
			}
		}
		if len(queries) > domain.MaxRecentSearches {
			queries = queries[:domain.MaxRecentSearches]
		}
		cur.Queries = queries
		return cur, nil
	})
}

// Clear empties the history and removes the persisted key.
func (r *RecentSearches) Clear(ctx context.Context) (domain.RecentSearchesSnapshot, error) {
	return r.core.clear(ctx, domain.EmptyRecentSearches())
}

// Reset implements the session reset contract.
func (r *RecentSearches) Reset(ctx context.Context) error {
	_, err := r.Clear(ctx)
	return err
}
