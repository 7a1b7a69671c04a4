package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
)

type memItem struct {
	id          int64
	title       string
	contentType string
	// terms holds the term IDs attached to this item, per taxonomy.
	terms map[string][]int64
}

// ContentRepository is an in-memory content store. Term counts are kept
// as stored values and only recomputed by RefreshTermCounts, so tests
// exercise the same stale-count behavior a real store exhibits after a
// deletion pass.
type ContentRepository struct {
	mu    sync.RWMutex
	items map[int64]*memItem
	terms map[string]map[int64]*models.Term
}

func NewContentRepository() *ContentRepository {
	return &ContentRepository{
		items: make(map[int64]*memItem),
		terms: make(map[string]map[int64]*models.Term),
	}
}

// AddTerm registers a term in a taxonomy. Counts start at zero and grow
// as items are attached.
func (r *ContentRepository) AddTerm(taxonomy string, term models.Term) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.terms[taxonomy] == nil {
		r.terms[taxonomy] = make(map[int64]*models.Term)
	}

	stored := term
	r.terms[taxonomy][term.ID] = &stored
}

// AddItem registers an item of a content type, attached to the given
// terms of a taxonomy, and bumps the stored term counts.
func (r *ContentRepository) AddItem(id int64, title, contentType, taxonomy string, termIDs ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		item = &memItem{id: id, title: title, contentType: contentType, terms: make(map[string][]int64)}
		r.items[id] = item
	}

	item.terms[taxonomy] = append(item.terms[taxonomy], termIDs...)

	for _, termID := range termIDs {
		if term, ok := r.terms[taxonomy][termID]; ok {
			term.Count++
		}
	}
}

func (r *ContentRepository) FindItemIDs(_ context.Context, query persistence.ItemQuery) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0)

	for _, item := range r.items {
		if item.contentType != query.ContentType {
			continue
		}

		if len(query.TermIDs) > 0 {
			attached := item.terms[query.Taxonomy]

			found := false

			for _, termID := range query.TermIDs {
				if slices.Contains(attached, termID) {
					found = true

					break
				}
			}

			if !found {
				continue
			}
		}

		ids = append(ids, item.id)
	}

	slices.Sort(ids)

	return ids, nil
}

func (r *ContentRepository) ItemTitle(_ context.Context, id int64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return "", persistence.ErrItemNotFound
	}

	return item.title, nil
}

func (r *ContentRepository) DeleteItem(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return persistence.ErrItemNotFound
	}

	// Stored term counts deliberately go stale here; RefreshTermCounts
	// recomputes them.
	delete(r.items, id)

	return nil
}

func (r *ContentRepository) ListTerms(_ context.Context, taxonomy string) ([]*models.Term, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	terms := make([]*models.Term, 0, len(r.terms[taxonomy]))
	for _, term := range r.terms[taxonomy] {
		copied := *term
		terms = append(terms, &copied)
	}

	slices.SortFunc(terms, func(a, b *models.Term) int {
		return int(a.ID - b.ID)
	})

	return terms, nil
}

func (r *ContentRepository) GetTerm(_ context.Context, id int64, taxonomy string) (*models.Term, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term, ok := r.terms[taxonomy][id]
	if !ok {
		return nil, persistence.ErrTermNotFound
	}

	copied := *term

	return &copied, nil
}

func (r *ContentRepository) RefreshTermCounts(_ context.Context, ids []int64, taxonomy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, termID := range ids {
		term, ok := r.terms[taxonomy][termID]
		if !ok {
			continue
		}

		var count int64

		for _, item := range r.items {
			if slices.Contains(item.terms[taxonomy], termID) {
				count++
			}
		}

		term.Count = count
	}

	return nil
}

func (r *ContentRepository) DeleteTerm(_ context.Context, id int64, taxonomy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.terms[taxonomy][id]; !ok {
		return persistence.ErrTermNotFound
	}

	delete(r.terms[taxonomy], id)

	return nil
}

func (r *ContentRepository) HealthCheck(_ context.Context) error {
	return nil
}

func (r *ContentRepository) Close(_ context.Context) error {
	return nil
}
