package memory

import (
	"context"
	"sync"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/google/uuid"
)

// ListingRepository keeps listings in process memory. Readers only ever see whole
// records: every write swaps a private copy in under the lock.
type ListingRepository struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing
	order    []string
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{listings: make(map[string]*domain.Listing)}
}

func (r *ListingRepository) Create(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	for _, taken := r.listings[id]; taken; _, taken = r.listings[id] {
		id = uuid.NewString()
	}
	listing.ID = id

	stored := *listing
	r.listings[id] = &stored
	r.order = append(r.order, id)
	return nil
}

// ListAll returns copies in creation order.
func (r *ListingRepository) ListAll(_ context.Context) ([]*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Listing, 0, len(r.order))
	for _, id := range r.order {
		l := *r.listings[id]
		out = append(out, &l)
	}
	return out, nil
}

func (r *ListingRepository) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	found := *l
	return &found, nil
}

func (r *ListingRepository) Update(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listing.ID]; !ok {
		return domain.ErrListingNotFound
	}
	stored := *listing
	r.listings[listing.ID] = &stored
	return nil
}

func (r *ListingRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(r.listings, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
