package usecase

import (
	"context"
	"errors"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/stretchr/testify/mock"
)

type MockImageHost struct{ mock.Mock }

func (m *MockImageHost) Upload(ctx context.Context, sourceURL, key string) (string, error) {
	args := m.Called(ctx, sourceURL, key)
	return args.String(0), args.Error(1)
}
func (m *MockImageHost) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) SendListingCreatedEmail(toEmail string, listing *domain.Listing) error {
	args := m.Called(toEmail, listing)
	return args.Error(0)
}

// failingRepository wraps a working repository and fails the chosen write.
type failingRepository struct {
	domain.ListingRepository
	failCreate bool
	failUpdate bool
	failDelete bool
}

var errStoreDown = errors.New("store unavailable")

func (r *failingRepository) Create(ctx context.Context, l *domain.Listing) error {
	if r.failCreate {
		return errStoreDown
	}
	return r.ListingRepository.Create(ctx, l)
}

func (r *failingRepository) Update(ctx context.Context, l *domain.Listing) error {
	if r.failUpdate {
		return errStoreDown
	}
	return r.ListingRepository.Update(ctx, l)
}

func (r *failingRepository) Delete(ctx context.Context, id string) error {
	if r.failDelete {
		return errStoreDown
	}
	return r.ListingRepository.Delete(ctx, id)
}

// snapshotRepository serves FindByID from a fixed record, like a cache entry that
// outlived the stored listing.
type snapshotRepository struct {
	domain.ListingRepository
	snapshot *domain.Listing
}

func (r *snapshotRepository) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	if r.snapshot != nil && r.snapshot.ID == id {
		cp := *r.snapshot
		return &cp, nil
	}
	return nil, domain.ErrListingNotFound
}
