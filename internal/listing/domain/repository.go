package domain

import "context"

// ListingRepository stores committed listings. FindByID, Update and Delete return
// ErrListingNotFound when no record has the given id. Create assigns the ID.
type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	ListAll(ctx context.Context) ([]*Listing, error)
	FindByID(ctx context.Context, id string) (*Listing, error)
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
}

// ImageHost is the remote service that ingests and serves listing photos.
// Upload fetches sourceURL and stores it under key, returning the canonical hosted URL.
// Uploading twice under one key overwrites the earlier image.
type ImageHost interface {
	Upload(ctx context.Context, sourceURL, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// EventPublisher announces listing lifecycle changes to other services.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Notifier sends a courtesy message to the seller once a listing goes live.
type Notifier interface {
	SendListingCreatedEmail(toEmail string, listing *Listing) error
}
