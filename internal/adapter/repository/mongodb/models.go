package mongodb

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listingDocument struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	OwnerID      string              `bson:"owner_id"`
	State        domain.ListingState `bson:"state"`
	Price        float64             `bson:"price"`
	Manufacturer string              `bson:"manufacturer"`
	Model        string              `bson:"model"`
	Type         domain.VehicleType  `bson:"type"`
	Photo        string              `bson:"photo"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

// toListingDocument leaves the ObjectID nil for listings that have not been stored yet.
func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	docID := primitive.NilObjectID
	if l.ID != "" {
		var err error
		docID, err = primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("toListingDocument: invalid ID format '%s': %w", l.ID, err)
		}
	}
	return &listingDocument{
		ID:           docID,
		OwnerID:      l.OwnerID,
		State:        l.State,
		Price:        l.Price,
		Manufacturer: l.Manufacturer,
		Model:        l.Model,
		Type:         l.Type,
		Photo:        l.Photo,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}, nil
}

func toDomainListing(d *listingDocument) *domain.Listing {
	return &domain.Listing{
		ID:           d.ID.Hex(),
		OwnerID:      d.OwnerID,
		State:        d.State,
		Price:        d.Price,
		Manufacturer: d.Manufacturer,
		Model:        d.Model,
		Type:         d.Type,
		Photo:        d.Photo,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	listings := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		listings = append(listings, toDomainListing(doc))
	}
	return listings
}
