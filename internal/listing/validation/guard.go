package validation

import (
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
)

// Payload is a decoded create/update request body keyed by JSON field name.
type Payload map[string]interface{}

// RequiredFields is the schema every create/update payload must satisfy before any
// field check runs. A field is missing when its key is absent or its value is null.
var RequiredFields = []string{FieldState, FieldPrice, FieldManufacturer, FieldModel, FieldType, FieldPhoto}

// MissingFields returns the required fields absent from p, in schema order.
func (p Payload) MissingFields() []string {
	var missing []string
	for _, f := range RequiredFields {
		if v, ok := p[f]; !ok || v == nil {
			missing = append(missing, f)
		}
	}
	return missing
}

// Check verifies structure first, then runs the field checks in the order
// price, state, manufacturer, model, type, photo and stops at the first failure.
// It returns domain.ErrMissingFields or a *domain.ValidationError.
func Check(p Payload) (*domain.ListingDraft, error) {
	if len(p.MissingFields()) > 0 {
		return nil, domain.ErrMissingFields
	}

	price, err := parsePrice(p[FieldPrice])
	if err != nil {
		return nil, err
	}
	state, err := parseState(p[FieldState])
	if err != nil {
		return nil, err
	}
	manufacturer, err := parseText(FieldManufacturer, p[FieldManufacturer])
	if err != nil {
		return nil, err
	}
	model, err := parseText(FieldModel, p[FieldModel])
	if err != nil {
		return nil, err
	}
	vehicleType, err := parseType(p[FieldType])
	if err != nil {
		return nil, err
	}
	photo, err := parseImageURL(p[FieldPhoto])
	if err != nil {
		return nil, err
	}

	return &domain.ListingDraft{
		State:        state,
		Price:        price,
		Manufacturer: manufacturer,
		Model:        model,
		Type:         vehicleType,
		Photo:        photo,
	}, nil
}
