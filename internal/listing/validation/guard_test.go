package validation

import (
	"encoding/json"
	"testing"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() Payload {
	return Payload{
		"state":        "used",
		"price":        json.Number("12000"),
		"manufacturer": "Toyota",
		"model":        "Camry",
		"type":         "sedan",
		"photo":        "https://example.com/img/car1.jpg",
	}
}

func TestCheck_Valid(t *testing.T) {
	draft, err := Check(validPayload())
	require.NoError(t, err)

	assert.Equal(t, domain.StateUsed, draft.State)
	assert.Equal(t, 12000.0, draft.Price)
	assert.Equal(t, "Toyota", draft.Manufacturer)
	assert.Equal(t, "Camry", draft.Model)
	assert.Equal(t, domain.TypeSedan, draft.Type)
	assert.Equal(t, "https://example.com/img/car1.jpg", draft.Photo)
}

func TestCheck_MissingFields(t *testing.T) {
	for _, field := range RequiredFields {
		t.Run("absent "+field, func(t *testing.T) {
			p := validPayload()
			delete(p, field)
			assert.Equal(t, []string{field}, p.MissingFields())

			_, err := Check(p)
			assert.ErrorIs(t, err, domain.ErrMissingFields)
		})
	}

	p := validPayload()
	p["model"] = nil
	_, err := Check(p)
	assert.ErrorIs(t, err, domain.ErrMissingFields)

	assert.Equal(t, RequiredFields, Payload{}.MissingFields())
}

func TestCheck_EmptyStringIsPresentButInvalid(t *testing.T) {
	p := validPayload()
	p["manufacturer"] = ""

	assert.Empty(t, p.MissingFields())
	_, err := Check(p)
	requireReason(t, err, FieldManufacturer, "manufacturer must not be empty")
}

func TestCheck_ReportsFirstFailureInFixedOrder(t *testing.T) {
	tests := []struct {
		name   string
		breaks map[string]interface{}
		field  string
	}{
		{"price before state", map[string]interface{}{"price": json.Number("-5"), "state": "broken"}, FieldPrice},
		{"state before manufacturer", map[string]interface{}{"state": "broken", "manufacturer": ""}, FieldState},
		{"manufacturer before model", map[string]interface{}{"manufacturer": "", "model": ""}, FieldManufacturer},
		{"model before type", map[string]interface{}{"model": 1, "type": "rocket"}, FieldModel},
		{"type before photo", map[string]interface{}{"type": "rocket", "photo": "nope"}, FieldType},
		{"photo last", map[string]interface{}{"photo": "nope"}, FieldPhoto},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			for k, v := range tt.breaks {
				p[k] = v
			}
			_, err := Check(p)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
