// Package validation holds the field checks for listing payloads and the guard that
// runs them in a fixed order.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
)

const (
	FieldState        = "state"
	FieldPrice        = "price"
	FieldManufacturer = "manufacturer"
	FieldModel        = "model"
	FieldType         = "type"
	FieldPhoto        = "photo"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".svg":  true,
}

func invalid(field, format string, args ...interface{}) *domain.ValidationError {
	return &domain.ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ValidatePrice accepts JSON numbers and numeric strings that are finite and not negative.
func ValidatePrice(v interface{}) error {
	if _, err := parsePrice(v); err != nil {
		return err
	}
	return nil
}

func parsePrice(v interface{}) (float64, error) {
	var (
		price float64
		err   error
	)
	switch p := v.(type) {
	case float64:
		price = p
	case float32:
		price = float64(p)
	case int:
		price = float64(p)
	case int64:
		price = float64(p)
	case json.Number:
		price, err = p.Float64()
	case string:
		price, err = strconv.ParseFloat(strings.TrimSpace(p), 64)
	default:
		err = fmt.Errorf("unsupported price type %T", v)
	}
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, invalid(FieldPrice, "price must be a number")
	}
	if price < 0 {
		return 0, invalid(FieldPrice, "price must not be negative")
	}
	return price, nil
}

func ValidateState(v interface{}) error {
	_, err := parseState(v)
	return err
}

func parseState(v interface{}) (domain.ListingState, error) {
	s, ok := v.(string)
	if ok {
		state := domain.ListingState(normalize(s))
		for _, known := range domain.ListingStates {
			if state == known {
				return state, nil
			}
		}
	}
	return "", invalid(FieldState, "state must be one of: %s", joinStates())
}

func ValidateManufacturer(v interface{}) error {
	_, err := parseText(FieldManufacturer, v)
	return err
}

func ValidateModel(v interface{}) error {
	_, err := parseText(FieldModel, v)
	return err
}

func parseText(field string, v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalid(field, "%s must be text", field)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid(field, "%s must not be empty", field)
	}
	return s, nil
}

func ValidateType(v interface{}) error {
	_, err := parseType(v)
	return err
}

func parseType(v interface{}) (domain.VehicleType, error) {
	s, ok := v.(string)
	if ok {
		vt := domain.VehicleType(normalize(s))
		for _, known := range domain.VehicleTypes {
			if vt == known {
				return vt, nil
			}
		}
	}
	return "", invalid(FieldType, "type must be one of: %s", joinTypes())
}

// ValidateImageURL requires an absolute http(s) URL whose path ends in an image extension.
func ValidateImageURL(v interface{}) error {
	_, err := parseImageURL(v)
	return err
}

func parseImageURL(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalid(FieldPhoto, "photo must be a valid image URL")
	}
	s = strings.TrimSpace(s)
	u, err := url.ParseRequestURI(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", invalid(FieldPhoto, "photo must be a valid image URL")
	}
	if !imageExtensions[strings.ToLower(path.Ext(u.Path))] {
		return "", invalid(FieldPhoto, "photo must point to a jpg, jpeg, png, gif, webp, bmp or svg image")
	}
	return s, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func joinStates() string {
	names := make([]string, 0, len(domain.ListingStates))
	for _, s := range domain.ListingStates {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func joinTypes() string {
	names := make([]string, 0, len(domain.VehicleTypes))
	for _, t := range domain.VehicleTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
