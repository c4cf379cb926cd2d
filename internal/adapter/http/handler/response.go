package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/validation"
)

// ErrMalformedBody is reported when a request body is not a JSON object.
var ErrMalformedBody = errors.New("request body must be a JSON object")

// ErrBodyTooLarge is reported when a request body exceeds the router's size cap.
var ErrBodyTooLarge = errors.New("request body too large")

type envelope struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	body.Status = status
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Message: message})
}

// WriteError writes the error envelope. Internal failures never expose their cause.
func WriteError(w http.ResponseWriter, status int, err error) {
	reason := http.StatusText(status)
	if status < http.StatusInternalServerError || status == http.StatusBadGateway {
		reason = errorReason(err)
	}
	writeJSON(w, status, envelope{Error: reason})
}

func errorReason(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Reason
	case errors.Is(err, domain.ErrImageHost):
		return "photo could not be hosted"
	case errors.Is(err, domain.ErrCredentialInvalid):
		return domain.ErrCredentialInvalid.Error()
	case errors.Is(err, domain.ErrCredentialMissing):
		return domain.ErrCredentialMissing.Error()
	case errors.Is(err, domain.ErrListingNotFound):
		return domain.ErrListingNotFound.Error()
	case errors.Is(err, domain.ErrMissingFields):
		return domain.ErrMissingFields.Error()
	case errors.Is(err, ErrMalformedBody):
		return ErrMalformedBody.Error()
	case errors.Is(err, ErrBodyTooLarge):
		return ErrBodyTooLarge.Error()
	}
	return err.Error()
}

// httpStatus classifies a usecase error into the response status.
func httpStatus(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, ErrMalformedBody), errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &verr):
		return http.StatusExpectationFailed
	case errors.Is(err, domain.ErrCredentialMissing):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrCredentialInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrListingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrImageHost):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func decodePayload(r *http.Request) (validation.Payload, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var p validation.Payload
	if err := dec.Decode(&p); err != nil || p == nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrBodyTooLarge
		}
		return nil, ErrMalformedBody
	}
	return p, nil
}
