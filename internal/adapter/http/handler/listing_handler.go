package handler

import (
	"context"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/validation"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgNoListings     = "No cars posted here yet"
	msgListingDeleted = "Car deleted successfully"
)

// ListingService is the usecase surface the handler drives.
type ListingService interface {
	CreateListing(ctx context.Context, p validation.Payload) (*domain.Listing, error)
	UpdateListing(ctx context.Context, id string, p validation.Payload) (*domain.Listing, error)
	DeleteListing(ctx context.Context, id string) (*domain.Listing, error)
	ListListings(ctx context.Context) ([]*domain.Listing, error)
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
}

type ListingHandler struct {
	service ListingService
	logger  *logger.Logger
}

func NewListingHandler(service ListingService, log *logger.Logger) *ListingHandler {
	return &ListingHandler{service: service, logger: log.Named("ListingHandler")}
}

func (h *ListingHandler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(r)
	if err != nil {
		h.logger.Debug("ListingHandler.HandleCreateListing: invalid request body", zap.Error(err))
		h.fail(w, err)
		return
	}

	listing, err := h.service.CreateListing(r.Context(), p)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeData(w, http.StatusCreated, listing)
}

func (h *ListingHandler) HandleListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.ListListings(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if len(listings) == 0 {
		writeMessage(w, http.StatusOK, msgNoListings)
		return
	}
	writeData(w, http.StatusOK, listings)
}

func (h *ListingHandler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeData(w, http.StatusOK, listing)
}

func (h *ListingHandler) HandleUpdateListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := decodePayload(r)
	if err != nil {
		h.logger.Debug("ListingHandler.HandleUpdateListing: invalid request body", zap.String("id", id), zap.Error(err))
		h.fail(w, err)
		return
	}

	listing, err := h.service.UpdateListing(r.Context(), id, p)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeData(w, http.StatusOK, listing)
}

func (h *ListingHandler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.DeleteListing(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	writeMessage(w, http.StatusOK, msgListingDeleted)
}

func (h *ListingHandler) fail(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("ListingHandler: request failed", zap.Int("status", status), zap.Error(err))
	}
	WriteError(w, status, err)
}
