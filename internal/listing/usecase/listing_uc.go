package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/validation"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Stage is a step of the mutating request pipeline. A request that fails reports the
// last stage it reached.
type Stage string

const (
	StageReceived       Stage = "RECEIVED"
	StageAuthenticated  Stage = "AUTHENTICATED"
	StageStructureValid Stage = "STRUCTURE_VALID"
	StageFieldsValid    Stage = "FIELDS_VALID"
	StageImageStaged    Stage = "IMAGE_STAGED"
	StageCommitted      Stage = "COMMITTED"
)

const (
	SubjectListingCreated = "listing.created"
	SubjectListingUpdated = "listing.updated"
	SubjectListingDeleted = "listing.deleted"

	commitTimeout = 10 * time.Second
)

// AbortError is returned when a mutating request stops before COMMITTED.
type AbortError struct {
	Op    string
	Stage Stage
	Err   error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s aborted after %s: %v", e.Op, e.Stage, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// ListingEvent is the message body published on listing lifecycle subjects.
type ListingEvent struct {
	ListingID string    `json:"listing_id"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Photo     string    `json:"photo,omitempty"`
	Price     float64   `json:"price,omitempty"`
	At        time.Time `json:"at"`
}

type ListingUsecase struct {
	repo      domain.ListingRepository
	images    *ImageCoordinator
	publisher domain.EventPublisher
	notifier  domain.Notifier
	metrics   *metrics.MetricsManager
	logger    *logger.Logger

	background sync.WaitGroup
}

// NewListingUsecase wires the pipeline. publisher and notifier may be nil.
func NewListingUsecase(
	repo domain.ListingRepository,
	images *ImageCoordinator,
	publisher domain.EventPublisher,
	notifier domain.Notifier,
	m *metrics.MetricsManager,
	log *logger.Logger,
) *ListingUsecase {
	return &ListingUsecase{
		repo:      repo,
		images:    images,
		publisher: publisher,
		notifier:  notifier,
		metrics:   m,
		logger:    log.Named("ListingUsecase"),
	}
}

func (uc *ListingUsecase) abort(op string, stage Stage, err error) error {
	uc.metrics.PipelineAbortsTotal.WithLabelValues(op, string(stage)).Inc()
	uc.logger.Info("ListingUsecase: request aborted", zap.String("operation", op), zap.String("stage", string(stage)), zap.Error(err))
	return &AbortError{Op: op, Stage: stage, Err: err}
}

// validate runs the authentication, structure and field steps shared by create and update.
func (uc *ListingUsecase) validate(ctx context.Context, op string, p validation.Payload) (*auth.Claims, *domain.ListingDraft, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return nil, nil, uc.abort(op, StageReceived, domain.ErrCredentialMissing)
	}
	if missing := p.MissingFields(); len(missing) > 0 {
		uc.logger.Debug("ListingUsecase: required fields missing", zap.Strings("missing", missing))
		return nil, nil, uc.abort(op, StageAuthenticated, domain.ErrMissingFields)
	}
	draft, err := validation.Check(p)
	if err != nil {
		return nil, nil, uc.abort(op, StageStructureValid, err)
	}
	return claims, draft, nil
}

// CreateListing validates p, hosts its photo and commits the listing. No record is
// stored unless every earlier step succeeded.
func (uc *ListingUsecase) CreateListing(ctx context.Context, p validation.Payload) (*domain.Listing, error) {
	const op = "create"
	ctx, span := tracer.Start(ctx, "ListingUsecase.CreateListing")
	defer span.End()

	claims, draft, err := uc.validate(ctx, op, p)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	hosted, err := uc.images.Stage(ctx, draft.Photo)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, uc.abort(op, StageFieldsValid, err)
	}
	draft.Photo = hosted

	now := time.Now().UTC()
	listing := &domain.Listing{OwnerID: claims.Identity(), CreatedAt: now, UpdatedAt: now}
	draft.Apply(listing)

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()
	if err := uc.repo.Create(commitCtx, listing); err != nil {
		uc.logger.Error("ListingUsecase.CreateListing: failed to store listing", zap.Error(err))
		uc.images.Discard(ctx, ContentKey(hosted))
		span.SetStatus(codes.Error, err.Error())
		return nil, uc.abort(op, StageImageStaged, fmt.Errorf("store listing: %w", err))
	}

	span.SetAttributes(attribute.String("listing.id", listing.ID))
	uc.metrics.ListingsCreatedTotal.Inc()
	uc.logger.Info("ListingUsecase.CreateListing: listing committed",
		zap.String("listing_id", listing.ID), zap.String("owner_id", listing.OwnerID), zap.String("photo", listing.Photo))

	uc.publish(ctx, SubjectListingCreated, listing)
	uc.notify(claims, listing)
	return listing, nil
}

// UpdateListing replaces every field of listing id. The photo is staged again only
// when it differs from the stored one, and the superseded image is released afterwards.
func (uc *ListingUsecase) UpdateListing(ctx context.Context, id string, p validation.Payload) (*domain.Listing, error) {
	const op = "update"
	ctx, span := tracer.Start(ctx, "ListingUsecase.UpdateListing")
	defer span.End()
	span.SetAttributes(attribute.String("listing.id", id))

	_, draft, err := uc.validate(ctx, op, p)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	existing, err := uc.images.Locate(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, uc.abort(op, StageFieldsValid, err)
	}

	photoChanged := draft.Photo != existing.Photo
	if photoChanged {
		hosted, err := uc.images.Stage(ctx, draft.Photo)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, uc.abort(op, StageFieldsValid, err)
		}
		draft.Photo = hosted
	}

	updated := *existing
	draft.Apply(&updated)
	updated.UpdatedAt = time.Now().UTC()

	oldKey, newKey := ContentKey(existing.Photo), ContentKey(updated.Photo)

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()
	if err := uc.repo.Update(commitCtx, &updated); err != nil {
		uc.logger.Error("ListingUsecase.UpdateListing: failed to store listing", zap.String("listing_id", id), zap.Error(err))
		if photoChanged && newKey != oldKey {
			uc.images.Discard(ctx, newKey)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, uc.abort(op, StageImageStaged, fmt.Errorf("store listing: %w", err))
	}

	if photoChanged && newKey != oldKey {
		uc.images.Discard(ctx, oldKey)
	}

	uc.metrics.ListingsUpdatedTotal.Inc()
	uc.logger.Info("ListingUsecase.UpdateListing: listing updated", zap.String("listing_id", id), zap.Bool("photo_changed", photoChanged))
	uc.publish(ctx, SubjectListingUpdated, &updated)
	return &updated, nil
}

// DeleteListing removes listing id. Its hosted photo is released on a best-effort basis
// once the record is gone, so a failing image host never keeps the listing alive and a
// failing store never strands a listing without its photo.
func (uc *ListingUsecase) DeleteListing(ctx context.Context, id string) (*domain.Listing, error) {
	const op = "delete"
	ctx, span := tracer.Start(ctx, "ListingUsecase.DeleteListing")
	defer span.End()
	span.SetAttributes(attribute.String("listing.id", id))

	if _, ok := auth.ClaimsFromContext(ctx); !ok {
		return nil, uc.abort(op, StageReceived, domain.ErrCredentialMissing)
	}

	listing, err := uc.images.Release(ctx, id, func(l *domain.Listing) error {
		commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
		defer cancel()
		if err := uc.repo.Delete(commitCtx, l.ID); err != nil {
			uc.logger.Error("ListingUsecase.DeleteListing: failed to delete listing", zap.String("listing_id", l.ID), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, uc.abort(op, StageAuthenticated, err)
	}

	uc.metrics.ListingsDeletedTotal.Inc()
	uc.logger.Info("ListingUsecase.DeleteListing: listing deleted", zap.String("listing_id", id))
	uc.publish(ctx, SubjectListingDeleted, listing)
	return listing, nil
}

// ListListings returns every stored listing. An empty store yields an empty, non-nil slice.
func (uc *ListingUsecase) ListListings(ctx context.Context) ([]*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.ListListings")
	defer span.End()

	listings, err := uc.repo.ListAll(ctx)
	if err != nil {
		uc.logger.Error("ListingUsecase.ListListings: failed to list listings", zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if listings == nil {
		listings = []*domain.Listing{}
	}
	return listings, nil
}

func (uc *ListingUsecase) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.GetListing")
	defer span.End()

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		uc.logger.Debug("ListingUsecase.GetListing: lookup failed", zap.String("listing_id", id), zap.Error(err))
		return nil, err
	}
	return listing, nil
}

// Wait blocks until background image releases and notifications have finished.
func (uc *ListingUsecase) Wait() {
	uc.images.Wait()
	uc.background.Wait()
}

func (uc *ListingUsecase) publish(ctx context.Context, subject string, l *domain.Listing) {
	if uc.publisher == nil {
		return
	}
	event := ListingEvent{
		ListingID: l.ID,
		OwnerID:   l.OwnerID,
		Photo:     l.Photo,
		Price:     l.Price,
		At:        time.Now().UTC(),
	}
	if err := uc.publisher.Publish(ctx, subject, event); err != nil {
		uc.logger.Warn("ListingUsecase: failed to publish event", zap.String("subject", subject), zap.String("listing_id", l.ID), zap.Error(err))
	}
}

func (uc *ListingUsecase) notify(claims *auth.Claims, l *domain.Listing) {
	if uc.notifier == nil || claims.Email == "" {
		return
	}
	listing := *l
	uc.background.Add(1)
	go func() {
		defer uc.background.Done()
		if err := uc.notifier.SendListingCreatedEmail(claims.Email, &listing); err != nil {
			uc.logger.Warn("ListingUsecase: failed to send listing created email", zap.String("listing_id", listing.ID), zap.Error(err))
		}
	}()
}
