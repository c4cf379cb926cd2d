package usecase

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/validation"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("car-listing-service/usecase")

const defaultImageHostTimeout = 15 * time.Second

// ContentKey derives the image host key from a photo URL: the last path segment
// without its extension. "https://x.io/img/car1.jpg" yields "car1".
func ContentKey(photoURL string) string {
	p := photoURL
	if u, err := url.Parse(photoURL); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}
	return strings.TrimSuffix(name, path.Ext(name))
}

// ImageCoordinator keeps a listing's photo in step with the image host. Uploads happen
// before a listing is committed; deletions run in the background after the listing
// has been located and never fail the caller.
type ImageCoordinator struct {
	host    domain.ImageHost
	repo    domain.ListingRepository
	logger  *logger.Logger
	metrics *metrics.MetricsManager
	timeout time.Duration

	wg sync.WaitGroup
}

func NewImageCoordinator(host domain.ImageHost, repo domain.ListingRepository, timeout time.Duration, m *metrics.MetricsManager, log *logger.Logger) *ImageCoordinator {
	if timeout <= 0 {
		timeout = defaultImageHostTimeout
	}
	return &ImageCoordinator{
		host:    host,
		repo:    repo,
		logger:  log.Named("ImageCoordinator"),
		metrics: m,
		timeout: timeout,
	}
}

// Stage uploads photo to the image host and returns the hosted URL. The upload is
// bounded by the coordinator timeout and is not cut short when the caller goes away.
func (c *ImageCoordinator) Stage(ctx context.Context, photo string) (string, error) {
	if err := validation.ValidateImageURL(photo); err != nil {
		return "", err
	}
	key := ContentKey(photo)

	ctx, span := tracer.Start(ctx, "ImageCoordinator.Stage")
	defer span.End()
	span.SetAttributes(attribute.String("image.key", key))

	uploadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	c.logger.Info("ImageCoordinator.Stage: uploading photo", zap.String("key", key), zap.String("source", photo))
	hosted, err := c.host.Upload(uploadCtx, photo, key)
	if err == nil && hosted == "" {
		err = errors.New("image host returned an empty URL")
	}
	if err != nil {
		c.metrics.ImageUploadsTotal.WithLabelValues("failure").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		c.logger.Error("ImageCoordinator.Stage: upload failed", zap.String("key", key), zap.Error(err))
		return "", &domain.UpstreamError{Op: "upload", Key: key, Err: err}
	}

	c.metrics.ImageUploadsTotal.WithLabelValues("success").Inc()
	c.logger.Info("ImageCoordinator.Stage: photo hosted", zap.String("key", key), zap.String("url", hosted))
	return hosted, nil
}

// Locate reads listing id from the coordinator's repository. The app wires the backing
// store here rather than a cache, so write paths never act on a stale record.
func (c *ImageCoordinator) Locate(ctx context.Context, id string) (*domain.Listing, error) {
	return c.repo.FindByID(ctx, id)
}

// Release locates listing id, runs remove and only then schedules removal of the hosted
// photo. It returns domain.ErrListingNotFound without touching the image host when the
// listing is absent, and leaves the photo in place when remove fails.
func (c *ImageCoordinator) Release(ctx context.Context, id string, remove func(*domain.Listing) error) (*domain.Listing, error) {
	listing, err := c.Locate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := remove(listing); err != nil {
		return nil, err
	}
	c.Discard(ctx, ContentKey(listing.Photo))
	return listing, nil
}

// Discard deletes key from the image host in the background. Failures are logged and counted.
func (c *ImageCoordinator) Discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	detached := context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		deleteCtx, span := tracer.Start(detached, "ImageCoordinator.Discard")
		defer span.End()
		span.SetAttributes(attribute.String("image.key", key))

		deleteCtx, cancel := context.WithTimeout(deleteCtx, c.timeout)
		defer cancel()

		if err := c.host.Delete(deleteCtx, key); err != nil {
			c.metrics.ImageReleasesTotal.WithLabelValues("failure").Inc()
			span.RecordError(err)
			c.logger.Warn("ImageCoordinator.Discard: remote delete failed, image left on host", zap.String("key", key), zap.Error(err))
			return
		}
		c.metrics.ImageReleasesTotal.WithLabelValues("success").Inc()
		c.logger.Debug("ImageCoordinator.Discard: remote image deleted", zap.String("key", key))
	}()
}

// Wait blocks until every scheduled deletion has finished.
func (c *ImageCoordinator) Wait() {
	c.wg.Wait()
}
