package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const (
	objectPrefix    = "cars/"
	defaultMaxBytes = 10 << 20
)

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL replaces the client endpoint in returned URLs, e.g. a CDN in front of the bucket.
	PublicURL string
	MaxBytes  int64

	// FetchTimeout bounds a single source download.
	FetchTimeout        time.Duration
	// AllowPrivateSources lets source URLs resolve to loopback or private addresses.
	AllowPrivateSources bool
}

// S3Storage hosts listing photos in a MinIO/S3 bucket. Photos are stored as
// cars/<key><ext>, so one key addresses one image whatever its extension.
type S3Storage struct {
	client     *minio.Client
	httpClient *http.Client
	bucket     string
	publicURL  string
	maxBytes   int64
	logger     *logger.Logger
}

func NewS3Storage(ctx context.Context, opts Options, log *logger.Logger) (*S3Storage, error) {
	log.Info("Initializing S3 MinIO storage", zap.String("endpoint", opts.Endpoint), zap.String("bucket", opts.Bucket), zap.Bool("use_ssl", opts.UseSSL))

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", opts.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to make bucket %s: %w", opts.Bucket, err)
		}
		log.Info("S3Storage: bucket created", zap.String("bucket", opts.Bucket))
	}

	if opts.AllowPrivateSources {
		log.Warn("S3Storage: source images may be fetched from private addresses")
	}
	return newS3Storage(client, newFetchClient(opts.FetchTimeout, opts.AllowPrivateSources), opts, log), nil
}

func newS3Storage(client *minio.Client, httpClient *http.Client, opts Options, log *logger.Logger) *S3Storage {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &S3Storage{
		client:     client,
		httpClient: httpClient,
		bucket:     opts.Bucket,
		publicURL:  strings.TrimRight(opts.PublicURL, "/"),
		maxBytes:   maxBytes,
		logger:     log.Named("S3Storage"),
	}
}

// Upload downloads sourceURL and stores it under key, replacing any earlier image with
// the same key and extension.
func (s *S3Storage) Upload(ctx context.Context, sourceURL, key string) (string, error) {
	data, contentType, err := s.fetch(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	objectKey := objectPrefix + key + strings.ToLower(extOf(sourceURL))
	s.logger.Info("S3Storage.Upload: putting object",
		zap.String("bucket", s.bucket),
		zap.String("object_key", objectKey),
		zap.Int("size_bytes", len(data)))

	info, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"source-url": sourceURL},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}
	s.logger.Debug("S3Storage.Upload: object stored", zap.String("key", info.Key), zap.String("etag", info.ETag))

	return s.objectURL(objectKey), nil
}

// Delete removes every object stored under key. A key with no objects is not an error.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	base := objectPrefix + key
	var errs []error
	removed := 0
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: base, Recursive: true}) {
		if obj.Err != nil {
			errs = append(errs, obj.Err)
			break
		}
		if strings.TrimSuffix(obj.Key, path.Ext(obj.Key)) != base {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", obj.Key, err))
			continue
		}
		removed++
	}
	s.logger.Info("S3Storage.Delete: objects removed", zap.String("key", key), zap.Int("removed", removed))
	return errors.Join(errs...)
}

func (s *S3Storage) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request for %s: %w", sourceURL, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch %s: unexpected status %s", sourceURL, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType == "application/octet-stream" {
		contentType = mime.TypeByExtension(strings.ToLower(extOf(sourceURL)))
	} else if !strings.HasPrefix(mediaType, "image/") {
		return nil, "", fmt.Errorf("fetch %s: content type %q is not an image", sourceURL, mediaType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", sourceURL, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, "", fmt.Errorf("fetch %s: image larger than %d bytes", sourceURL, s.maxBytes)
	}
	return data, contentType, nil
}

func (s *S3Storage) objectURL(objectKey string) string {
	base := s.publicURL
	if base == "" {
		base = s.client.EndpointURL().String()
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), s.bucket, objectKey)
}

func extOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return path.Ext(u.Path)
	}
	return path.Ext(rawURL)
}
