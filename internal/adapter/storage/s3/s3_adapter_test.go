package s3

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, opts Options) *S3Storage {
	t.Helper()
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
	})
	require.NoError(t, err)
	if opts.Bucket == "" {
		opts.Bucket = "listings-photos"
	}
	return newS3Storage(client, newFetchClient(5*time.Second, true), opts, logger.NewNop())
}

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/car1.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png-bytes"))
		case "/car2.jpg":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("jpg-bytes"))
		case "/page.jpg":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html></html>"))
		case "/redirect-ftp.png":
			http.Redirect(w, r, "ftp://files.example.com/car.png", http.StatusFound)
		case "/huge.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := imageServer(t)
	s := newTestStorage(t, Options{MaxBytes: 32})
	ctx := context.Background()

	data, contentType, err := s.fetch(ctx, srv.URL+"/car1.png")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", contentType)

	_, contentType, err = s.fetch(ctx, srv.URL+"/car2.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)

	_, _, err = s.fetch(ctx, srv.URL+"/page.jpg")
	assert.ErrorContains(t, err, "not an image")

	_, _, err = s.fetch(ctx, srv.URL+"/huge.png")
	assert.ErrorContains(t, err, "larger than 32 bytes")

	_, _, err = s.fetch(ctx, srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "unexpected status")
}

func TestObjectURL(t *testing.T) {
	s := newTestStorage(t, Options{})
	assert.Equal(t, "http://localhost:9000/listings-photos/cars/car1.jpg", s.objectURL("cars/car1.jpg"))

	s = newTestStorage(t, Options{PublicURL: "https://cdn.example.com/"})
	assert.Equal(t, "https://cdn.example.com/listings-photos/cars/car1.jpg", s.objectURL("cars/car1.jpg"))
}

func TestExtOf(t *testing.T) {
	assert.Equal(t, ".jpg", extOf("https://example.com/img/car1.jpg?w=100"))
	assert.Equal(t, ".PNG", extOf("https://example.com/img/CAR.PNG"))
	assert.Equal(t, "", extOf("https://example.com/img/car1"))
}

func TestFetch_RejectsPrivateAddresses(t *testing.T) {
	srv := imageServer(t)
	s := newTestStorage(t, Options{})
	s.httpClient = newFetchClient(5*time.Second, false)

	_, _, err := s.fetch(context.Background(), srv.URL+"/car1.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBlockedAddress)
}

func TestFetch_RejectsRedirectToOtherScheme(t *testing.T) {
	srv := imageServer(t)
	s := newTestStorage(t, Options{})

	_, _, err := s.fetch(context.Background(), srv.URL+"/redirect-ftp.png")
	assert.ErrorContains(t, err, "unsupported scheme")
}

func TestCheckDialAddress(t *testing.T) {
	tests := []struct {
		address string
		blocked bool
	}{
		{"127.0.0.1:80", true},
		{"[::1]:443", true},
		{"10.1.2.3:80", true},
		{"192.168.0.10:9000", true},
		{"172.16.5.4:80", true},
		{"169.254.169.254:80", true},
		{"0.0.0.0:80", true},
		{"[fe80::1]:80", true},
		{"93.184.216.34:443", false},
		{"[2606:4700::1111]:443", false},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := checkDialAddress(tt.address)
			if tt.blocked {
				assert.ErrorIs(t, err, errBlockedAddress)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
