package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket answers the path-style S3 calls the store makes.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := strings.TrimPrefix(r.URL.Path, "/")

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		b.objects[key] = body
		b.types[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag-1"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := b.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", b.types[key])
		w.Write(body)
	case http.MethodDelete:
		delete(b.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestR2(t *testing.T) (ObjectStore, *fakeBucket) {
	t.Helper()
	bucket := &fakeBucket{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	store, err := NewCloudflareR2Store(context.Background(), CloudflareR2Config{
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "draws",
		PublicBaseURL:   "https://cdn.example.com/public",
		Endpoint:        srv.URL,
	})
	require.NoError(t, err)
	return store, bucket
}

func TestCloudflareR2Store_RoundTrip(t *testing.T) {
	store, bucket := newTestR2(t)
	ctx := context.Background()

	res, err := store.Upload(ctx, "t1/state.json", "application/json", strings.NewReader(`{"phase":"idle"}`))
	require.NoError(t, err)
	assert.Equal(t, "etag-1", res.ETag)
	assert.Equal(t, "https://cdn.example.com/public/t1/state.json", res.Location)
	assert.Equal(t, "application/json", bucket.types["draws/t1/state.json"])

	rc, err := store.Download(ctx, "t1/state.json")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"idle"}`, string(body))

	require.NoError(t, store.Delete(ctx, "t1/state.json"))
	_, err = store.Download(ctx, "t1/state.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestNewCloudflareR2Store_Validation(t *testing.T) {
	_, err := NewCloudflareR2Store(context.Background(), CloudflareR2Config{BucketName: "x"})
	assert.Error(t, err)

	_, err = NewCloudflareR2Store(context.Background(), CloudflareR2Config{
		AccountID: "acc", AccessKeyID: "k", SecretAccessKey: "s", BucketName: "b", PublicBaseURL: "://bad",
	})
	assert.Error(t, err)
}

func TestGetPublicURL(t *testing.T) {
	store, err := NewCloudflareR2Store(context.Background(), CloudflareR2Config{
		AccountID: "acc", AccessKeyID: "k", SecretAccessKey: "s", BucketName: "b",
	})
	require.NoError(t, err)
	assert.Empty(t, store.GetPublicURL("a.json"), "no public base configured")

	store, err = NewCloudflareR2Store(context.Background(), CloudflareR2Config{
		AccountID: "acc", AccessKeyID: "k", SecretAccessKey: "s", BucketName: "b", PublicBaseURL: "https://pub.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pub.example.com/draws/t1/bracket.json", store.GetPublicURL("/draws/t1/bracket.json"))
	assert.Empty(t, store.GetPublicURL(""))
}
