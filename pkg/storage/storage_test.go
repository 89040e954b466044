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

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "http://localhost:8000/storage/")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "exports/b.json", []byte(`[]`)))
	require.NoError(t, d.Put(ctx, "exports/nested/a.json", []byte(`[1]`)))

	got, err := d.Get(ctx, "exports/b.json")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	ok, err := d.Exists(ctx, "exports/b.json")
	require.NoError(t, err)
	assert.True(t, ok)

	files, err := d.Files(ctx, "exports")
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/b.json", "exports/nested/a.json"}, files)

	assert.Equal(t, "http://localhost:8000/storage/exports/b.json", d.URL("/exports/b.json"))

	require.NoError(t, d.Delete(ctx, "exports/b.json"))
	require.NoError(t, d.Delete(ctx, "exports/b.json"))
	_, err = d.Get(ctx, "exports/b.json")
	assert.ErrorIs(t, err, ErrNotFound)

	files, err = d.Files(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocalStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	d, err := NewLocal(root, "")
	require.NoError(t, err)

	require.NoError(t, d.Put(context.Background(), "../../escape.json", []byte("x")))
	ok, err := d.Exists(context.Background(), "escape.json")
	require.NoError(t, err)
	assert.True(t, ok, "dot-dot segments are clamped to the root")
}

func TestManager(t *testing.T) {
	m, err := NewManager(context.Background(), Config{LocalRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, []string{"local"}, m.Names())

	d, err := m.Disk("")
	require.NoError(t, err)
	assert.IsType(t, &Local{}, d)

	_, err = m.Disk("s3")
	assert.ErrorContains(t, err, `disk "s3" is not configured`)

	_, err = NewManager(context.Background(), Config{Default: "s3", LocalRoot: t.TempDir()})
	assert.Error(t, err)
}

// fakeS3 understands path-style PUT, GET, HEAD and DELETE on one bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := strings.TrimPrefix(r.URL.Path, "/bucket/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[k] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		body, ok := f.objects[k]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			if r.Method == http.MethodGet {
				_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(body)
		}
	case http.MethodDelete:
		delete(f.objects, k)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3AgainstFakeEndpoint(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(&fakeS3{objects: map[string][]byte{}})
	defer srv.Close()

	d, err := NewS3(ctx, S3Config{Bucket: "bucket", Key: "k", Secret: "s", Endpoint: srv.URL, URL: "https://cdn.example/"})
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "exports/catalog.json", []byte(`[{"id":1}]`)))

	got, err := d.Get(ctx, "exports/catalog.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))

	ok, err := d.Exists(ctx, "exports/catalog.json")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, d.Delete(ctx, "exports/catalog.json"))

	ok, err = d.Exists(ctx, "exports/catalog.json")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = d.Get(ctx, "exports/catalog.json")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, "https://cdn.example/exports/catalog.json", d.URL("exports/catalog.json"))
}

func TestS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{})
	assert.Error(t, err)
}
