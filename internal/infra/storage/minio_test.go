package storage

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "http://minio:9000/strips/2026/01/a.png", ObjectURL("http://minio:9000", "strips", "2026/01/a.png"))
}

// fakeS3 answers just enough of the S3 API for New and PutPNG.
type fakeS3 struct {
	mu          sync.Mutex
	objects     map[string][]byte
	contentType string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = b
		f.contentType = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func TestPutPNG(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	store, err := New(t.Context(), u.Host, "us-east-1", "strips", "key", "secret", false)
	require.NoError(t, err)

	got, err := store.PutPNG(t.Context(), "a/b.png", []byte("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/strips/a/b.png", got)
	// the body may be aws-chunked, so only check the payload is in it
	require.Contains(t, fake.objects, "/strips/a/b.png")
	assert.Contains(t, string(fake.objects["/strips/a/b.png"]), "png-bytes")
	assert.Equal(t, "image/png", fake.contentType)
}
