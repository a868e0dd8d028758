package drive

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/stripscan/internal/domain/diagnosis"
)

func TestFileID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"open link", "https://drive.google.com/open?id=abc123", "abc123", false},
		{"uc link", "https://drive.google.com/uc?export=download&id=XyZ_-9", "XyZ_-9", false},
		{"file path", "https://drive.google.com/file/d/1AbC/view?usp=sharing", "1AbC", false},
		{"file path no trailing", "https://drive.google.com/file/d/1AbC", "1AbC", false},
		{"id wins over path", "https://drive.google.com/file/d/path/view?id=query", "query", false},
		{"no id", "https://drive.google.com/drive/folders", "", true},
		{"empty id", "https://drive.google.com/open?id=", "", true},
		{"bad scheme", "ftp://drive.google.com/open?id=abc", "", true},
		{"no host", "https:///open?id=abc", "", true},
		{"garbage", "::not a url", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileID(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, diagnosis.KindValidation, diagnosis.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetch_OK(t *testing.T) {
	var gotID, gotExport string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("id")
		gotExport = r.URL.Query().Get("export")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	f := New(srv.URL+"/uc?export=download&id=%s", 0)
	dl, err := f.Fetch(t.Context(), "https://drive.google.com/open?id=file%201")
	require.NoError(t, err)

	assert.Equal(t, "file 1", gotID)
	assert.Equal(t, "download", gotExport)
	assert.Equal(t, "image/png", dl.ContentType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, dl.Body)
}

func TestFetch_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL+"/?id=%s", 0).Fetch(t.Context(), "https://drive.google.com/open?id=x")
	var de *DownloadError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, ReasonStatus, de.Reason)
	assert.Equal(t, http.StatusNotFound, de.StatusCode)
}

func TestFetch_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := New(srv.URL+"/?id=%s", 0).Fetch(t.Context(), "https://drive.google.com/open?id=x")
	var de *DownloadError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, ReasonEmpty, de.Reason)
}

func TestFetch_Network(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url+"/?id=%s", 0).Fetch(t.Context(), "https://drive.google.com/open?id=x")
	var de *DownloadError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, ReasonNetwork, de.Reason)
	assert.NotNil(t, errors.Unwrap(de))
}

func TestFetch_InvalidShareURL(t *testing.T) {
	_, err := New("", 0).Fetch(t.Context(), "https://drive.google.com/drive/my-drive")
	require.Error(t, err)
	assert.Equal(t, diagnosis.KindValidation, diagnosis.KindOf(err))
}
