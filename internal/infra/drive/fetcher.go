package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bryanwahyu/stripscan/internal/domain/diagnosis"
)

// DefaultDownloadURL is the direct-download template; %s receives the
// escaped file id.
const DefaultDownloadURL = "https://drive.google.com/uc?export=download&id=%s"

const idParam = "id"

// Reason why a download failed.
type Reason string

const (
	ReasonNetwork Reason = "network"
	ReasonStatus  Reason = "status"
	ReasonEmpty   Reason = "empty"
)

// DownloadError is returned for any failed download.
type DownloadError struct {
	Reason     Reason
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	switch e.Reason {
	case ReasonStatus:
		return fmt.Sprintf("download returned status %d", e.StatusCode)
	case ReasonEmpty:
		return "download returned an empty body"
	}
	return "download failed: " + e.Err.Error()
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Fetcher downloads files shared through a Drive-style link.
type Fetcher struct {
	httpc       *http.Client
	downloadURL string
}

// New buat fetcher; downloadURL kosong pakai DefaultDownloadURL, timeout 0
// artinya tanpa batas waktu selain default transport.
func New(downloadURL string, timeout time.Duration) *Fetcher {
	if downloadURL == "" {
		downloadURL = DefaultDownloadURL
	}
	return &Fetcher{
		httpc:       &http.Client{Timeout: timeout},
		downloadURL: downloadURL,
	}
}

// Fetch issues a single GET for the file behind shareURL. Anything other
// than 200 is a *DownloadError; a malformed shareURL is a validation error.
func (f *Fetcher) Fetch(ctx context.Context, shareURL string) (*diagnosis.Download, error) {
	id, err := FileID(shareURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(f.downloadURL, url.QueryEscape(id)), nil)
	if err != nil {
		return nil, &DownloadError{Reason: ReasonNetwork, Err: err}
	}

	resp, err := f.httpc.Do(req)
	if err != nil {
		return nil, &DownloadError{Reason: ReasonNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &DownloadError{Reason: ReasonStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DownloadError{Reason: ReasonNetwork, Err: err}
	}
	if len(body) == 0 {
		return nil, &DownloadError{Reason: ReasonEmpty, StatusCode: resp.StatusCode}
	}

	return &diagnosis.Download{Body: body, ContentType: resp.Header.Get("Content-Type")}, nil
}

// FileID extracts the document id from a sharing link. It reads the "id"
// query parameter and falls back to the /file/d/<id>/ path form.
func FileID(shareURL string) (string, error) {
	u, err := ValidateShareURL(shareURL)
	if err != nil {
		return "", err
	}

	if id := strings.TrimSpace(u.Query().Get(idParam)); id != "" {
		return id, nil
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 1; i+1 < len(parts); i++ {
		if parts[i-1] == "file" && parts[i] == "d" && parts[i+1] != "" {
			return parts[i+1], nil
		}
	}

	return "", diagnosis.E(diagnosis.KindValidation, "Invalid URL: no file id found", nil)
}

// ValidateShareURL parses rawURL and allows only absolute http(s) links.
func ValidateShareURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, diagnosis.E(diagnosis.KindValidation, "Invalid URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, diagnosis.E(diagnosis.KindValidation,
			fmt.Sprintf("Invalid URL scheme: %q (allowed: http, https)", u.Scheme), nil)
	}
	if u.Host == "" {
		return nil, diagnosis.E(diagnosis.KindValidation, "Invalid URL: missing host", nil)
	}
	return u, nil
}
