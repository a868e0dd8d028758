package document

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind tipe file hasil sniffing byte awal
type Kind string

const (
	KindPDF     Kind = "pdf"
	KindJPG     Kind = "jpg"
	KindPNG     Kind = "png"
	KindHTML    Kind = "html"
	KindUnknown Kind = "unknown"
)

var (
	pdfMagic  = []byte("%PDF")
	jpegMagic = []byte{0xFF, 0xD8}
	pngMagic  = []byte{0x89, 'P', 'N', 'G'}

	htmlDoctype = []byte("<!doctype html")
	htmlTag     = []byte("<html")
)

// Classify maps the leading bytes of b to a Kind. It never fails and never
// modifies b; anything it does not recognise is KindUnknown.
func Classify(b []byte) Kind {
	switch {
	case bytes.HasPrefix(b, pdfMagic):
		return KindPDF
	case bytes.HasPrefix(b, jpegMagic):
		return KindJPG
	case bytes.HasPrefix(b, pngMagic):
		return KindPNG
	case isHTML(b):
		return KindHTML
	default:
		return KindUnknown
	}
}

func isHTML(b []byte) bool {
	if bytes.HasPrefix(bytes.ToLower(head(b, 15)), htmlDoctype) {
		return true
	}
	return bytes.Contains(bytes.ToLower(head(b, 100)), htmlTag)
}

// head returns at most n leading bytes. bytes.ToLower allocates, so the
// caller's slice is never touched.
func head(b []byte, n int) []byte {
	if len(b) < n {
		return b
	}
	return b[:n]
}

// IsPDFUpload reports whether an uploaded file should go down the PDF path,
// judged by filename suffix or the PDF magic marker.
func IsPDFUpload(filename string, b []byte) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return bytes.HasPrefix(b, pdfMagic)
}

// IsRaster true untuk jpg dan png
func (k Kind) IsRaster() bool {
	return k == KindJPG || k == KindPNG
}

// MIME returns the canonical media type of k.
func (k Kind) MIME() string {
	switch k {
	case KindPDF:
		return "application/pdf"
	case KindJPG:
		return "image/jpeg"
	case KindPNG:
		return "image/png"
	case KindHTML:
		return "text/html"
	default:
		return "application/octet-stream"
	}
}

// DetectMIME gives a descriptive media type for logging. Classification
// never depends on it.
func DetectMIME(b []byte) string {
	return mimetype.Detect(b).String()
}
