package document

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want Kind
	}{
		{"pdf", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3"), KindPDF},
		{"pdf marker only", []byte("%PDF"), KindPDF},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}, KindJPG},
		{"jpeg two bytes", []byte{0xFF, 0xD8}, KindJPG},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, KindPNG},
		{"doctype upper", []byte("<!DOCTYPE HTML><html><body>x</body></html>"), KindHTML},
		{"doctype lower", []byte("<!doctype html>"), KindHTML},
		{"html tag within 100 bytes", append(bytes.Repeat([]byte(" "), 80), []byte("<HTML lang=en>")...), KindHTML},
		{"html tag beyond 100 bytes", append(bytes.Repeat([]byte(" "), 100), []byte("<html>")...), KindUnknown},
		{"empty", nil, KindUnknown},
		{"one byte", []byte{0xFF}, KindUnknown},
		{"truncated pdf", []byte("%PD"), KindUnknown},
		{"truncated png", []byte{0x89, 'P', 'N'}, KindUnknown},
		{"gif", []byte("GIF89a\x01\x00"), KindUnknown},
		{"plain text", []byte("hello world"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestClassify_PrefixOrder(t *testing.T) {
	// PDF wins over an html token later in the prefix.
	in := []byte("%PDF-1.4 <html>")
	assert.Equal(t, KindPDF, Classify(in))
}

func TestClassify_Idempotent(t *testing.T) {
	in := []byte("<!DOCTYPE html><html></html>")
	orig := append([]byte(nil), in...)

	first := Classify(in)
	second := Classify(in)

	assert.Equal(t, first, second)
	assert.Equal(t, orig, in, "input must not be mutated")
}

func TestIsPDFUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     []byte
		want     bool
	}{
		{"suffix", "report.pdf", []byte("junk"), true},
		{"suffix upper", "REPORT.PDF", nil, true},
		{"magic without suffix", "upload.bin", []byte("%PDF-1.4"), true},
		{"png", "strip.png", []byte{0x89, 'P', 'N', 'G'}, false},
		{"pdf in name only", "pdf.png", []byte{0xFF, 0xD8}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPDFUpload(tt.filename, tt.body))
		})
	}
}

func TestKindMIME(t *testing.T) {
	assert.Equal(t, "application/pdf", KindPDF.MIME())
	assert.Equal(t, "image/jpeg", KindJPG.MIME())
	assert.Equal(t, "image/png", KindPNG.MIME())
	assert.Equal(t, "application/octet-stream", KindUnknown.MIME())
	assert.True(t, KindPNG.IsRaster())
	assert.False(t, KindHTML.IsRaster())
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMIME([]byte("%PDF-1.4\n")))
}
