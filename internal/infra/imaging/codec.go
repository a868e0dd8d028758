package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/bryanwahyu/stripscan/internal/domain/diagnosis"
	"github.com/bryanwahyu/stripscan/internal/domain/document"
)

const dataURLPrefix = "data:image/png;base64,"

// DefaultMaxPixels is the largest width*height accepted before decoding,
// the same decompression bomb threshold Pillow errors at.
const DefaultMaxPixels int64 = 178956970

// DecodeRaster decodes b with DefaultMaxPixels and flattens it to an opaque
// RGB image.
func DecodeRaster(b []byte) (*image.RGBA, error) {
	return DecodeRasterLimit(b, DefaultMaxPixels)
}

// DecodeRasterLimit is DecodeRaster with an explicit pixel cap; maxPixels
// <= 0 means DefaultMaxPixels. The header is checked before any pixel is
// allocated.
func DecodeRasterLimit(b []byte, maxPixels int64) (*image.RGBA, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return nil, diagnosis.E(diagnosis.KindDecode,
			"cannot decode image ("+document.DetectMIME(b)+")", err)
	}
	if err := checkPixels(int64(cfg.Width), int64(cfg.Height), maxPixels); err != nil {
		return nil, diagnosis.E(diagnosis.KindDecode, format+" image too large", err)
	}

	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, diagnosis.E(diagnosis.KindDecode,
			"cannot decode image ("+document.DetectMIME(b)+")", err)
	}
	return ToRGB(img), nil
}

func checkPixels(w, h, maxPixels int64) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", w, h)
	}
	if w > maxPixels/h {
		return fmt.Errorf("%dx%d exceeds the limit of %d pixels", w, h, maxPixels)
	}
	return nil
}

// ToRGB draws img onto a white opaque canvas with its origin at (0,0).
// Transparent pixels end up white, so the result never carries alpha.
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// EncodePNG serializes img as PNG. An opaque RGBA is written as 8-bit
// truecolor without an alpha channel.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, diagnosis.E(diagnosis.KindInternal, "failed to encode PNG", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 returns the base64 (std alphabet) text of img as PNG.
func EncodeBase64(img image.Image) (string, error) {
	b, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return Base64(b), nil
}

// Base64 encodes raw bytes with the std alphabet.
func Base64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DataURL wraps base64 PNG text in a data URL.
func DataURL(b64 string) string {
	return dataURLPrefix + b64
}
