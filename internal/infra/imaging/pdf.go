package imaging

import (
	"image"
	"math"

	"github.com/gen2brain/go-fitz"

	"github.com/bryanwahyu/stripscan/internal/domain/diagnosis"
)

// DefaultDPI is MuPDF's identity transform (72 dpi, one pixel per point).
const DefaultDPI = 72

// PDFRasterizer renders PDF pages with MuPDF.
type PDFRasterizer struct {
	DPI       float64
	MaxPixels int64 // <= 0 means DefaultMaxPixels
}

// NewPDFRasterizer buat rasterizer; dpi <= 0 pakai DefaultDPI
func NewPDFRasterizer(dpi float64) *PDFRasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &PDFRasterizer{DPI: dpi}
}

// RasterizeFirstPage renders page 0 to an opaque RGB image sized to the
// rendered pixmap.
func (r *PDFRasterizer) RasterizeFirstPage(pdf []byte) (*image.RGBA, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, diagnosis.E(diagnosis.KindDocument, "failed to open PDF", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, diagnosis.E(diagnosis.KindDocument, diagnosis.MsgNoPages, nil)
	}

	bound, err := doc.Bound(0)
	if err != nil {
		return nil, diagnosis.E(diagnosis.KindDocument, "failed to load page 1", err)
	}
	// bound is in points (1/72 inch)
	dpi := r.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	scale := dpi / 72
	w := int64(math.Ceil(float64(bound.Dx()) * scale))
	h := int64(math.Ceil(float64(bound.Dy()) * scale))
	maxPixels := r.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if err := checkPixels(w, h, maxPixels); err != nil {
		return nil, diagnosis.E(diagnosis.KindDocument, "page 1 too large to render", err)
	}

	img, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return nil, diagnosis.E(diagnosis.KindDocument, "failed to render page 1", err)
	}
	return ToRGB(img), nil
}
