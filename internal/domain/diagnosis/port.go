package diagnosis

import (
	"context"
	"image"
)

// Fetcher downloads a shared document.
type Fetcher interface {
	Fetch(ctx context.Context, shareURL string) (*Download, error)
}

// Download is a successfully fetched document.
type Download struct {
	Body        []byte
	ContentType string
}

// Rasterizer renders the first page of a PDF.
type Rasterizer interface {
	RasterizeFirstPage(pdf []byte) (*image.RGBA, error)
}

// Advisor asks the remote model for a diagnosis.
type Advisor interface {
	Diagnose(ctx context.Context, in Input) (string, error)
}

// ChartLoader reads the reference chart. Implementations must not cache.
type ChartLoader interface {
	LoadChart() (image.Image, error)
}
