package imaging

import (
	"context"
	"fmt"
	"image"
	"os"
)

// FileChart loads the reference chart from disk on every call.
type FileChart struct {
	Path string
}

func (c FileChart) LoadChart() (image.Image, error) {
	b, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("reference chart %s: %w", c.Path, err)
	}
	img, err := DecodeRaster(b)
	if err != nil {
		return nil, fmt.Errorf("reference chart %s: %w", c.Path, err)
	}
	return img, nil
}

// Check implements a health check: the chart must exist and be readable.
func (c FileChart) Check(_ context.Context) error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	return f.Close()
}
