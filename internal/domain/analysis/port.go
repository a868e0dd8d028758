package analysis

import "context"

// Repository port untuk persistence hasil analisis
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, id ID) (*Analysis, error)
	Latest(ctx context.Context, limit int) ([]*Analysis, error)
	Ping(ctx context.Context) error
}

// ImageStore port untuk menyimpan gambar ternormalisasi
type ImageStore interface {
	PutPNG(ctx context.Context, key string, data []byte) (string, error)
}
