package analysis

import (
	"time"

	"github.com/bryanwahyu/stripscan/internal/domain/diagnosis"
	"github.com/bryanwahyu/stripscan/internal/domain/document"
)

// ID identifier type
type ID string

// Analysis is an archived diagnosis, kept for auditing when the archive is
// enabled.
type Analysis struct {
	ID        ID               `json:"id"`
	Intake    diagnosis.Intake `json:"intake"`
	Source    string           `json:"source"` // share URL or upload filename
	Kind      document.Kind    `json:"kind"`
	ImageURL  string           `json:"image_url,omitempty"`
	Result    string           `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}
