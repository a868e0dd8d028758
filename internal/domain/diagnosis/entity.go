package diagnosis

import "github.com/bryanwahyu/stripscan/internal/domain/document"

// Intake names the entry point a request came through.
type Intake string

const (
	IntakeURL    Intake = "url"
	IntakeDirect Intake = "direct"
)

// ChartPolicy decides when the reference chart is sent to the model.
type ChartPolicy int

const (
	// ChartAlways attaches chart and guide for every input.
	ChartAlways ChartPolicy = iota
	// ChartUnlessReport omits both for PDF lab reports.
	ChartUnlessReport
)

// AttachChart reports whether the chart (and the guide) go with an input
// that is a report (PDF) or not.
func (p ChartPolicy) AttachChart(isReport bool) bool {
	if p == ChartUnlessReport {
		return !isReport
	}
	return true
}

func (p ChartPolicy) String() string {
	if p == ChartUnlessReport {
		return "chart_unless_report"
	}
	return "chart_always"
}

// Input is what the advisor receives. ReferenceImageB64 empty means no
// chart turn.
type Input struct {
	UserImageB64      string
	ReferenceImageB64 string
	WithGuide         bool
}

// Upload file dari multipart form
type Upload struct {
	Filename string
	Body     []byte
}

// Result hasil analisis yang dikembalikan ke client
type Result struct {
	Text   string        `json:"result"`
	Kind   document.Kind `json:"-"`
	Intake Intake        `json:"-"`
}
