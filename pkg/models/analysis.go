package models

import "time"

// BackendName identifies one of the independent analysis backends
type BackendName string

const (
	BackendMetadata    BackendName = "basic-metadata"
	BackendColor       BackendName = "color-analysis"
	BackendText        BackendName = "text-extraction"
	BackendDescription BackendName = "ai-description"
)

// BackendOrder is the fixed order in which backends run and are reported
var BackendOrder = []BackendName{
	BackendMetadata,
	BackendColor,
	BackendText,
	BackendDescription,
}

// Status is the outcome of a single backend run
type Status string

const (
	StatusSuccess     Status = "success"
	StatusUnavailable Status = "unavailable"
	StatusFailed      Status = "failed"
)

// Payload is the backend-specific data attached to a successful Result
type Payload interface {
	Backend() BackendName
}

// Result is the per-backend record collected by the runner.
// Payload is set only when Status is success; Message (and Hint for
// unavailable backends) otherwise.
type Result struct {
	Backend    BackendName `json:"backend"`
	Status     Status      `json:"status"`
	Payload    Payload     `json:"payload,omitempty"`
	Message    string      `json:"message,omitempty"`
	Hint       string      `json:"hint,omitempty"`
	DurationMs int64       `json:"duration_ms"`
}

// OK reports whether the backend produced a payload
func (r Result) OK() bool {
	return r.Status == StatusSuccess && r.Payload != nil
}

// Report is the outcome of one inspection
type Report struct {
	ID        string    `json:"id"`
	ImagePath string    `json:"image_path"`
	Source    string    `json:"source,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
}

// Result returns the result recorded for the given backend
func (r *Report) Result(name BackendName) (Result, bool) {
	for _, res := range r.Results {
		if res.Backend == name {
			return res, true
		}
	}
	return Result{}, false
}

// MetadataPayload holds basic image information
type MetadataPayload struct {
	Format      string `json:"format"`
	Mode        string `json:"mode"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
}

func (MetadataPayload) Backend() BackendName { return BackendMetadata }

// RGB is an 8-bit color triple
type RGB [3]int

// ColorPayload holds the representative colors of an image
type ColorPayload struct {
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	Channels       int        `json:"channels"`
	DominantColors []RGB      `json:"dominant_colors_rgb"`
	ClusterSizes   []int      `json:"cluster_sizes,omitempty"`
	Compactness    float64    `json:"compactness"`
	SampleCount    int        `json:"sample_count"`
	ChannelMeans   [3]float64 `json:"channel_means"`
	ChannelStdDevs [3]float64 `json:"channel_std_devs"`
}

func (ColorPayload) Backend() BackendName { return BackendColor }

// TextPayload holds OCR output
type TextPayload struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	WordCount  int     `json:"word_count"`

	// Accuracy against expected text, if any was supplied
	Accuracy *TextAccuracy `json:"accuracy,omitempty"`
}

func (TextPayload) Backend() BackendName { return BackendText }

// TextAccuracy compares OCR output with an expected string
type TextAccuracy struct {
	ExpectedText string  `json:"expected_text"`
	WER          float64 `json:"word_error_rate"`
	CER          float64 `json:"character_error_rate"`
	MatchScore   float64 `json:"match_score"`
}

// DescriptionPayload holds the vision model response
type DescriptionPayload struct {
	Provider         string `json:"provider"`
	Model            string `json:"model"`
	Description      string `json:"description"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
}

func (DescriptionPayload) Backend() BackendName { return BackendDescription }
