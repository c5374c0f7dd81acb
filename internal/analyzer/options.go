package analyzer

import "time"

// DefaultMaxPixels matches the decompression bomb limit of common imaging
// libraries
const DefaultMaxPixels = 178956970

// DominantColorCount is the number of representative colors reported
const DominantColorCount = 5

// DescriptionPrompt is the instruction sent with every image to the vision model
const DescriptionPrompt = "Describe this web design in detail. What are the main sections, colors, layout, and key elements? Provide a structured description that could be used to recreate this design."

// ColorOptions configures k-means clustering
type ColorOptions struct {
	MaxIterations int
	Epsilon       float64
	Attempts      int
	MaxSamples    int

	// MaxPixels rejects images whose header declares more pixels, before
	// any pixel data is decoded
	MaxPixels int64

	// Seed of the initial center selection; 0 seeds from the clock
	Seed int64
}

// TextOptions configures OCR
type TextOptions struct {
	Language     string
	ExpectedText string
}

// DescribeOptions configures the vision model call
type DescribeOptions struct {
	Provider  string
	Model     string
	Prompt    string
	MaxTokens int
	Timeout   time.Duration
}

// DefaultColorOptions mirrors the usual OpenCV criteria: 10 iterations or
// epsilon 1.0, 10 attempts
func DefaultColorOptions() ColorOptions {
	return ColorOptions{
		MaxIterations: 10,
		Epsilon:       1.0,
		Attempts:      10,
		MaxSamples:    250000,
		MaxPixels:     DefaultMaxPixels,
	}
}

// DefaultTextOptions returns English OCR without an expected text
func DefaultTextOptions() TextOptions {
	return TextOptions{Language: "eng"}
}

// DefaultDescribeOptions returns the fixed prompt with a 1000 token ceiling
func DefaultDescribeOptions() DescribeOptions {
	return DescribeOptions{
		Provider:  "openai",
		Prompt:    DescriptionPrompt,
		MaxTokens: 1000,
		Timeout:   2 * time.Minute,
	}
}

// WithSeed makes clustering reproducible
func (opts ColorOptions) WithSeed(seed int64) ColorOptions {
	opts.Seed = seed
	return opts
}

// WithExpectedText enables accuracy scoring against expected
func (opts TextOptions) WithExpectedText(expected string) TextOptions {
	opts.ExpectedText = expected
	return opts
}

// WithModel overrides the provider's default model
func (opts DescribeOptions) WithModel(model string) DescribeOptions {
	opts.Model = model
	return opts
}
