package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrEmptyResponse is returned when the model answers without any text
var ErrEmptyResponse = errors.New("empty response from model")

// Client describes images with a hosted vision-language model
type Client interface {
	Describe(ctx context.Context, req Request) (Description, error)
	Provider() string
	Model() string
}

// Request is one image plus the instruction sent with it
type Request struct {
	Image     []byte
	MIMEType  string
	Prompt    string
	MaxTokens int
}

// Description is the text the model returned
type Description struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// DetectMIME sniffs the image type, falling back to image/png for anything
// that is not recognizably an image
func DetectMIME(data []byte) string {
	mtype := mimetype.Detect(data).String()
	if strings.HasPrefix(mtype, "image/") {
		return mtype
	}
	return "image/png"
}

// DataURL encodes data as a base64 data URL
func DataURL(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = DetectMIME(data)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
