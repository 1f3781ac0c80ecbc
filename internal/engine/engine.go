/**
 * Recognition engine capability
 *
 * Narrow interface over the external OCR engine. The pipeline depends only
 * on these two operations; the concrete backend (native binding, subprocess,
 * network call) is interchangeable.
 */

package engine

import (
	"context"
	"image"
)

// PageSegMode tells the engine how to assume text is laid out on the page.
// Values follow the tesseract page segmentation mode numbering.
type PageSegMode int

const (
	PSMAuto               PageSegMode = 3
	PSMSingleVerticalText PageSegMode = 5
	PSMSingleBlock        PageSegMode = 6
	PSMSingleLine         PageSegMode = 7
	PSMSingleChar         PageSegMode = 10
)

// Config is the immutable configuration for one recognition attempt
type Config struct {
	Languages      []string
	PageSegMode    PageSegMode
	Whitelist      string
	Blacklist      string
	TessdataPrefix string
	Variables      map[string]string
}

// Token is one recognized unit of text with position and confidence
type Token struct {
	Text string

	// Confidence in [0, 100]; the engine's unknown-confidence sentinel
	// is already clamped to 0 by the backend.
	Confidence float64

	// Box is the bounding box in the coordinate space of the image
	// handed to the engine (region-local for cropped regions).
	Box image.Rectangle

	// Hierarchical position within the engine's layout analysis
	Block     int
	Paragraph int
	Line      int
}

// Recognizer is the external recognition engine capability
type Recognizer interface {
	// ExtractTokens runs structured recognition over an encoded image and
	// returns every recognized token with geometry and position.
	ExtractTokens(ctx context.Context, imageData []byte, cfg Config) ([]Token, error)

	// ExtractText runs plain full-text recognition over an encoded image
	// and returns a single unstructured string.
	ExtractText(ctx context.Context, imageData []byte, cfg Config) (string, error)
}
