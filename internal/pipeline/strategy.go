package pipeline

import (
	"github.com/textlens/ocr-service/internal/engine"
)

// Aspect-ratio and size cutoffs for geometry-based mode inference
const (
	tinyShortSide   = 200
	wideAspectRatio = 2.0
	tallAspectRatio = 0.5
)

// Named segmentation hints accepted from callers
var hintModes = map[string]engine.PageSegMode{
	"single_char":  engine.PSMSingleChar,
	"single_line":  engine.PSMSingleLine,
	"single_block": engine.PSMSingleBlock,
}

// SelectPageSegMode chooses the page segmentation mode for recognition.
// An explicit positive mode from the caller always wins, then a named hint,
// then inference from image geometry. Mode 0 is orientation detection only
// and recognizes no text, so it is treated as unset.
func SelectPageSegMode(explicit int, hint string, width, height int) engine.PageSegMode {
	if explicit > 0 {
		return engine.PageSegMode(explicit)
	}

	if mode, ok := hintModes[hint]; ok {
		return mode
	}

	if width <= 0 || height <= 0 {
		return engine.PSMSingleBlock
	}

	if minInt(width, height) < tinyShortSide {
		// Too small for line-level layout assumptions
		return engine.PSMSingleChar
	}

	ratio := float64(width) / float64(height)
	switch {
	case ratio >= wideAspectRatio:
		return engine.PSMSingleLine
	case ratio <= tallAspectRatio:
		return engine.PSMSingleVerticalText
	default:
		return engine.PSMSingleBlock
	}
}
