/**
 * Token-to-line aggregation
 *
 * Groups engine tokens by their hierarchical position key into line records
 * with concatenated text, averaged confidence and a union bounding box.
 */

package pipeline

import (
	"image"
	"sort"
	"strings"

	"github.com/textlens/ocr-service/internal/engine"
)

// LineKey identifies one visual line of text across all regions
type LineKey struct {
	Region    int
	Block     int
	Paragraph int
	Line      int
}

// LineRecord is one finalized line of recognized text. Confidence is a
// fraction in [0, 1]; Region is the 4-corner polygon of the union box in
// normalized-image coordinates.
type LineRecord struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Region     [4][2]int `json:"text_region"`
}

type lineAccumulator struct {
	words       []string
	confidences []float64
	box         image.Rectangle
}

// LineAggregator accumulates tokens into per-line records
type LineAggregator struct {
	lines map[LineKey]*lineAccumulator
}

// NewLineAggregator creates an empty aggregator
func NewLineAggregator() *LineAggregator {
	return &LineAggregator{lines: make(map[LineKey]*lineAccumulator)}
}

// Add merges one token into the line identified by key. The token box must
// already be translated into normalized-image coordinates. Tokens with no
// text or non-positive confidence are engine noise and are dropped.
func (a *LineAggregator) Add(key LineKey, token engine.Token) {
	if token.Text == "" || token.Confidence <= 0 {
		return
	}

	acc, ok := a.lines[key]
	if !ok {
		acc = &lineAccumulator{}
		a.lines[key] = acc
	}

	acc.words = append(acc.words, token.Text)
	acc.confidences = append(acc.confidences, token.Confidence)
	if acc.box.Empty() {
		acc.box = token.Box
	} else {
		acc.box = acc.box.Union(token.Box)
	}
}

// Records finalizes the accumulated lines in ascending key order, which
// preserves reading order: region order first, then block, paragraph, line.
func (a *LineAggregator) Records() []LineRecord {
	keys := make([]LineKey, 0, len(a.lines))
	for key := range a.lines {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Region != keys[j].Region {
			return keys[i].Region < keys[j].Region
		}
		if keys[i].Block != keys[j].Block {
			return keys[i].Block < keys[j].Block
		}
		if keys[i].Paragraph != keys[j].Paragraph {
			return keys[i].Paragraph < keys[j].Paragraph
		}
		return keys[i].Line < keys[j].Line
	})

	records := make([]LineRecord, 0, len(keys))
	for _, key := range keys {
		acc := a.lines[key]

		sum := 0.0
		for _, c := range acc.confidences {
			sum += c
		}
		mean := sum / float64(len(acc.confidences))

		records = append(records, LineRecord{
			Text:       strings.Join(acc.words, " "),
			Confidence: mean / 100.0,
			Region:     boxPolygon(acc.box),
		})
	}

	return records
}

// boxPolygon converts a bounding box into its 4-corner polygon, clockwise
// from the top-left corner.
func boxPolygon(box image.Rectangle) [4][2]int {
	return [4][2]int{
		{box.Min.X, box.Min.Y},
		{box.Max.X, box.Min.Y},
		{box.Max.X, box.Max.Y},
		{box.Min.X, box.Max.Y},
	}
}
