/**
 * Recognition pipeline
 *
 * Orchestrates one image through normalization, segmentation, per-region
 * recognition and token aggregation, with confidence-gated retry and a
 * whole-image last-resort fallback.
 */

package pipeline

import (
	"context"
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"

	"github.com/textlens/ocr-service/internal/config"
	"github.com/textlens/ocr-service/internal/engine"
	"github.com/textlens/ocr-service/internal/errors"
	"github.com/textlens/ocr-service/internal/logging"
)

// Confidence reported for a whole-image fallback record. The fallback path
// has no per-token confidences, so this is a nominal placeholder.
const fallbackConfidence = 0.5

// Options are the per-request knobs supplied by the caller
type Options struct {
	// ModeHint is a named segmentation hint (single_char, single_line,
	// single_block); ignored when PageSegMode is set.
	ModeHint string

	// PageSegMode is an explicit mode value; negative means unset
	PageSegMode int

	// Raw caller-supplied character allow/deny lists; sanitized before
	// they reach the engine
	Whitelist string
	Blacklist string
}

// Pipeline processes one image per Run invocation. It holds no mutable
// state, so one instance serves concurrent requests.
type Pipeline struct {
	recognizer engine.Recognizer
	cfg        *config.Config
	log        *logging.Logger
}

// New creates a recognition pipeline
func New(recognizer engine.Recognizer, cfg *config.Config, log *logging.Logger) *Pipeline {
	return &Pipeline{
		recognizer: recognizer,
		cfg:        cfg,
		log:        log,
	}
}

// Run processes one encoded raster image and returns its line records in
// reading order. The returned slice is never nil: an image in which the
// engine finds no text yields an empty, non-nil slice.
func (p *Pipeline) Run(ctx context.Context, imageData []byte, opts Options, requestID string) ([]LineRecord, error) {
	log := p.log.WithRequest(requestID)

	src, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil || src.Empty() {
		src.Close()
		return nil, errors.NewInvalidImageError(requestID, err)
	}
	defer src.Close()

	norm := Normalize(src)
	defer norm.Close()
	if norm.Degraded {
		log.Warn("normalization degraded to grayscale-only processing",
			"error", errors.NewPreprocessFailedError(requestID, "normalize", norm.Cause))
	}

	regions := SegmentRegions(norm.Binary)
	if len(regions) == 0 {
		// Never hand the orchestrator zero candidate regions
		regions = []image.Rectangle{image.Rect(0, 0, norm.Display.Cols(), norm.Display.Rows())}
	}

	mode := SelectPageSegMode(opts.PageSegMode, opts.ModeHint, norm.Display.Cols(), norm.Display.Rows())
	engineCfg := p.engineConfig(mode, opts)

	log.Info("starting recognition",
		"regions", len(regions), "mode", int(mode),
		"width", norm.Display.Cols(), "height", norm.Display.Rows())

	records, err := p.recognizeRegions(ctx, norm.Display, regions, engineCfg)
	if err != nil {
		log.Error("recognition failed", "stage", "recognize", "error", err)
		return nil, errors.NewEngineFailedError(requestID, "recognize", err)
	}

	if p.shouldRetry(records, mode) {
		log.Info("confidence below threshold, retrying with per-character mode",
			"records", len(records), "mean_confidence", meanConfidence(records))

		retryCfg := engineCfg
		retryCfg.PageSegMode = engine.PSMSingleChar
		retried, err := p.recognizeRegions(ctx, norm.Display, regions, retryCfg)
		if err != nil {
			log.Error("recognition failed", "stage", "retry", "error", err)
			return nil, errors.NewEngineFailedError(requestID, "retry", err)
		}
		// A non-empty retry result replaces the first attempt outright;
		// the per-character mode is a corrective, not a competitor.
		if len(retried) > 0 {
			records = retried
		}
	}

	if len(records) == 0 {
		record, err := p.wholeImageFallback(ctx, norm.Display, engineCfg)
		if err != nil {
			log.Error("recognition failed", "stage", "fallback", "error", err)
			return nil, errors.NewEngineFailedError(requestID, "fallback", err)
		}
		if record != nil {
			records = append(records, *record)
		}
	}

	log.Info("recognition complete", "records", len(records), "mean_confidence", meanConfidence(records))
	return records, nil
}

// engineConfig builds the engine configuration for one attempt, with
// caller-supplied character lists sanitized first.
func (p *Pipeline) engineConfig(mode engine.PageSegMode, opts Options) engine.Config {
	return engine.Config{
		Languages:      p.cfg.Languages,
		PageSegMode:    mode,
		Whitelist:      SanitizeCharset(opts.Whitelist),
		Blacklist:      SanitizeCharset(opts.Blacklist),
		TessdataPrefix: p.cfg.TessdataPrefix,
		Variables:      p.cfg.EngineVariables,
	}
}

// recognizeRegions crops each region out of the display image, runs the
// engine on it and aggregates the tokens into line records, translating
// region-local token boxes into image-global coordinates.
func (p *Pipeline) recognizeRegions(ctx context.Context, display gocv.Mat, regions []image.Rectangle, cfg engine.Config) ([]LineRecord, error) {
	agg := NewLineAggregator()

	for i, region := range regions {
		data, err := encodeRegion(display, region)
		if err != nil {
			return nil, err
		}

		tokens, err := p.recognizer.ExtractTokens(ctx, data, cfg)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}

		for _, token := range tokens {
			token.Box = token.Box.Add(region.Min)
			agg.Add(LineKey{
				Region:    i,
				Block:     token.Block,
				Paragraph: token.Paragraph,
				Line:      token.Line,
			}, token)
		}
	}

	return agg.Records(), nil
}

// wholeImageFallback runs one plain text extraction over the full image and
// synthesizes a single record spanning the whole extent if any text comes
// back.
func (p *Pipeline) wholeImageFallback(ctx context.Context, display gocv.Mat, cfg engine.Config) (*LineRecord, error) {
	data, err := encodeRegion(display, image.Rect(0, 0, display.Cols(), display.Rows()))
	if err != nil {
		return nil, err
	}

	plainCfg := cfg
	plainCfg.PageSegMode = engine.PSMAuto
	text, err := p.recognizer.ExtractText(ctx, data, plainCfg)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	return &LineRecord{
		Text:       text,
		Confidence: fallbackConfidence,
		Region:     boxPolygon(image.Rect(0, 0, display.Cols(), display.Rows())),
	}, nil
}

// shouldRetry reports whether the per-character retry must run. Retrying
// with the same mode cannot improve results, so a first attempt already in
// per-character mode is terminal.
func (p *Pipeline) shouldRetry(records []LineRecord, mode engine.PageSegMode) bool {
	if mode == engine.PSMSingleChar {
		return false
	}
	return len(records) == 0 || meanConfidence(records) < p.cfg.ConfidenceThreshold
}

// meanConfidence averages record confidences; zero when there are none
func meanConfidence(records []LineRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range records {
		sum += r.Confidence
	}
	return sum / float64(len(records))
}

// encodeRegion crops a region from the image and encodes it as PNG for the
// engine. The crop is a view; encoding copies, so nothing outlives the call.
func encodeRegion(display gocv.Mat, region image.Rectangle) ([]byte, error) {
	crop := display.Region(region)
	defer crop.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, crop)
	if err != nil {
		return nil, fmt.Errorf("failed to encode region: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}
