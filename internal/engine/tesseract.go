/**
 * Tesseract backend for the recognition engine capability
 *
 * Each call builds a fresh gosseract client from the Config value, so no
 * engine state is shared between concurrent requests.
 */

package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements Recognizer on top of the gosseract binding
type Tesseract struct{}

// NewTesseract creates a new Tesseract recognizer
func NewTesseract() *Tesseract {
	return &Tesseract{}
}

// ExtractTokens performs structured recognition and returns per-word tokens
func (t *Tesseract) ExtractTokens(ctx context.Context, imageData []byte, cfg Config) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := t.newClient(cfg)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("tesseract token extraction failed: %w", err)
	}

	tokens := make([]Token, 0, len(boxes))
	for _, box := range boxes {
		conf := box.Confidence
		if conf < 0 {
			// unknown-confidence sentinel
			conf = 0
		}
		tokens = append(tokens, Token{
			Text:       strings.TrimSpace(box.Word),
			Confidence: conf,
			Box:        box.Box,
			Block:      box.BlockNum,
			Paragraph:  box.ParNum,
			Line:       box.LineNum,
		})
	}

	return tokens, nil
}

// ExtractText performs plain full-text recognition
func (t *Tesseract) ExtractText(ctx context.Context, imageData []byte, cfg Config) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client, err := t.newClient(cfg)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract text extraction failed: %w", err)
	}

	return text, nil
}

// newClient builds a configured gosseract client for one recognition attempt
func (t *Tesseract) newClient(cfg Config) (*gosseract.Client, error) {
	client := gosseract.NewClient()

	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}

	if len(cfg.Languages) > 0 {
		if err := client.SetLanguage(cfg.Languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set languages: %w", err)
		}
	}

	if cfg.PageSegMode != 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}

	if cfg.Whitelist != "" {
		if err := client.SetWhitelist(cfg.Whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}

	if cfg.Blacklist != "" {
		if err := client.SetBlacklist(cfg.Blacklist); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set blacklist: %w", err)
		}
	}

	for key, value := range cfg.Variables {
		if err := client.SetVariable(gosseract.SettableVariable(key), value); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set engine variable %s: %w", key, err)
		}
	}

	return client, nil
}
