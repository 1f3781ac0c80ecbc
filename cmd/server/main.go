/**
 * OCR Service - Main Entry Point
 *
 * HTTP service that turns an uploaded raster image into recognized text
 * lines with confidence scores and bounding polygons.
 *
 * Architecture:
 * - Adaptive preprocessing (grayscale, upscale, deskew, fused binarization)
 * - Projection/dilation region segmentation
 * - Per-region recognition through a pluggable engine (tesseract backend)
 * - Confidence-gated per-character retry and whole-image fallback
 */

package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/textlens/ocr-service/internal/config"
	"github.com/textlens/ocr-service/internal/engine"
	"github.com/textlens/ocr-service/internal/logging"
	"github.com/textlens/ocr-service/internal/pipeline"
	"github.com/textlens/ocr-service/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger("ocr-service")
	logger.Info("configuration loaded",
		"port", cfg.Port,
		"languages", cfg.Languages,
		"confidence_threshold", cfg.ConfidenceThreshold,
		"tessdata_prefix", cfg.TessdataPrefix)

	recognizer := engine.NewTesseract()
	selfCheck(recognizer, cfg, logger)

	pipe := pipeline.New(recognizer, cfg, logger)
	handler := server.NewRouter(pipe, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan
	logger.Info("received signal, shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("shutdown complete")
}

// selfCheck exercises the engine once at startup so a broken installation
// (missing binding, absent language data) is visible in the logs before the
// first real request arrives. The service still starts either way.
func selfCheck(recognizer engine.Recognizer, cfg *config.Config, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	img := image.NewGray(image.Rect(0, 0, 32, 32))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger.Warn("engine self-check skipped", "error", err)
		return
	}

	_, err := recognizer.ExtractText(ctx, buf.Bytes(), engine.Config{
		Languages:      cfg.Languages,
		TessdataPrefix: cfg.TessdataPrefix,
		Variables:      cfg.EngineVariables,
	})
	if err != nil {
		logger.Warn("engine self-check failed, recognition requests will likely fail", "error", err)
		return
	}
	logger.Info("engine self-check passed")
}
