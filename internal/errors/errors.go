package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

/**
 * Error taxonomy for the OCR service
 *
 * Input errors (undecodable image) are client errors; engine errors are
 * server errors carrying the underlying cause. Preprocessing errors never
 * reach the transport boundary: they are downgraded at their own layer.
 */

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Input errors
	ErrorInvalidImage ErrorCode = "INVALID_IMAGE"

	// Engine errors
	ErrorEngineFailed ErrorCode = "ENGINE_FAILED"

	// Preprocessing errors (internal only, always recovered)
	ErrorPreprocessFailed ErrorCode = "PREPROCESS_FAILED"
)

// OCRError represents a structured processing error
type OCRError struct {
	Code      ErrorCode
	Message   string
	RequestID string
	Stage     string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *OCRError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *OCRError) Unwrap() error {
	return e.Cause
}

// Factory functions for common errors

func NewInvalidImageError(requestID string, cause error) *OCRError {
	return &OCRError{
		Code:      ErrorInvalidImage,
		Message:   "image data could not be decoded",
		RequestID: requestID,
		Stage:     "decode",
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewEngineFailedError(requestID, stage string, cause error) *OCRError {
	return &OCRError{
		Code:      ErrorEngineFailed,
		Message:   fmt.Sprintf("recognition engine failed at stage: %s", stage),
		RequestID: requestID,
		Stage:     stage,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"stage": stage,
		},
		Cause: cause,
	}
}

func NewPreprocessFailedError(requestID, stage string, cause error) *OCRError {
	return &OCRError{
		Code:      ErrorPreprocessFailed,
		Message:   fmt.Sprintf("preprocessing failed at stage: %s", stage),
		RequestID: requestID,
		Stage:     stage,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// CodeOf extracts the error code from any error in the chain
func CodeOf(err error) ErrorCode {
	var ocrErr *OCRError
	if stderrors.As(err, &ocrErr) {
		return ocrErr.Code
	}
	return ""
}

// HTTPStatus maps an error to the status the transport layer should return
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrorInvalidImage:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
