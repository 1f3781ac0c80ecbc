/**
 * Image normalization
 *
 * Turns an arbitrary color or grayscale raster into a binarized map the
 * segmenter can work on, plus the grayscale image used for cropping.
 * Any failure degrades to plain grayscale instead of aborting the request.
 */

package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

const (
	// Images whose shorter side is below this are upscaled before recognition
	minShortSide = 800

	// Skew below this magnitude is left alone to avoid interpolation blur
	skewEpsilonDeg = 0.5

	// Local adaptive threshold parameters
	adaptiveBlockSize = 35
	adaptiveConstant  = 11

	// Pixels at or above this gray value count as background for deskewing
	whiteCutoff = 250
)

// NormalizeResult is the outcome of image normalization. Degraded marks the
// grayscale-only path taken when a normalization step failed; the grayscale
// image then doubles as the binary map and Cause carries the failure.
type NormalizeResult struct {
	// Binary is the binarized map consumed by region segmentation
	Binary gocv.Mat

	// Display is the (possibly upscaled and deskewed) grayscale image
	// that regions are cropped from
	Display gocv.Mat

	Degraded bool
	Cause    error
}

// Close releases the mats held by the result
func (r *NormalizeResult) Close() {
	r.Binary.Close()
	r.Display.Close()
}

// Normalize runs grayscale conversion, adaptive upscaling, deskewing,
// fused binarization and morphological cleanup over the source image.
func Normalize(src gocv.Mat) NormalizeResult {
	gray := toGray(src)

	binary, display, err := normalizeGray(gray)
	if err != nil {
		return degradedResult(gray, err)
	}

	gray.Close()
	return NormalizeResult{Binary: binary, Display: display}
}

// degradedResult falls back to the untouched grayscale image as both the
// binary map and the display image.
func degradedResult(gray gocv.Mat, cause error) NormalizeResult {
	return NormalizeResult{Binary: gray.Clone(), Display: gray, Degraded: true, Cause: cause}
}

// toGray converts the source to single-channel grayscale
func toGray(src gocv.Mat) gocv.Mat {
	if src.Channels() == 1 {
		return src.Clone()
	}
	gray := gocv.NewMat()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	return gray
}

func normalizeGray(gray gocv.Mat) (binary, display gocv.Mat, err error) {
	work := gray.Clone()
	fused := gocv.NewMat()

	// The binding surfaces OpenCV failures on malformed data as panics;
	// convert them into the degraded grayscale-only outcome, releasing
	// what was allocated before the failing step.
	defer func() {
		if r := recover(); r != nil {
			work.Close()
			fused.Close()
			err = fmt.Errorf("normalization step failed: %v", r)
		}
	}()

	// Upscale small sources so character strokes resolve
	if short := minInt(work.Cols(), work.Rows()); short > 0 && short < minShortSide {
		scale := float64(minShortSide) / float64(short)
		scaled := gocv.NewMat()
		gocv.Resize(work, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
		work.Close()
		work = scaled
	}

	// Deskew unless the tilt is negligible
	if angle := estimateSkew(work); math.Abs(angle) >= skewEpsilonDeg {
		rotated := rotateAboutCenter(work, angle)
		work.Close()
		work = rotated
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(work, &blurred, image.Pt(3, 3), 0, 0, gocv.BorderDefault)

	// Otsu is clean on uniform backgrounds, adaptive handles uneven
	// illumination; their intersection suppresses both failure modes.
	otsu := gocv.NewMat()
	defer otsu.Close()
	gocv.Threshold(blurred, &otsu, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	adaptive := gocv.NewMat()
	defer adaptive.Close()
	gocv.AdaptiveThreshold(blurred, &adaptive, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinary, adaptiveBlockSize, adaptiveConstant)

	gocv.BitwiseAnd(otsu, adaptive, &fused)

	// One closing pass reconnects strokes broken by the intersection
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	gocv.MorphologyEx(fused, &fused, gocv.MorphClose, kernel)

	return fused, work, nil
}

// estimateSkew estimates the dominant text angle from the minimum-area
// bounding rectangle of all non-white pixels, normalized to (-45, 45].
// An image with no foreground pixels reports zero skew.
func estimateSkew(gray gocv.Mat) float64 {
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, whiteCutoff-1, 255, gocv.ThresholdBinaryInv)

	points := gocv.NewMat()
	defer points.Close()
	gocv.FindNonZero(mask, &points)
	if points.Empty() {
		return 0
	}

	pv := gocv.NewPointVectorFromMat(points)
	defer pv.Close()

	angle := gocv.MinAreaRect(pv).Angle
	if angle < -45 {
		angle += 90
	} else if angle > 45 {
		angle -= 90
	}
	return angle
}

// rotateAboutCenter rotates the image about its center with cubic
// interpolation and edge replication at the borders.
func rotateAboutCenter(src gocv.Mat, angle float64) gocv.Mat {
	center := image.Pt(src.Cols()/2, src.Rows()/2)
	m := gocv.GetRotationMatrix2D(center, angle, 1.0)
	defer m.Close()

	dst := gocv.NewMat()
	gocv.WarpAffineWithParams(src, &dst, m, image.Pt(src.Cols(), src.Rows()),
		gocv.InterpolationCubic, gocv.BorderReplicate, color.RGBA{})
	return dst
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
