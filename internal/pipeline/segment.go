/**
 * Text-region segmentation
 *
 * Derives line-level candidate rectangles from the binarized map by merging
 * nearby character blobs with a wide dilation and extracting the external
 * contours of the result.
 */

package pipeline

import (
	"image"
	"sort"

	"gocv.io/x/gocv"
)

const (
	// Wide-and-short kernel so horizontally adjacent glyphs fuse into lines
	dilateKernelWidth  = 25
	dilateKernelHeight = 5

	// Rectangles smaller than this are noise specks, not text
	minRegionArea = 5000
)

// SegmentRegions returns candidate text rectangles in reading order
// (top coordinate, then left coordinate). It may return an empty list;
// the caller substitutes a single image-spanning region in that case.
func SegmentRegions(binary gocv.Mat) []image.Rectangle {
	// Foreground-as-white for dilation and contour extraction
	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(binary, &inverted)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(dilateKernelWidth, dilateKernelHeight))
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(inverted, &dilated, kernel)

	contours := gocv.FindContours(dilated, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]image.Rectangle, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		if rect.Dx()*rect.Dy() < minRegionArea {
			continue
		}
		regions = append(regions, rect)
	}

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Min.Y != regions[j].Min.Y {
			return regions[i].Min.Y < regions[j].Min.Y
		}
		return regions[i].Min.X < regions[j].Min.X
	})

	return regions
}
