package pipeline

import (
	"image"
	"testing"
)

func TestSegmentRegionsFindsLineBlobs(t *testing.T) {
	mat := whiteMat(t, 1000, 1000)
	fillBlack(&mat, image.Rect(100, 100, 500, 130))
	fillBlack(&mat, image.Rect(100, 300, 500, 330))

	regions := SegmentRegions(mat)
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d: %v", len(regions), regions)
	}

	// Top-to-bottom reading order, each blob covering its source bar
	if regions[0].Min.Y > 100 || regions[0].Max.Y < 130 {
		t.Errorf("first region %v does not cover the top bar", regions[0])
	}
	if regions[1].Min.Y > 300 || regions[1].Max.Y < 330 {
		t.Errorf("second region %v does not cover the bottom bar", regions[1])
	}
	if regions[0].Min.Y >= regions[1].Min.Y {
		t.Errorf("regions out of reading order: %v before %v", regions[0], regions[1])
	}
}

func TestSegmentRegionsFiltersNoiseSpecks(t *testing.T) {
	mat := whiteMat(t, 1000, 1000)
	fillBlack(&mat, image.Rect(100, 100, 500, 130))
	fillBlack(&mat, image.Rect(800, 800, 810, 810)) // speck

	regions := SegmentRegions(mat)
	if len(regions) != 1 {
		t.Fatalf("expected speck to be filtered, got %d regions: %v", len(regions), regions)
	}
}

func TestSegmentRegionsOrdersSameRowLeftToRight(t *testing.T) {
	mat := whiteMat(t, 1200, 600)
	fillBlack(&mat, image.Rect(700, 100, 1000, 130))
	fillBlack(&mat, image.Rect(100, 100, 400, 130))

	regions := SegmentRegions(mat)
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d: %v", len(regions), regions)
	}
	if regions[0].Min.X >= regions[1].Min.X {
		t.Errorf("same-row regions not left-to-right: %v before %v", regions[0], regions[1])
	}
}

func TestSegmentRegionsBlankImage(t *testing.T) {
	mat := whiteMat(t, 1000, 1000)

	if regions := SegmentRegions(mat); len(regions) != 0 {
		t.Errorf("expected no regions on blank image, got %v", regions)
	}
}
