package pipeline

import (
	"testing"

	"github.com/textlens/ocr-service/internal/engine"
)

func TestSelectPageSegMode(t *testing.T) {
	testCases := []struct {
		name     string
		explicit int
		hint     string
		width    int
		height   int
		want     engine.PageSegMode
	}{
		{
			name:     "explicit value wins over hint and geometry",
			explicit: 7,
			hint:     "single_char",
			width:    100,
			height:   100,
			want:     engine.PSMSingleLine,
		},
		{
			name:     "explicit zero recognizes nothing and falls through to hint",
			explicit: 0,
			hint:     "single_block",
			width:    3000,
			height:   100,
			want:     engine.PSMSingleBlock,
		},
		{
			name:     "single_char hint",
			explicit: -1,
			hint:     "single_char",
			width:    1000,
			height:   1000,
			want:     engine.PSMSingleChar,
		},
		{
			name:     "single_line hint",
			explicit: -1,
			hint:     "single_line",
			width:    1000,
			height:   1000,
			want:     engine.PSMSingleLine,
		},
		{
			name:     "single_block hint",
			explicit: -1,
			hint:     "single_block",
			width:    3000,
			height:   100,
			want:     engine.PSMSingleBlock,
		},
		{
			name:     "unknown hint falls through to geometry",
			explicit: -1,
			hint:     "sparse",
			width:    1000,
			height:   1000,
			want:     engine.PSMSingleBlock,
		},
		{
			name:     "tiny image uses per-character mode",
			explicit: -1,
			width:    500,
			height:   150,
			want:     engine.PSMSingleChar,
		},
		{
			name:     "wide image uses single line",
			explicit: -1,
			width:    2000,
			height:   400,
			want:     engine.PSMSingleLine,
		},
		{
			name:     "tall image uses vertical text mode",
			explicit: -1,
			width:    400,
			height:   2000,
			want:     engine.PSMSingleVerticalText,
		},
		{
			name:     "square image defaults to single block",
			explicit: -1,
			width:    1000,
			height:   900,
			want:     engine.PSMSingleBlock,
		},
		{
			name:     "zero dimensions default to single block",
			explicit: -1,
			width:    0,
			height:   0,
			want:     engine.PSMSingleBlock,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectPageSegMode(tc.explicit, tc.hint, tc.width, tc.height)
			if got != tc.want {
				t.Errorf("SelectPageSegMode(%d, %q, %d, %d) = %d, want %d",
					tc.explicit, tc.hint, tc.width, tc.height, got, tc.want)
			}
		})
	}
}
