package imaging

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFit(t *testing.T) {
	cases := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{800, 600, 2048, 800, 600},
		{4000, 3000, 2048, 2048, 1536},
		{3000, 4000, 2048, 1536, 2048},
		{5000, 1, 2048, 2048, 1},
		{1000, 1000, 0, 1000, 1000},
	}

	for _, tc := range cases {
		w, h := Fit(tc.w, tc.h, tc.max)
		assert.Equal(t, tc.wantW, w)
		assert.Equal(t, tc.wantH, h)
	}
}

func TestResize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		for y := 0; y < 200; y++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	out := Resize(src, 100)
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())

	same := Resize(src, 1000)
	assert.Same(t, src, same.(*image.RGBA))
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize(strings.NewReader("not an image"), MaxDimension)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
