package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// decodeDICOM renders the first frame of PixelData as 8-bit grayscale.
// Intensities are mapped through the file's VOI window when it has one,
// otherwise through the frame's own min..max range.
func decodeDICOM(data []byte) (image.Image, error) {
	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dicom: %v", ErrUnsupportedFormat, err)
	}

	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("%w: dicom has no pixel data", ErrUnsupportedFormat)
	}
	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok || len(info.Frames) == 0 {
		return nil, fmt.Errorf("%w: dicom has no frames", ErrUnsupportedFormat)
	}
	src, err := info.Frames[0].GetImage()
	if err != nil {
		return nil, fmt.Errorf("decode dicom frame: %w", err)
	}

	lo, hi, ok := voiWindow(ds)
	if !ok {
		lo, hi = intensityRange(src)
	}
	invert := photometric(ds) == "MONOCHROME1"
	return normalize(src, lo, hi, invert), nil
}

// voiWindow reads WindowCenter/WindowWidth (first value of each).
func voiWindow(ds dicom.Dataset) (lo, hi float64, ok bool) {
	center, ok1 := firstFloat(ds, tag.WindowCenter)
	width, ok2 := firstFloat(ds, tag.WindowWidth)
	if !ok1 || !ok2 || width <= 1 {
		return 0, 0, false
	}
	return center - width/2, center + width/2, true
}

func firstFloat(ds dicom.Dataset, t tag.Tag) (float64, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return 0, false
	}
	vals, ok := el.Value.GetValue().([]string)
	if !ok || len(vals) == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
	return f, err == nil
}

func photometric(ds dicom.Dataset) string {
	el, err := ds.FindElementByTag(tag.PhotometricInterpretation)
	if err != nil {
		return ""
	}
	vals, ok := el.Value.GetValue().([]string)
	if !ok || len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}

// sample returns the stored value in the frame's own units, so it can be
// compared with the VOI window.
func sample(img image.Image, x, y int) float64 {
	switch g := img.(type) {
	case *image.Gray16:
		return float64(g.Gray16At(x, y).Y)
	case *image.Gray:
		return float64(g.GrayAt(x, y).Y)
	}
	return float64(color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y)
}

func intensityRange(img image.Image) (lo, hi float64) {
	b := img.Bounds()
	lo, hi = math.Inf(1), math.Inf(-1)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := sample(img, x, y)
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	return lo, hi
}

// normalize maps [lo, hi] linearly onto 0..255.
func normalize(src image.Image, lo, hi float64, invert bool) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	span := hi - lo
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var v float64
			if span > 0 {
				v = (sample(src, x, y) - lo) / span
			}
			v = min(1, max(0, v))
			if invert {
				v = 1 - v
			}
			dst.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: uint8(v*255 + 0.5)})
		}
	}
	return dst
}
