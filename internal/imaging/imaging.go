// Package imaging turns a scan on disk into an upload the brain-scan
// classifier accepts.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// MaxDimension is the longest side sent to the classifier. The model works
// on 128px input, so anything larger only costs upload time.
const MaxDimension = 1024

// ErrUnsupportedFormat is returned for files that are not an image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is the detected input format.
type Format string

const (
	FormatPNG   Format = "png"
	FormatJPEG  Format = "jpeg"
	FormatDICOM Format = "dicom"
)

// Upload is a prepared image ready for multipart upload.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte

	Source        Format
	Width, Height int
	// Resized is true when the image was scaled down.
	Resized bool
}

// Prepare reads path and returns an Upload. PNG and JPEG pass through
// unless they exceed MaxDimension. DICOM is rendered to an 8-bit PNG.
func Prepare(path string) (*Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return PrepareBytes(filepath.Base(path), data)
}

// PrepareBytes is Prepare for in-memory content.
func PrepareBytes(name string, data []byte) (*Upload, error) {
	format := Detect(name, data)
	switch format {
	case FormatDICOM:
		img, err := decodeDICOM(data)
		if err != nil {
			return nil, err
		}
		img, resized := fit(img)
		return encodePNG(pngName(name), img, FormatDICOM, resized)

	case FormatPNG, FormatJPEG:
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		if cfg.Width <= MaxDimension && cfg.Height <= MaxDimension {
			return &Upload{
				Filename:    name,
				ContentType: contentType(format),
				Data:        data,
				Source:      format,
				Width:       cfg.Width,
				Height:      cfg.Height,
			}, nil
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		img, _ = fit(img)
		if format == FormatJPEG {
			return encodeJPEG(name, img)
		}
		return encodePNG(name, img, FormatPNG, true)
	}
	return nil, ErrUnsupportedFormat
}

// Detect sniffs the format. DICOM is recognised by the DICM marker at
// offset 128 or, for headerless files, the .dcm extension.
func Detect(name string, data []byte) Format {
	if len(data) >= 132 && string(data[128:132]) == "DICM" {
		return FormatDICOM
	}
	switch http.DetectContentType(data) {
	case "image/png":
		return FormatPNG
	case "image/jpeg":
		return FormatJPEG
	}
	if strings.EqualFold(filepath.Ext(name), ".dcm") {
		return FormatDICOM
	}
	return ""
}

func contentType(f Format) string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

func pngName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
}

// fit scales img so neither side exceeds MaxDimension, keeping the aspect ratio.
func fit(img image.Image) (image.Image, bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= MaxDimension && h <= MaxDimension {
		return img, false
	}
	if w >= h {
		h = max(1, h*MaxDimension/w)
		w = MaxDimension
	} else {
		w = max(1, w*MaxDimension/h)
		h = MaxDimension
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst, true
}

func encodePNG(name string, img image.Image, src Format, resized bool) (*Upload, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	b := img.Bounds()
	return &Upload{
		Filename:    name,
		ContentType: "image/png",
		Data:        buf.Bytes(),
		Source:      src,
		Width:       b.Dx(),
		Height:      b.Dy(),
		Resized:     resized,
	}, nil
}

func encodeJPEG(name string, img image.Image) (*Upload, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	b := img.Bounds()
	return &Upload{
		Filename:    name,
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
		Source:      FormatJPEG,
		Width:       b.Dx(),
		Height:      b.Dy(),
		Resized:     true,
	}, nil
}
