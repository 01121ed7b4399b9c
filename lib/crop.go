package lib

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	cropJpegQuality = 90

	// larger crops are scaled down to fit
	MaxImageSide = 1080
)

// CropRect is a crop area in source pixels.
type CropRect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r CropRect) rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// ParseCropRect reads "x,y,width,height".
func ParseCropRect(s string) (CropRect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return CropRect{}, fmt.Errorf("crop must be x,y,width,height, got %q", s)
	}

	var vals [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return CropRect{}, fmt.Errorf("invalid crop value %q: %v", p, err)
		}
		vals[i] = n
	}

	return CropRect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// CenterSquare is the largest square centered in bounds, the default crop for
// post images.
func CenterSquare(bounds image.Rectangle) CropRect {
	side := min(bounds.Dx(), bounds.Dy())
	return CropRect{
		X:      bounds.Min.X + (bounds.Dx()-side)/2,
		Y:      bounds.Min.Y + (bounds.Dy()-side)/2,
		Width:  side,
		Height: side,
	}
}

// DecodeImage decodes a png, jpeg, gif or webp image.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %v", err)
	}
	return img, nil
}

// CropImage copies crop out of src, scales it down to MaxImageSide if needed,
// and encodes it as JPEG. The crop must lie within the image.
func CropImage(src image.Image, crop CropRect) ([]byte, error) {
	if crop.Width <= 0 || crop.Height <= 0 {
		return nil, fmt.Errorf("crop area must have a positive size, got %dx%d", crop.Width, crop.Height)
	}

	area := crop.rect()
	if !area.In(src.Bounds()) {
		return nil, fmt.Errorf("crop area %v is outside the image bounds %v", area, src.Bounds())
	}

	w, h := fitWithin(crop.Width, crop.Height, MaxImageSide)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == crop.Width && h == crop.Height {
		draw.Draw(dst, dst.Bounds(), src, area.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, area, draw.Src, nil)
	}

	var buf bytes.Buffer
	err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: cropJpegQuality})
	if err != nil {
		return nil, fmt.Errorf("error encoding cropped image: %v", err)
	}

	return buf.Bytes(), nil
}

func fitWithin(w, h, maxSide int) (int, int) {
	if w <= maxSide && h <= maxSide {
		return w, h
	}
	if w >= h {
		return maxSide, max(1, h*maxSide/w)
	}
	return max(1, w*maxSide/h), maxSide
}
