package vision

import (
	"image"
	"time"
)

// Frame is a single captured video frame: RGBA bytes in row-major order,
// 4 bytes per pixel. A frame is owned by the loop for one iteration and is
// never mutated by the classifiers in this package.
type Frame struct {
	Width     int
	Height    int
	Pix       []uint8
	Timestamp time.Time
}

// NewFrame allocates a zeroed frame of the given dimensions.
func NewFrame(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{
		Width:     width,
		Height:    height,
		Pix:       make([]uint8, width*height*4),
		Timestamp: time.Now(),
	}
}

// FrameFromImage converts any decoded image into a frame.
func FrameFromImage(img image.Image) *Frame {
	bounds := img.Bounds()
	f := NewFrame(bounds.Dx(), bounds.Dy())

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*f.Width + x) * 4
			f.Pix[i] = uint8(r >> 8)
			f.Pix[i+1] = uint8(g >> 8)
			f.Pix[i+2] = uint8(b >> 8)
			f.Pix[i+3] = uint8(a >> 8)
		}
	}
	return f
}

// Bounds returns the frame rectangle anchored at the origin.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// RGBAt returns the color channels at (x, y). Out-of-bounds coordinates
// return black, mirroring image.RGBA.At.
func (f *Frame) RGBAt(x, y int) (r, g, b uint8) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0, 0, 0
	}
	i := (y*f.Width + x) * 4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// SetRGB writes the color channels at (x, y) with full opacity.
// Out-of-bounds writes are ignored.
func (f *Frame) SetRGB(x, y int, r, g, b uint8) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	i := (y*f.Width + x) * 4
	f.Pix[i] = r
	f.Pix[i+1] = g
	f.Pix[i+2] = b
	f.Pix[i+3] = 255
}

// Pixel is a single sampled RGB value.
type Pixel struct {
	R, G, B uint8
}

// SampleRegion extracts the pixels enclosed by rect, clipped to the frame.
// A zero-area or fully outside rectangle yields nil. Callers must treat an
// empty result as undecidable, not as a negative classification.
func (f *Frame) SampleRegion(rect image.Rectangle) []Pixel {
	clipped := rect.Intersect(f.Bounds())
	if clipped.Empty() {
		return nil
	}

	pixels := make([]Pixel, 0, clipped.Dx()*clipped.Dy())
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		row := y * f.Width * 4
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			i := row + x*4
			pixels = append(pixels, Pixel{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2]})
		}
	}
	return pixels
}
