package zel

import (
	"image"
	"image/color"
	"io"
)

func init() {
	image.RegisterFormat("zel", "ZEL0", Decode, DecodeConfig)
}

// rgb565Color is a color.Color backed by one RGB565 word, expanded to
// 8-bit-per-channel only when RGBA is called — the mechanical bit
// expansion color.Color's interface requires, not a rendering path.
type rgb565Color uint16

func (c rgb565Color) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c>>11) & 0x1F
	g6 := uint32(c>>5) & 0x3F
	b5 := uint32(c) & 0x1F
	r8 := (r5*255 + 15) / 31
	g8 := (g6*255 + 31) / 63
	b8 := (b5*255 + 15) / 31
	return r8 * 0x101, g8 * 0x101, b8 * 0x101, 0xffff
}

// RGB565Model converts arbitrary colors to RGB565 by keeping the top 5/6/5
// bits of each 16-bit channel (truncation, not rounding).
var RGB565Model = color.ModelFunc(rgb565ModelFunc)

func rgb565ModelFunc(c color.Color) color.Color {
	if rc, ok := c.(rgb565Color); ok {
		return rc
	}
	r, g, b, _ := c.RGBA()
	r5 := uint16(r>>11) & 0x1F
	g6 := uint16(g>>10) & 0x3F
	b5 := uint16(b>>11) & 0x1F
	return rgb565Color(r5<<11 | g6<<5 | b5)
}

// frameImage adapts one decoded RGB565 frame to image.Image, mirroring
// the teacher's practice of handing callers a standard image.Image
// instead of raw planes.
type frameImage struct {
	width, height int
	pix           []uint16
}

func (f *frameImage) ColorModel() color.Model { return RGB565Model }
func (f *frameImage) Bounds() image.Rectangle { return image.Rect(0, 0, f.width, f.height) }
func (f *frameImage) At(x, y int) color.Color { return rgb565Color(f.pix[y*f.width+x]) }

// FrameImage decodes frame i to RGB565 and wraps it as an image.Image,
// ready to hand to image/png, image/draw, or similar. This is additive
// sugar over DecodeFrameRGB565, not a second decode path.
func (d *Decoder) FrameImage(i int) (image.Image, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	w, h := int(d.header.Width), int(d.header.Height)
	pix := make([]uint16, w*h)
	if err := d.DecodeFrameRGB565(i, pix, w); err != nil {
		return nil, err
	}
	return &frameImage{width: w, height: h, pix: pix}, nil
}

// Decode implements the image.Decode signature registered for the "zel"
// format: it reads r fully, opens it as a memory-backed Decoder, and
// returns frame 0 as an image.Image.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d, err := OpenMemory(data)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return d.FrameImage(0)
}

// DecodeConfig implements the image.DecodeConfig signature registered for
// the "zel" format.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}
	d, err := OpenMemory(data)
	if err != nil {
		return image.Config{}, err
	}
	defer d.Close()
	w, err := d.Width()
	if err != nil {
		return image.Config{}, err
	}
	h, err := d.Height()
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: RGB565Model, Width: int(w), Height: int(h)}, nil
}
