package wsys

import "image/color"

// Color is a 32-bit color in 0xAARRGGBB order. When it is handed to an
// alpha-blending primitive (FillOver) the red, green and blue channels must
// already be premultiplied by alpha; naive straight-alpha input produces
// wrong output on every platform blender.
type Color uint32

// ARGB packs straight channel values without premultiplying.
func ARGB(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Premultiplied packs channel values, scaling r, g and b by a/255 first.
func Premultiplied(a, r, g, b uint8) Color {
	f := uint32(a)
	pr := uint8((uint32(r)*f + 127) / 255)
	pg := uint8((uint32(g)*f + 127) / 255)
	pb := uint8((uint32(b)*f + 127) / 255)
	return ARGB(a, pr, pg, pb)
}

// FromColor converts a standard library color. color.Color's RGBA method
// already reports premultiplied channels, so the result is blend-ready.
func FromColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	return ARGB(uint8(a>>8), uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func (c Color) Alpha() uint8 { return uint8(c >> 24) }
func (c Color) Red() uint8   { return uint8(c >> 16) }
func (c Color) Green() uint8 { return uint8(c >> 8) }
func (c Color) Blue() uint8  { return uint8(c) }

// Opaque drops the alpha channel, returning the fully opaque source color
// used by the source-copy fill.
func (c Color) Opaque() Color {
	return c&0x00FFFFFF | 0xFF000000
}
