package wsys

import (
	"image/color"
	"testing"
)

func TestARGBChannels(t *testing.T) {
	c := ARGB(0x80, 0x11, 0x22, 0x33)
	if c != 0x80112233 {
		t.Fatalf("ARGB packed 0x%08X, want 0x80112233", uint32(c))
	}
	if c.Alpha() != 0x80 || c.Red() != 0x11 || c.Green() != 0x22 || c.Blue() != 0x33 {
		t.Fatalf("channel getters returned a=%02X r=%02X g=%02X b=%02X",
			c.Alpha(), c.Red(), c.Green(), c.Blue())
	}
}

func TestPremultiplied(t *testing.T) {
	tests := []struct {
		a, r, g, b uint8
		want       Color
	}{
		{0xFF, 0x40, 0x80, 0xC0, 0xFF4080C0}, // opaque passes through
		{0x00, 0x40, 0x80, 0xC0, 0x00000000}, // transparent zeroes color
		{0x80, 0xFF, 0x00, 0xFF, 0x80800080},
	}
	for _, tt := range tests {
		got := Premultiplied(tt.a, tt.r, tt.g, tt.b)
		if got != tt.want {
			t.Errorf("Premultiplied(%02X,%02X,%02X,%02X) = 0x%08X, want 0x%08X",
				tt.a, tt.r, tt.g, tt.b, uint32(got), uint32(tt.want))
		}
	}
}

func TestPremultipliedNeverExceedsAlpha(t *testing.T) {
	for _, a := range []uint8{0, 1, 0x7F, 0x80, 0xFE, 0xFF} {
		c := Premultiplied(a, 0xFF, 0xFF, 0xFF)
		if c.Red() > a || c.Green() > a || c.Blue() > a {
			t.Fatalf("alpha %02X produced channels above it: 0x%08X", a, uint32(c))
		}
	}
}

func TestFromColor(t *testing.T) {
	// color.RGBA carries premultiplied channels already.
	c := FromColor(color.RGBA{R: 0x80, G: 0x40, B: 0x00, A: 0x80})
	if c != 0x80804000 {
		t.Fatalf("FromColor = 0x%08X, want 0x80804000", uint32(c))
	}
}

func TestOpaque(t *testing.T) {
	if got := Color(0x102030FF).Opaque(); got != 0xFF2030FF {
		t.Fatalf("Opaque = 0x%08X, want 0xFF2030FF", uint32(got))
	}
}
