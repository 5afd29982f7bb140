// Package colorspace maps display colors to the 3-channel representations
// the clustering engine works in, and back.
//
// Every space keeps its channels non-negative: the engine averages colors as
// a root mean square, which discards sign.
package colorspace

import (
	"image/color"
	"math"
)

type Model interface {
	Name() string
	Encode(c color.Color) [3]float64
	// Decode rounds and clamps into the displayable range.
	Decode(v [3]float64) color.NRGBA
}

var _ Model = Space{}

type Space struct {
	name   string
	encode func(c color.Color) [3]float64
	decode func(v [3]float64) color.NRGBA
}

func (s Space) Name() string { return s.name }

func (s Space) Encode(c color.Color) [3]float64 { return s.encode(c) }

func (s Space) Decode(v [3]float64) color.NRGBA { return s.decode(v) }

// Black returns the encoding of pure black.
func Black(m Model) [3]float64 { return m.Encode(color.Black) }

// White returns the encoding of pure white.
func White(m Model) [3]float64 { return m.Encode(color.White) }

// EncodeBatch encodes pixels into out, which must be at least as long.
func EncodeBatch(m Model, pixels []color.Color, out [][3]float64) {
	for i, pixel := range pixels {
		out[i] = m.Encode(pixel)
	}
}

// Lookup returns the built-in space registered under name.
func Lookup(name string) (Space, bool) {
	for _, s := range []Space{RGB, YUV, Lab} {
		if s.name == name {
			return s, true
		}
	}
	return Space{}, false
}

// Names lists the built-in spaces.
func Names() []string {
	return []string{RGB.name, YUV.name, Lab.name}
}

var RGB = Space{
	name: "rgb",
	encode: func(c color.Color) [3]float64 {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		return [3]float64{float64(n.R), float64(n.G), float64(n.B)}
	},
	decode: func(v [3]float64) color.NRGBA {
		return color.NRGBA{R: clip8(v[0]), G: clip8(v[1]), B: clip8(v[2]), A: 255}
	},
}

func clip8(v float64) uint8 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
