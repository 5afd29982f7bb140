package colorspace

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Lab is CIE L*a*b* (D65) in the usual 8-bit layout: L* scaled to 0..255,
// a* and b* offset by 128.
var Lab = Space{
	name: "lab",
	encode: func(c color.Color) [3]float64 {
		col, _ := colorful.MakeColor(c)
		l, a, b := col.Lab()
		// L* of pure black comes back as a tiny negative number.
		return [3]float64{max(0, l*255), max(0, a*100+128), max(0, b*100+128)}
	},
	decode: func(v [3]float64) color.NRGBA {
		col := colorful.Lab(v[0]/255, (v[1]-128)/100, (v[2]-128)/100).Clamped()
		r, g, b := col.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}
	},
}
