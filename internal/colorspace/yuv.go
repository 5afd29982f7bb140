package colorspace

import "image/color"

// https://github.com/opencv/opencv/blob/0e88b49a53842f0f7cdc4c61b98c283be7e5057c/modules/imgproc/src/opencl/color_yuv.cl#L148-L234

const (
	yr = 0.299
	yg = 0.587
	yb = 0.114
	uf = 0.492
	vf = 0.877
)

const (
	vr = 1.140
	ug = -0.395
	vg = -0.581
	ub = 2.032
)

// U and V are shifted by their largest magnitude so they stay non-negative.
const (
	uDelta = uf * (1 - yb) * 255
	vDelta = vf * (1 - yr) * 255
)

var YUV = Space{
	name: "yuv",
	encode: func(c color.Color) [3]float64 {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		r, g, b := float64(n.R), float64(n.G), float64(n.B)

		y := yr*r + yg*g + yb*b
		return [3]float64{
			y,
			uf*(b-y) + uDelta,
			vf*(r-y) + vDelta,
		}
	},
	decode: func(v [3]float64) color.NRGBA {
		y := v[0]
		u := v[1] - uDelta
		w := v[2] - vDelta

		return color.NRGBA{
			R: clip8(y + vr*w),
			G: clip8(y + ug*u + vg*w),
			B: clip8(y + ub*u),
			A: 255,
		}
	},
}
