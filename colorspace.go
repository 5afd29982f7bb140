package colorsample

import (
	"fmt"
	"image/color"

	"github.com/yyyoichi/colorsample/internal/colorspace"
)

// ColorSpace maps display colors to the three channels pixels are clustered
// in. Encode must return non-negative channels: centroid colors are averaged
// as a root mean square.
//
// Name identifies the space in a Batch cache, so distinct spaces must have
// distinct names.
type ColorSpace interface {
	Name() string
	Encode(c color.Color) [3]float64
	// Decode rounds and clamps into the displayable range.
	Decode(v [3]float64) color.NRGBA
}

var (
	RGB ColorSpace = colorspace.RGB
	YUV ColorSpace = colorspace.YUV
	Lab ColorSpace = colorspace.Lab
)

// ColorSpaceByName returns the built-in space called name ("rgb", "yuv" or "lab").
func ColorSpaceByName(name string) (ColorSpace, error) {
	s, ok := colorspace.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownColorSpace, name, colorspace.Names())
	}
	return s, nil
}
