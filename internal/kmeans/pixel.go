package kmeans

// Color is a 3-channel color in whatever representation the caller feeds in.
// Channels are expected to be non-negative.
type Color [3]float64

// Pixel is one image coordinate with its color.
type Pixel struct {
	X, Y  int
	Color Color
}

// Centroid is the representative point of one cluster. Position may be
// fractional while iterating.
type Centroid struct {
	X, Y  float64
	Color Color
}

// Centroid promotes p to a centroid with the same position and color.
func (p Pixel) Centroid() Centroid {
	return Centroid{X: float64(p.X), Y: float64(p.Y), Color: p.Color}
}
