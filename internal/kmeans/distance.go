package kmeans

// ColorDistanceSq returns the squared distance between two colors measured in
// squared-channel space: Σ (c1² - c2²)².
func ColorDistanceSq(c1, c2 Color) float64 {
	var d float64
	for i := range c1 {
		diff := c1[i]*c1[i] - c2[i]*c2[i]
		d += diff * diff
	}
	return d
}

// DistanceSq returns the squared feature distance between two points. The
// color term is divided by scale so that it is commensurate with the spatial
// term.
func DistanceSq(a, b Centroid, scale float64) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy + ColorDistanceSq(a.Color, b.Color)/scale
}

// PixelDistanceSq returns DistanceSq between a pixel and a centroid.
func PixelDistanceSq(p Pixel, c Centroid, scale float64) float64 {
	return DistanceSq(p.Centroid(), c, scale)
}
