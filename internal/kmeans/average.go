package kmeans

import (
	"errors"
	"math"
)

var ErrEmptyCluster = errors.New("cannot average an empty set of pixels")

type AverageStore struct {
	sum   float64
	count int
}

func (s *AverageStore) Add(value float64) {
	s.sum += value
	s.count += 1
}

func (s *AverageStore) Average() float64 { return s.sum / float64(s.count) }

func (s *AverageStore) Count() int { return s.count }


// clusterStore accumulates the centroid of one cluster in a single pass.
// Color channels are accumulated squared; see ColorAverage.
type clusterStore struct {
	x, y AverageStore
	sq   [3]AverageStore
}

func (s *clusterStore) add(p Pixel) {
	s.x.Add(float64(p.X))
	s.y.Add(float64(p.Y))
	for i, c := range p.Color {
		s.sq[i].Add(c * c)
	}
}

func (s *clusterStore) count() int { return s.x.Count() }

func (s *clusterStore) centroid() Centroid {
	var c Centroid
	c.X = s.x.Average()
	c.Y = s.y.Average()
	for i := range s.sq {
		c.Color[i] = math.Trunc(math.Sqrt(s.sq[i].Average()))
	}
	return c
}

// ColorAverage returns, per channel, the truncated root mean square of the
// channel values. It is the centroid of the squared-channel metric used by
// ColorDistanceSq. An empty input yields the zero color.
func ColorAverage(colors []Color) Color {
	var sq [3]AverageStore
	for _, c := range colors {
		for i := range c {
			sq[i].Add(c[i] * c[i])
		}
	}
	var avg Color
	if len(colors) == 0 {
		return avg
	}
	for i := range sq {
		avg[i] = math.Trunc(math.Sqrt(sq[i].Average()))
	}
	return avg
}

// PixelAverage returns the arithmetic mean position and the ColorAverage of
// pixels.
func PixelAverage(pixels []Pixel) (Centroid, error) {
	if len(pixels) == 0 {
		return Centroid{}, ErrEmptyCluster
	}
	var s clusterStore
	for _, p := range pixels {
		s.add(p)
	}
	return s.centroid(), nil
}
