package md

import "math"

// Vec3 is a 3-D real vector.
type Vec3 [3]float64

func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v[0] * f, v[1] * f, v[2] * f}
}

func (v Vec3) Dot(w Vec3) float64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vec3) IsValid() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// MinImage returns the separation vector corrected by the minimum-image
// convention for a cubic periodic box of edge l: any component whose
// magnitude exceeds l/2 is shifted by one box length toward zero, so the
// result measures the distance to the nearest periodic replica.
func (v Vec3) MinImage(l float64) Vec3 {
	half := l / 2
	for i, c := range v {
		if c > half {
			v[i] = c - l
		} else if c < -half {
			v[i] = c + l
		}
	}
	return v
}

// Zero3 returns a zeroed slice of n vectors.
func Zero3(n int) []Vec3 {
	return make([]Vec3, n)
}
