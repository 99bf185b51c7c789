package scenes

import "math"

// valueNoise is seeded 2D value noise on an integer lattice.
type valueNoise struct {
	seed uint32
}

func hash2(x, y int32, seed uint32) float32 {
	h := uint32(x)*374761393 + uint32(y)*668265263 + seed*2246822519
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float32(h&0xffffff) / float32(0xffffff)
}

// fade is the quintic 6t^5 - 15t^4 + 10t^3.
func fade(t float32) float32 { return t * t * t * (t*(t*6-15) + 10) }

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// At returns noise in [0,1] at (x, y).
func (n valueNoise) At(x, y float32) float32 {
	fx, fy := float32(math.Floor(float64(x))), float32(math.Floor(float64(y)))
	ix, iy := int32(fx), int32(fy)
	tx, ty := fade(x-fx), fade(y-fy)
	a := hash2(ix, iy, n.seed)
	b := hash2(ix+1, iy, n.seed)
	c := hash2(ix, iy+1, n.seed)
	d := hash2(ix+1, iy+1, n.seed)
	return lerp(lerp(a, b, tx), lerp(c, d, tx), ty)
}

// FBM sums octaves of noise, each at double frequency and half amplitude.
// The result is normalized to [0,1].
func (n valueNoise) FBM(x, y float32, octaves int) float32 {
	var sum, amp, norm float32 = 0, 1, 0
	freq := float32(1)
	for i := 0; i < octaves; i++ {
		sum += amp * n.At(x*freq, y*freq)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
