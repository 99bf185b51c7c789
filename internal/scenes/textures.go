package scenes

import (
	"image"
	"image/color"
	"math"
)

// VerticalGradient fades from top to bottom.
func VerticalGradient(w, h int, top, bottom color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		t := float32(y) / float32(max(h-1, 1))
		c := color.RGBA{
			R: mix8(top.R, bottom.R, t),
			G: mix8(top.G, bottom.G, t),
			B: mix8(top.B, bottom.B, t),
			A: 255,
		}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Stripes alternates a and b in horizontal bands of period pixels.
func Stripes(w, h, period int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		c := a
		if (y/max(period, 1))%2 == 1 {
			c = b
		}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Marble is veined noise between base and vein.
func Marble(w, h int, seed uint32, base, vein color.RGBA) *image.RGBA {
	n := valueNoise{seed: seed}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u, v := float32(x)/float32(w), float32(y)/float32(h)
			turb := n.FBM(u*6, v*6, 4)
			s := float32(math.Abs(math.Sin(float64((u + turb*2) * 8))))
			t := float32(math.Pow(float64(1-s), 4))
			img.SetRGBA(x, y, color.RGBA{
				R: mix8(base.R, vein.R, t),
				G: mix8(base.G, vein.G, t),
				B: mix8(base.B, vein.B, t),
				A: 255,
			})
		}
	}
	return img
}

func mix8(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t + 0.5)
}
