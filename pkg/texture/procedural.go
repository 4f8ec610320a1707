package texture

import "github.com/biofag/tungsten/pkg/core"

// NewCheckerboard builds a checkerboard Bitmap, alternating color1/color2
// in checkSize-pixel blocks.
func NewCheckerboard(width, height, checkSize int, color1, color2 core.Vec3) *Bitmap {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/checkSize)+(y/checkSize))%2 == 0 {
				pixels[y*width+x] = color1
			} else {
				pixels[y*width+x] = color2
			}
		}
	}
	return NewBitmap(width, height, pixels, false, true)
}

// NewUVDebug builds a Bitmap encoding U in red and V in green, useful for
// visually checking a primitive's UV parameterization.
func NewUVDebug(width, height int) *Bitmap {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			u := float64(x) / float64(width-1)
			v := float64(y) / float64(height-1)
			pixels[y*width+x] = core.NewVec3(u, v, 0)
		}
	}
	return NewBitmap(width, height, pixels, true, true)
}

// NewGradient builds a vertical gradient Bitmap from color1 (top) to
// color2 (bottom).
func NewGradient(width, height int, color1, color2 core.Vec3) *Bitmap {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height-1)
		c := color1.Multiply(1 - t).Add(color2.Multiply(t))
		for x := 0; x < width; x++ {
			pixels[y*width+x] = c
		}
	}
	return NewBitmap(width, height, pixels, true, false)
}
