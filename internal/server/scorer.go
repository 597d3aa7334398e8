package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"math"
)

// Scorer produces classification scores and saliency overlays.
type Scorer interface {
	Score(name string, data []byte) (score float64, class int, gradcam string, err error)
}

// stubScorer is a deterministic stand-in for a trained model. The score
// is derived from a digest of the image bytes so repeated uploads of
// the same file always classify the same way.
type stubScorer struct{}

func NewStubScorer() Scorer { return stubScorer{} }

func (stubScorer) Score(name string, data []byte) (float64, int, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("decode %s: %w", name, err)
	}

	sum := sha256.Sum256(data)
	score := float64(binary.BigEndian.Uint32(sum[:4])) / float64(math.MaxUint32)
	class := 0
	if score > 0.5 {
		class = 1
	}

	gradcam, err := saliencyDataURI(img, sum)
	if err != nil {
		return 0, 0, "", fmt.Errorf("render saliency for %s: %w", name, err)
	}
	return score, class, gradcam, nil
}

// saliencyDataURI paints a heat overlay onto a downscaled copy of the
// source image and returns it as a base64 JPEG data URI.
func saliencyDataURI(src image.Image, seed [32]byte) (string, error) {
	const size = 224
	dst := image.NewRGBA(image.Rect(0, 0, size, size))

	sb := src.Bounds()
	// Hotspot position comes from the digest so the overlay is stable.
	cx := float64(seed[4]) / 255 * size
	cy := float64(seed[5]) / 255 * size
	radius := size/4 + float64(seed[6])/255*size/4

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			sx := sb.Min.X + x*sb.Dx()/size
			sy := sb.Min.Y + y*sb.Dy()/size
			r, g, b, _ := src.At(sx, sy).RGBA()

			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			heat := math.Max(0, 1-d/radius)

			dst.SetRGBA(x, y, color.RGBA{
				R: blend(uint8(r>>8), 255, heat),
				G: blend(uint8(g>>8), 64, heat*0.6),
				B: uint8(float64(b>>8) * (1 - heat*0.7)),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func blend(base, target uint8, t float64) uint8 {
	return uint8(float64(base)*(1-t) + float64(target)*t)
}
