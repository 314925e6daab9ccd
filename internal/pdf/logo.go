package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	// register decoders for the formats users actually upload
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// ImageSource loads raw image bytes for the logo. Implementations may hit the
// filesystem or a remote store; failures are recovered by the fallback chain
// in drawLogo, never surfaced to the caller.
type ImageSource interface {
	Load(path string) ([]byte, error)
}

// FileImageSource reads logos from the local filesystem.
type FileImageSource struct{}

func (FileImageSource) Load(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("empty image path")
	}
	return os.ReadFile(path)
}

// logoMaxDim bounds the resampled logo to a square, in pixels.
const logoMaxDim = 256

// prepareLogo decodes, downscales into the square bound preserving aspect
// ratio, composites onto opaque white (transparent PNGs otherwise come out
// dark on the page) and re-encodes as PNG. This preprocessing always runs,
// even for images already within bounds, so every embedded logo has the same
// pixel format.
func prepareLogo(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("empty logo image")
	}

	w, h := b.Dx(), b.Dy()
	if w > logoMaxDim || h > logoMaxDim {
		if w >= h {
			h = h * logoMaxDim / w
			w = logoMaxDim
		} else {
			w = w * logoMaxDim / h
			h = logoMaxDim
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	return buf.Bytes(), nil
}
