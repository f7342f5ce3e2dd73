package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const captionHeight = 22

// stampCaption decodes a PNG from src, appends a white strip with text along
// the bottom edge and encodes the result to w.
func stampCaption(w io.Writer, src io.Reader, text string) error {
	img, err := png.Decode(src)
	if err != nil {
		return fmt.Errorf("decoding chart png: %w", err)
	}

	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()+captionHeight))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, 0, b.Dx(), b.Dy()), img, b.Min, draw.Src)

	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(color.RGBA{R: 60, G: 60, B: 60, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, b.Dy()+captionHeight-7),
	}
	d.DrawString(text)

	if err := png.Encode(w, out); err != nil {
		return fmt.Errorf("encoding captioned png: %w", err)
	}
	return nil
}
