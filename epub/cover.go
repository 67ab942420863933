package epub

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Cover dimensions: fixed 2:3 aspect ratio expected by e-reader shelves.
const (
	coverWidth  = 600
	coverHeight = 900
)

var (
	coverBackground = color.RGBA{R: 0x2b, G: 0x3a, B: 0x55, A: 0xff}
	coverInk        = color.RGBA{R: 0xf5, G: 0xf0, B: 0xe8, A: 0xff}
)

// Cover produces the cover raster as JPEG bytes. When showText is set the
// title and author are drawn onto it; otherwise it is a plain field. The
// exact pixel layout carries no interoperability weight and may change.
func Cover(meta Metadata, showText bool) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, coverWidth, coverHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(coverBackground), image.Point{}, draw.Src)

	if showText {
		face := basicfont.Face7x13
		drawer := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(coverInk),
			Face: face,
		}

		y := coverHeight / 3
		for _, line := range wrapCoverText(meta.Title, face, coverWidth-80) {
			drawCentered(drawer, line, y)
			y += face.Metrics().Height.Ceil() + 6
		}
		if meta.Author != "" {
			y += 40
			drawCentered(drawer, meta.Author, y)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encoding cover: %w", err)
	}
	return buf.Bytes(), nil
}

func drawCentered(d *font.Drawer, text string, y int) {
	width := d.MeasureString(text).Ceil()
	x := (coverWidth - width) / 2
	if x < 0 {
		x = 0
	}
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

// wrapCoverText greedily wraps text into lines that fit maxWidth pixels.
func wrapCoverText(text string, face font.Face, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	d := &font.Drawer{Face: face}
	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		candidate := current + " " + w
		if d.MeasureString(candidate).Ceil() > maxWidth {
			lines = append(lines, current)
			current = w
			continue
		}
		current = candidate
	}
	return append(lines, current)
}
