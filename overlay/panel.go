// Package overlay rasterises the side menu into an image the renderer draws
// as a screen-space quad. Coordinates are window coordinates with the origin
// at the top-left corner.
package overlay

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Panel lays out a vertical list of equally tall rows.
type Panel struct {
	Width     int
	RowHeight int
	Padding   int

	Background color.RGBA
	Hover      color.RGBA
	Text       color.RGBA
	Face       font.Face
}

func NewPanel(width, rowHeight int) *Panel {
	return &Panel{
		Width:      width,
		RowHeight:  rowHeight,
		Padding:    4,
		Background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Hover:      color.RGBA{R: 0xe6, G: 0xf4, B: 0xff, A: 0xff},
		Text:       color.RGBA{R: 0x1f, G: 0x1f, B: 0x1f, A: 0xff},
		Face:       basicfont.Face7x13,
	}
}

// Bounds is the panel rectangle for n rows.
func (p *Panel) Bounds(n int) image.Rectangle {
	return image.Rect(0, 0, p.Width, n*p.RowHeight+2*p.Padding)
}

// RowRect is the rectangle of row i.
func (p *Panel) RowRect(i int) image.Rectangle {
	y := p.Padding + i*p.RowHeight
	return image.Rect(p.Padding, y, p.Width-p.Padding, y+p.RowHeight)
}

// HitTest maps a point to a row index. inside reports whether the point is
// on the panel at all; row is -1 for the padding around the rows.
func (p *Panel) HitTest(x, y float64, n int) (row int, inside bool) {
	pt := image.Pt(int(x), int(y))
	if x < 0 || y < 0 || !pt.In(p.Bounds(n)) {
		return -1, false
	}
	for i := 0; i < n; i++ {
		if pt.In(p.RowRect(i)) {
			return i, true
		}
	}
	return -1, true
}

// Render draws one row per label, highlighting row hover (-1 for none).
func (p *Panel) Render(labels []string, hover int) *image.RGBA {
	img := image.NewRGBA(p.Bounds(len(labels)))
	draw.Draw(img, img.Bounds(), image.NewUniform(p.Background), image.Point{}, draw.Src)

	m := p.Face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	d := font.Drawer{Dst: img, Src: image.NewUniform(p.Text), Face: p.Face}
	for i, label := range labels {
		r := p.RowRect(i)
		if i == hover {
			draw.Draw(img, r, image.NewUniform(p.Hover), image.Point{}, draw.Src)
		}
		baseline := r.Min.Y + (p.RowHeight+ascent-descent)/2
		d.Dot = fixed.P(r.Min.X+3*p.Padding, baseline)
		d.DrawString(label)
	}
	return img
}
