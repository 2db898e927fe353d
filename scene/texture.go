package scene

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// SVGRasterWidth is the pixel width SVG textures are rasterised at; the
// height follows the viewBox aspect ratio.
const SVGRasterWidth = 512

// WrapMode says what texture coordinates outside 0..1 sample.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp           // edge texels stretch; single images like the logo
)

// Texture holds CPU-side pixel data for a 2D texture.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
	Wrap   WrapMode
	// GLID is the OpenGL texture object ID, set by opengl.UploadTexture.
	GLID uint32
}

// LoadTexture reads an image from disk. PNG, JPEG and WebP are decoded
// directly; SVG files are rasterised.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".svg") {
		tex, err := RasterizeSVG(path, f, SVGRasterWidth)
		if err != nil {
			return nil, fmt.Errorf("rasterize texture %q: %w", path, err)
		}
		return tex, nil
	}
	tex, err := DecodeTexture(path, f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return tex, nil
}

// DecodeTexture decodes any registered raster format into an RGBA8 texture.
func DecodeTexture(name string, r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return TextureFromImage(name, img), nil
}

func decodeImageBytes(name string, data []byte) (*Texture, error) {
	return DecodeTexture(name, bytes.NewReader(data))
}

// TextureFromImage copies img into a tightly packed RGBA8 texture.
func TextureFromImage(name string, img image.Image) *Texture {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return &Texture{
		Name:   name,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: rgba.Pix,
	}
}

// RasterizeSVG renders an SVG document into a transparent texture width
// pixels wide.
func RasterizeSVG(name string, r io.Reader, width int) (*Texture, error) {
	icon, err := oksvg.ReadIconStream(r, oksvg.WarnErrorMode)
	if err != nil {
		return nil, err
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, fmt.Errorf("svg %q has an empty viewBox", name)
	}
	height := int(math.Ceil(float64(width) * vh / vw))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	icon.SetTarget(0, 0, float64(width), float64(height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return TextureFromImage(name, img), nil
}
