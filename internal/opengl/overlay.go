package opengl

import (
	"fmt"
	"image"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// Overlay draws a CPU-rendered RGBA image over the scene.
type Overlay struct {
	prog    uint32
	rectLoc int32
	texLoc  int32
	vao     uint32 // empty; corners come from gl_VertexID

	tex           uint32
	width, height int
	version       uint64
}

func newOverlay() (*Overlay, error) {
	prog, err := newProgram(overlayVertSrc, overlayFragSrc)
	if err != nil {
		return nil, fmt.Errorf("overlay shader: %w", err)
	}
	o := &Overlay{
		prog:    prog,
		rectLoc: gl.GetUniformLocation(prog, gl.Str("rect\x00")),
		texLoc:  gl.GetUniformLocation(prog, gl.Str("overlayTex\x00")),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(o.texLoc, 0)
	gl.GenVertexArrays(1, &o.vao)

	gl.GenTextures(1, &o.tex)
	gl.BindTexture(gl.TEXTURE_2D, o.tex)
	setSampling(gl.CLAMP_TO_EDGE, false)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return o, nil
}

func (o *Overlay) upload(pixels []byte, width, height int, version uint64) {
	if width == o.width && height == o.height && version == o.version {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, o.tex)
	writePixels(pixels, width, height, width == o.width && height == o.height)
	o.width, o.height, o.version = width, height, version
}

// draw stretches the image over dst, given in framebuffer pixels from the
// top-left corner.
func (o *Overlay) draw(pixels []byte, width, height int, version uint64, dst image.Rectangle, viewW, viewH int32) {
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 || viewW <= 0 || viewH <= 0 || dst.Empty() {
		return
	}
	o.upload(pixels, width, height, version)

	left := float32(dst.Min.X)/float32(viewW)*2 - 1
	right := float32(dst.Max.X)/float32(viewW)*2 - 1
	top := 1 - float32(dst.Min.Y)/float32(viewH)*2
	bottom := 1 - float32(dst.Max.Y)/float32(viewH)*2

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.UseProgram(o.prog)
	gl.Uniform4f(o.rectLoc, left, top, right, bottom)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, o.tex)
	gl.BindVertexArray(o.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

func (o *Overlay) destroy() {
	gl.DeleteTextures(1, &o.tex)
	gl.DeleteVertexArrays(1, &o.vao)
	gl.DeleteProgram(o.prog)
}
