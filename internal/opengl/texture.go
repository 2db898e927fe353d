package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"grid-editor/scene"
)

// UploadTexture copies a decoded texture into a new GL texture object with
// mipmaps and records the object in tex.GLID. The GL context must be
// current on the calling goroutine.
func UploadTexture(tex *scene.Texture) error {
	if tex == nil {
		return fmt.Errorf("nil texture")
	}
	if len(tex.Pixels) == 0 || len(tex.Pixels) != tex.Width*tex.Height*4 {
		return fmt.Errorf("texture %q: %d bytes for %dx%d pixels", tex.Name, len(tex.Pixels), tex.Width, tex.Height)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	setSampling(wrapParam(tex.Wrap), true)
	writePixels(tex.Pixels, tex.Width, tex.Height, false)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex.GLID = id
	return nil
}

// DeleteTexture frees a previously uploaded GPU texture and zeroes its GLID.
func DeleteTexture(tex *scene.Texture) {
	if tex == nil || tex.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.GLID)
	tex.GLID = 0
}

func wrapParam(w scene.WrapMode) int32 {
	if w == scene.WrapClamp {
		return gl.CLAMP_TO_EDGE
	}
	return gl.REPEAT
}

// setSampling configures the texture bound to TEXTURE_2D.
func setSampling(wrap int32, mipmaps bool) {
	minFilter := int32(gl.LINEAR)
	if mipmaps {
		minFilter = gl.LINEAR_MIPMAP_LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
}

// writePixels loads tightly packed RGBA8 rows into the bound texture,
// replacing the contents in place when the size is unchanged.
func writePixels(pixels []byte, width, height int, sameSize bool) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	if sameSize {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(width), int32(height),
			gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
		return
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
}
