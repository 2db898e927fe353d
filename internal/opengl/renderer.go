package opengl

import (
	"fmt"
	"image"
	"strings"
	"unsafe"

	"fortio.org/log"
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"grid-editor/core"
	"grid-editor/math"
	"grid-editor/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program uint32

	mvpLoc   int32
	modelLoc int32

	ambientColorLoc  int32
	lightDirLoc      int32
	lightRadianceLoc int32

	matAlbedoLoc   int32
	unlitLoc       int32
	doubleSidedLoc int32
	hasTextureLoc  int32
	albedoTexLoc   int32

	gpuMeshes map[*scene.Mesh]*GPUMesh
	textures  map[*scene.Texture]struct{}
	overlay   *Overlay

	viewportW, viewportH int32
}

// NewRenderer initialises OpenGL.
// Must be called after the GLFW window context is made current.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Infof("OpenGL version: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("main shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r := &Renderer{
		program: prog,

		mvpLoc:   gl.GetUniformLocation(prog, gl.Str("mvp\x00")),
		modelLoc: gl.GetUniformLocation(prog, gl.Str("model\x00")),

		ambientColorLoc:  gl.GetUniformLocation(prog, gl.Str("ambientColor\x00")),
		lightDirLoc:      gl.GetUniformLocation(prog, gl.Str("lightDir\x00")),
		lightRadianceLoc: gl.GetUniformLocation(prog, gl.Str("lightRadiance\x00")),

		matAlbedoLoc:   gl.GetUniformLocation(prog, gl.Str("matAlbedo\x00")),
		unlitLoc:       gl.GetUniformLocation(prog, gl.Str("unlit\x00")),
		doubleSidedLoc: gl.GetUniformLocation(prog, gl.Str("doubleSided\x00")),
		hasTextureLoc:  gl.GetUniformLocation(prog, gl.Str("hasTexture\x00")),
		albedoTexLoc:   gl.GetUniformLocation(prog, gl.Str("albedoTex\x00")),

		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
		textures:  make(map[*scene.Texture]struct{}),
	}

	gl.UseProgram(prog)
	gl.Uniform1i(r.albedoTexLoc, 0)

	ov, err := newOverlay()
	if err != nil {
		gl.DeleteProgram(prog)
		return nil, fmt.Errorf("overlay: %w", err)
	}
	r.overlay = ov
	return r, nil
}

// SetViewport resizes the OpenGL viewport, in framebuffer pixels.
func (r *Renderer) SetViewport(width, height int) {
	r.viewportW = int32(width)
	r.viewportH = int32(height)
	gl.Viewport(0, 0, int32(width), int32(height))
}

// BeginFrame clears the framebuffer and sets the per-frame lighting.
// ambient is the summed ambient radiance; light may be nil.
func (r *Renderer) BeginFrame(background, ambient core.Color, light *scene.Light) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
	gl.ClearColor(background.R, background.G, background.B, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.Uniform3f(r.ambientColorLoc, ambient.R, ambient.G, ambient.B)

	dir := math.Vec3Up
	var radiance core.Color
	if light != nil {
		dir = light.Direction.Normalize()
		radiance = light.Radiance()
	}
	gl.Uniform3f(r.lightDirLoc, dir.X, dir.Y, dir.Z)
	gl.Uniform3f(r.lightRadianceLoc, radiance.R, radiance.G, radiance.B)
}

// DrawMesh draws a mesh with the given MVP and model matrices, shaded by
// its material.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, mvp, model math.Mat4) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, (*float32)(unsafe.Pointer(&mvp[0][0])))
	gl.UniformMatrix4fv(r.modelLoc, 1, false, (*float32)(unsafe.Pointer(&model[0][0])))

	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}
	r.applyMaterial(mat)

	primitive := uint32(gl.TRIANGLES)
	if mesh.DrawMode == scene.DrawLines {
		primitive = gl.LINES
	}

	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(primitive, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(primitive, 0, int32(len(mesh.Vertices)))
	}
	gl.BindVertexArray(0)
}

// applyMaterial sets the material uniforms and the blend, cull and depth
// state. Textures decoded off-thread are uploaded here on first use.
func (r *Renderer) applyMaterial(mat *scene.Material) {
	a := mat.Albedo
	gl.Uniform4f(r.matAlbedoLoc, a.R, a.G, a.B, a.A)
	gl.Uniform1i(r.unlitLoc, boolToInt(mat.Unlit))
	gl.Uniform1i(r.doubleSidedLoc, boolToInt(mat.DoubleSided))

	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
	if mat.Transparent {
		gl.Enable(gl.BLEND)
		gl.DepthMask(false)
	} else {
		gl.Disable(gl.BLEND)
		gl.DepthMask(true)
	}

	tex := mat.AlbedoTexture
	if tex != nil && tex.GLID == 0 {
		if err := UploadTexture(tex); err != nil {
			log.Errf("Error uploading texture %s: %v", tex.Name, err)
			mat.AlbedoTexture = nil
			tex = nil
		} else {
			r.textures[tex] = struct{}{}
		}
	}
	if tex != nil {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
		gl.Uniform1i(r.hasTextureLoc, 1)
	} else {
		gl.Uniform1i(r.hasTextureLoc, 0)
	}
}

// EndScene restores the state the overlay and the next frame expect.
func (r *Renderer) EndScene() {
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.Disable(gl.CULL_FACE)
}

// DrawOverlay draws an RGBA image into dst, in framebuffer pixels from the
// top-left corner. The texture is re-uploaded only when version changes.
func (r *Renderer) DrawOverlay(img *image.RGBA, version uint64, dst image.Rectangle) {
	if img == nil {
		return
	}
	b := img.Bounds()
	r.overlay.draw(img.Pix, b.Dx(), b.Dy(), version, dst, r.viewportW, r.viewportH)
}

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.HasIndices {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	for tex := range r.textures {
		DeleteTexture(tex)
	}
	r.textures = nil
	if r.overlay != nil {
		r.overlay.destroy()
	}
	gl.DeleteProgram(r.program)
}

// MeshCount is the number of meshes resident on the GPU.
func (r *Renderer) MeshCount() int {
	return len(r.gpuMeshes)
}

// ensureUploaded uploads vertex/index data if not already done.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		size   int32
		offset uintptr
	}{
		{3, unsafe.Offsetof(v.Position)},
		{3, unsafe.Offsetof(v.Normal)},
		{2, unsafe.Offsetof(v.UV)},
		{4, unsafe.Offsetof(v.Color)},
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), a.size, gl.FLOAT, false, stride, gl.PtrOffset(int(a.offset)))
	}

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
			len(mesh.Indices)*4,
			gl.Ptr(mesh.Indices),
			gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		info := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(info))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", info)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		info := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(info))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", info)
	}
	return shader, nil
}
