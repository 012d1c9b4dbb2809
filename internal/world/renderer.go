package world

import (
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/components"
	"kine3d/internal/engine"
)

const ShadowMapResolution = 2048

const (
	ShadowNear float32 = 1.0
	ShadowFar  float32 = 150.0
)

// Renderer owns the lighting shader and the shadow map pass. It draws
// whatever ModelRenderers the scene carries; the debug overlay is a
// separate pass (debugdraw.go).
type Renderer struct {
	Shader      rl.Shader
	ShadowMap   rl.RenderTexture2D
	Light       *components.DirectionalLight
	LightCamera rl.Camera3D
	MatLightVP  rl.Matrix

	coverage    float32
	initialized bool
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Initialize loads GPU resources. coverage is the world extent the shadow
// camera must cover; the light ortho is sized from it.
func (r *Renderer) Initialize(coverage float32) {
	r.coverage = coverage

	r.Shader = rl.LoadShader("assets/shaders/lighting.vs", "assets/shaders/lighting.fs")

	// Tell raylib where material maps bind; the normal map rides texture1
	locs := unsafe.Slice(r.Shader.Locs, rl.ShaderLocMapCubemap+1)
	locs[rl.ShaderLocMapNormal] = rl.GetShaderLocation(r.Shader, "texture1")

	r.ShadowMap = loadShadowmapRenderTexture(ShadowMapResolution, ShadowMapResolution)
	r.initialized = true
}

func (r *Renderer) SetLight(light *components.DirectionalLight) {
	r.Light = light
	r.updateLightCamera()
	r.updateShaderUniforms()
}

func (r *Renderer) updateLightCamera() {
	if r.Light == nil {
		return
	}
	r.LightCamera = r.Light.GetLightCamera(r.coverage + 20)
}

func (r *Renderer) updateShaderUniforms() {
	if r.Light == nil || !r.initialized {
		return
	}

	lightDirLoc := rl.GetShaderLocation(r.Shader, "lightDir")
	rl.SetShaderValue(r.Shader, lightDirLoc, []float32{r.Light.Direction.X, r.Light.Direction.Y, r.Light.Direction.Z}, rl.ShaderUniformVec3)

	lightColorLoc := rl.GetShaderLocation(r.Shader, "lightColor")
	rl.SetShaderValue(r.Shader, lightColorLoc, r.Light.GetColorFloat(), rl.ShaderUniformVec4)

	ambientLoc := rl.GetShaderLocation(r.Shader, "ambient")
	rl.SetShaderValue(r.Shader, ambientLoc, r.Light.GetAmbientFloat(), rl.ShaderUniformVec4)
}

// DrawShadowMap renders the scene depth from the light's point of view.
// Call once per frame before the main pass.
func (r *Renderer) DrawShadowMap(gameObjects []*engine.GameObject) {
	if !r.initialized || r.Light == nil {
		return
	}
	rl.BeginTextureMode(r.ShadowMap)
	rl.ClearBackground(rl.White)

	rl.BeginMode3D(r.LightCamera)

	halfSize := r.LightCamera.Fovy / 2.0
	shadowProj := rl.MatrixOrtho(
		-halfSize, halfSize,
		-halfSize, halfSize,
		ShadowNear, ShadowFar,
	)
	rl.SetMatrixProjection(shadowProj)

	lightView := rl.GetMatrixModelview()
	lightProj := rl.GetMatrixProjection()

	// Back faces into the shadow map to soften acne
	rl.SetCullFace(0)
	r.drawScene(gameObjects)
	rl.SetCullFace(1)

	rl.EndMode3D()
	rl.EndTextureMode()

	rl.Viewport(0, 0, int32(rl.GetRenderWidth()), int32(rl.GetRenderHeight()))

	r.MatLightVP = rl.MatrixMultiply(lightView, lightProj)
}

// DrawWithShadows renders the lit pass. Call inside BeginMode3D.
func (r *Renderer) DrawWithShadows(cameraPos rl.Vector3, gameObjects []*engine.GameObject) {
	if !r.initialized {
		return
	}
	viewPosLoc := rl.GetShaderLocation(r.Shader, "viewPos")
	rl.SetShaderValue(r.Shader, viewPosLoc, []float32{cameraPos.X, cameraPos.Y, cameraPos.Z}, rl.ShaderUniformVec3)

	lightVPLoc := rl.GetShaderLocation(r.Shader, "matLightVP")
	rl.SetShaderValueMatrix(r.Shader, lightVPLoc, r.MatLightVP)

	shadowMapLoc := rl.GetShaderLocation(r.Shader, "shadowMap")
	rl.EnableShader(r.Shader.ID)

	textureSlot := int32(10)
	rl.ActiveTextureSlot(textureSlot)
	rl.EnableTexture(r.ShadowMap.Depth.ID)
	rl.SetUniform(shadowMapLoc, []int32{textureSlot}, int32(rl.ShaderUniformInt), 1)

	r.drawScene(gameObjects)
}

func (r *Renderer) drawScene(gameObjects []*engine.GameObject) {
	for _, g := range gameObjects {
		if renderer := engine.GetComponent[*components.ModelRenderer](g); renderer != nil {
			renderer.Draw()
		}
	}
}

// MoveLightDir nudges the sun direction and refreshes dependent state.
func (r *Renderer) MoveLightDir(dx, dy, dz float32) {
	if r.Light == nil || !r.initialized {
		return
	}
	r.Light.MoveLightDir(dx, dy, dz)
	r.updateLightCamera()

	lightDirLoc := rl.GetShaderLocation(r.Shader, "lightDir")
	rl.SetShaderValue(r.Shader, lightDirLoc, []float32{r.Light.Direction.X, r.Light.Direction.Y, r.Light.Direction.Z}, rl.ShaderUniformVec3)
}

func (r *Renderer) Unload(gameObjects []*engine.GameObject) {
	if !r.initialized {
		return
	}
	rl.UnloadShader(r.Shader)
	rl.UnloadRenderTexture(r.ShadowMap)

	for _, g := range gameObjects {
		if renderer := engine.GetComponent[*components.ModelRenderer](g); renderer != nil {
			renderer.Unload()
		}
	}
	r.initialized = false
}

// loadShadowmapRenderTexture builds a framebuffer with only a depth
// attachment; raylib's stock render texture always adds color.
func loadShadowmapRenderTexture(width, height int32) rl.RenderTexture2D {
	target := rl.RenderTexture2D{}

	target.ID = rl.LoadFramebuffer()
	target.Texture.Width = width
	target.Texture.Height = height

	if target.ID > 0 {
		rl.EnableFramebuffer(target.ID)

		target.Depth.ID = rl.LoadTextureDepth(width, height, false)
		target.Depth.Width = width
		target.Depth.Height = height
		target.Depth.Format = 19
		target.Depth.Mipmaps = 1

		rl.FramebufferAttach(target.ID, target.Depth.ID, rl.AttachmentDepth, rl.AttachmentTexture2d, 0)

		rl.DisableFramebuffer()
	}

	return target
}
