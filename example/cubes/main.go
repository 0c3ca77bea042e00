// SPDX-License-Identifier: Unlicense OR MIT

// Command cubes renders a field of instanced, rotating cubes into a
// multisampled offscreen target and blits the result to the window.
package main

import (
	"encoding/binary"
	"log"
	"log/slog"
	"math"
	"os"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/go-gl/glfw/v3.3/glfw"

	cg "github.com/kolunmi/cpc-gpu"
)

const (
	windowWidth  = 1280
	windowHeight = 720

	gridEdge = 6
	spacing  = 3.0

	msaaSamples = 4
)

const vertexSrc = `#version 330 core
in vec3 vertexPosition;
in vec3 vertexNormal;
in vec2 vertexTexCoord;
in vec3 instanceOffset;

uniform mat4 mvp;
uniform float time;

out vec3 normal;
out vec2 texCoord;

void main() {
	float angle = time + dot(instanceOffset, vec3(0.37, 0.61, 0.23));
	float c = cos(angle);
	float s = sin(angle);
	mat3 spin = mat3(
		c, 0.0, -s,
		0.0, 1.0, 0.0,
		s, 0.0, c);
	normal = spin * vertexNormal;
	texCoord = vertexTexCoord;
	gl_Position = mvp * vec4(spin * vertexPosition + instanceOffset, 1.0);
}
`

const fragmentSrc = `#version 330 core
in vec3 normal;
in vec2 texCoord;

uniform sampler2D tex;

out vec4 fragColor;

void main() {
	float light = max(dot(normalize(normal), normalize(vec3(0.4, 0.8, 0.3))), 0.15);
	fragColor = vec4(texture(tex, texCoord).rgb * light, 1.0);
}
`

func init() {
	// GLFW event handling and the GL context are thread-bound.
	runtime.LockOSThread()
}

func main() {
	cg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := glfw.Init(); err != nil {
		log.Fatalf("glfw: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "cpc-gpu cubes", nil, nil)
	if err != nil {
		log.Fatalf("glfw: %v", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	gpu, err := cg.New(cg.InitFlagBackendOpenGL|cg.InitFlagLogErrors, glfw.GetProcAddress)
	if err != nil {
		log.Fatalf("gpu: %v", err)
	}
	if gpu == nil {
		log.Fatal("gpu: initialization refused")
	}
	defer gpu.Unref()

	gpu.StealThisThread()
	defer gpu.ReleaseThisThread()

	if renderer, err := gpu.GetInfo("renderer"); err == nil {
		log.Printf("renderer: %s", renderer)
	}

	shader := gpu.NewShader(vertexSrc, fragmentSrc)
	defer shader.Unref()

	cube := gpu.NewBufferTake(cubeVertices(), []cg.DataSegment{
		{Name: "vertexPosition", Type: cg.TypeFloat, Num: 3},
		{Name: "vertexNormal", Type: cg.TypeFloat, Num: 3},
		{Name: "vertexTexCoord", Type: cg.TypeFloat, Num: 2},
	})
	defer cube.Unref()

	offsets, instances := offsetBuffer(gpu)
	defer offsets.Unref()

	icon := gpu.NewTextureTake(checkerPixels(64), 64, 64, cg.FormatRGBA8, 1, 0)
	defer icon.Unref()

	target := gpu.NewTexture(nil, windowWidth, windowHeight, cg.FormatRGBA8, 1, msaaSamples)
	defer target.Unref()
	depth := gpu.NewDepthTexture(windowWidth, windowHeight, msaaSamples)
	defer depth.Unref()

	for !window.ShouldClose() {
		now := float32(glfw.GetTime())
		mvp := viewProjection(now)

		plan := gpu.NewPlan()
		plan.PushState(
			cg.StateDest, cg.Rect(0, 0, windowWidth, windowHeight),
			cg.StateWriteMask, cg.UInt(cg.WriteMaskColor),
		)

		plan.PushState(
			cg.StateTarget, cg.Tuple3(
				cg.TextureValue(target),
				cg.Int(int32(cg.BlendSrcAlpha)),
				cg.Int(int32(cg.BlendOneMinusSrcAlpha))),
			cg.StateTarget, cg.TextureValue(depth),
			cg.StateShader, cg.ShaderValue(shader),
			cg.StateUniform, cg.KeyVal("mvp", cg.Mat4(mvp)),
			cg.StateUniform, cg.KeyVal("time", cg.Float(now)),
			cg.StateUniform, cg.KeyVal("tex", cg.TextureValue(icon)),
			cg.StateWriteMask, cg.UInt(cg.WriteMaskAll),
			cg.StateDepthFunc, cg.Int(int32(cg.TestLEqual)),
		)
		plan.Append(instances, cube, offsets)
		plan.Pop()

		plan.Blit(target)
		plan.Pop()

		commands, err := plan.UnrefToCommands()
		if err != nil {
			log.Fatalf("compile: %v", err)
		}
		if err := commands.Dispatch(); err != nil {
			log.Fatalf("dispatch: %v", err)
		}
		commands.Unref()

		window.SwapBuffers()
		glfw.PollEvents()
	}
}

// viewProjection is a perspective projection looking down -Z from a
// slowly orbiting camera.
func viewProjection(t float32) [16]float32 {
	const (
		fov  = math32.Pi / 3
		near = 0.1
		far  = 100.0
	)
	aspect := float32(windowWidth) / float32(windowHeight)
	f := 1 / math32.Tan(fov/2)

	proj := [16]float32{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) / (near - far), -1,
		0, 0, 2 * far * near / (near - far), 0,
	}

	dist := float32(gridEdge) * spacing
	eyeX := math32.Sin(t*0.3) * dist
	eyeZ := math32.Cos(t*0.3) * dist
	view := lookAt(eyeX, dist*0.5, eyeZ)

	return mul4(proj, view)
}

// lookAt builds a view matrix from eye toward the origin with +Y up.
func lookAt(ex, ey, ez float32) [16]float32 {
	fx, fy, fz := norm3(-ex, -ey, -ez)
	sx, sy, sz := norm3(fy*0-fz*1, fz*0-fx*0, fx*1-fy*0)
	ux, uy, uz := sy*fz-sz*fy, sz*fx-sx*fz, sx*fy-sy*fx

	return [16]float32{
		sx, ux, -fx, 0,
		sy, uy, -fy, 0,
		sz, uz, -fz, 0,
		-(sx*ex + sy*ey + sz*ez), -(ux*ex + uy*ey + uz*ez), fx*ex + fy*ey + fz*ez, 1,
	}
}

func norm3(x, y, z float32) (float32, float32, float32) {
	l := math32.Sqrt(x*x + y*y + z*z)
	if l == 0 {
		return 0, 0, 0
	}
	return x / l, y / l, z / l
}

func mul4(a, b [16]float32) [16]float32 {
	var out [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// cubeVertices packs a unit cube as 36 vertices of interleaved
// position, normal and texture coordinate floats.
func cubeVertices() []byte {
	type face struct {
		normal  [3]float32
		corners [4][3]float32
	}
	faces := []face{
		{[3]float32{0, 0, 1}, [4][3]float32{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}},
	}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	var floats []float32
	for _, f := range faces {
		for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
			floats = append(floats, f.corners[i][:]...)
			floats = append(floats, f.normal[:]...)
			floats = append(floats, uvs[i][:]...)
		}
	}
	return floatBytes(floats)
}

// offsetBuffer lays the cube instances out on a centered grid.
func offsetBuffer(gpu *cg.Gpu) (*cg.Buffer, int) {
	var floats []float32
	half := float32(gridEdge-1) / 2
	for x := 0; x < gridEdge; x++ {
		for y := 0; y < gridEdge; y++ {
			for z := 0; z < gridEdge; z++ {
				floats = append(floats,
					(float32(x)-half)*spacing,
					(float32(y)-half)*spacing,
					(float32(z)-half)*spacing)
			}
		}
	}
	buf := gpu.NewBufferTake(floatBytes(floats), []cg.DataSegment{
		{Name: "instanceOffset", Type: cg.TypeFloat, Num: 3, InstanceRate: 1},
	})
	return buf, gridEdge * gridEdge * gridEdge
}

func checkerPixels(edge int) []byte {
	pixels := make([]byte, edge*edge*4)
	for y := 0; y < edge; y++ {
		for x := 0; x < edge; x++ {
			i := (y*edge + x) * 4
			if (x/8+y/8)%2 == 0 {
				pixels[i+0] = 0xe8
				pixels[i+1] = 0x6a
				pixels[i+2] = 0x17
			} else {
				pixels[i+0] = 0x20
				pixels[i+1] = 0x24
				pixels[i+2] = 0x28
			}
			pixels[i+3] = 0xff
		}
	}
	return pixels
}

func floatBytes(floats []float32) []byte {
	out := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}
