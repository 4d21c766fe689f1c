//go:build !tinygo && cgo

package sdfaux

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/sdfray/log"
)

var logger = log.New("view")

const vertexSource = `#version 460
in vec2 aPos;
out vec2 vTexCoord;
void main() {
    vTexCoord = aPos * 0.5 + 0.5;
    gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

// Image rows are stored top to bottom.
const fragmentSource = `#version 460
in vec2 vTexCoord;
out vec4 fragColor;
uniform sampler2D uFrame;
void main() {
    fragColor = texture(uFrame, vec2(vTexCoord.x, 1.0 - vTexCoord.y));
}
` + "\x00"

type frameResult struct {
	img  *image.RGBA
	mode ViewMode
	err  error
	took time.Duration
}

func ui(cfg ViewConfig) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	window, term, err := startGLFW(cfg.Width, cfg.Height, cfg.Title)
	if err != nil {
		return err
	}
	defer term()
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vertexSource,
		Fragment: fragmentSource,
	})
	if err != nil {
		return err
	}
	prog.Bind()
	defer prog.Delete()

	// Define a quad covering the screen
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	vertices := []float32{
		-1.0, -1.0,
		1.0, -1.0,
		-1.0, 1.0,
		-1.0, 1.0,
		1.0, -1.0,
		1.0, 1.0,
	}
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)
	posAttrib, err := prog.AttribLocation("aPos\x00")
	if err != nil {
		return err
	}
	gl.EnableVertexAttribArray(posAttrib)
	gl.VertexAttribPointer(posAttrib, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
	frameUniform, err := prog.UniformLocation("uFrame\x00")
	if err != nil {
		return err
	}
	gl.Uniform1i(frameUniform, 0)

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	ctx, cancel := context.WithCancel(cfg.Context)
	defer cancel()
	results := make(chan frameResult, 1)
	var cancelFrame context.CancelFunc = func() {}
	request := func(mode ViewMode) {
		cancelFrame()
		var frameCtx context.Context
		frameCtx, cancelFrame = context.WithCancel(ctx)
		logger.Infof("rendering %s frame", mode)
		go func() {
			start := time.Now()
			img, err := cfg.Render(frameCtx, mode)
			res := frameResult{img: img, mode: mode, err: err, took: time.Since(start)}
			select {
			case results <- res:
			case <-frameCtx.Done():
			}
		}()
	}
	defer func() { cancelFrame() }()

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyR:
			request(ViewTrace)
		case glfw.KeyM:
			request(ViewMarch)
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		}
	})

	if cfg.Pick != nil {
		window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
			if button != glfw.MouseButtonLeft || action != glfw.Press {
				return
			}
			x, y := w.GetCursorPos()
			width, height := w.GetSize()
			if width <= 0 || height <= 0 {
				return
			}
			logger.Noticef("picked %s", cfg.Pick(float32(x)/float32(width), float32(y)/float32(height)))
		})
	}

	request(cfg.Mode)
	var texW, texH int
	for !window.ShouldClose() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-results:
			if res.err != nil {
				if errors.Is(res.err, context.Canceled) {
					continue
				}
				return fmt.Errorf("rendering %s frame: %w", res.mode, res.err)
			}
			logger.Infof("%s frame ready in %s", res.mode, res.took)
			bb := res.img.Bounds()
			pix := rgbaPixels(res.img)
			if bb.Dx() != texW || bb.Dy() != texH {
				texW, texH = bb.Dx(), bb.Dy()
				gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(texW), int32(texH), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
			} else {
				gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(texW), int32(texH), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
			}
		default:
		}
		width, height := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(width), int32(height))
		gl.ClearColor(0.0, 0.0, 0.0, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		if texW > 0 {
			prog.Bind()
			gl.BindVertexArray(vao)
			gl.DrawArrays(gl.TRIANGLES, 0, 6)
		}
		window.SwapBuffers()
		time.Sleep(time.Second / 60)
		glfw.PollEvents()
	}
	return nil
}

func startGLFW(width, height int, title string) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err = glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	return window, glfw.Terminate, nil
}
