// Package render draws scenes to images by ray tracing analytic intersections
// or by sphere tracing signed distance fields.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"time"

	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/log"
)

var logger = log.New("render")

var (
	ErrInterrupted   = errors.New("render: interrupted while rendering")
	ErrInvalidFrame  = errors.New("render: invalid frame dimensions")
	ErrInvalidConfig = errors.New("render: invalid configuration")
)

// Config holds the frame parameters shared by both algorithms.
type Config struct {
	Width, Height int
	Mode          ShadeMode
	// Ambient is the ambient light intensity.
	Ambient float32
	// SpecularPower is the Blinn-Phong exponent for untextured surfaces.
	SpecularPower float32
	// Background colors pixels whose ray hits nothing.
	Background sdfray.Color
	// Workers is the number of rendering goroutines. Zero uses one per CPU.
	Workers int
	// Seed seeds area light sampling. Equal seeds give equal frames.
	Seed int64
}

// DefaultConfig returns a 1200x800 Phong shaded frame config with ambient 0.1,
// specular power 10 and a gray background.
func DefaultConfig() Config {
	return Config{
		Width:         1200,
		Height:        800,
		Mode:          ShadePhong,
		Ambient:       0.1,
		SpecularPower: 10,
		Background:    sdfray.Gray,
		Seed:          1,
	}
}

func (cfg Config) validate() error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidFrame, cfg.Width, cfg.Height)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, cfg.Workers)
	}
	if _, ok := ParseShadeMode(cfg.Mode.String()); !ok {
		return fmt.Errorf("%w: shade mode %d", ErrInvalidConfig, cfg.Mode)
	}
	return nil
}

// pixelFunc computes the color of the pixel whose camera ray is r.
type pixelFunc func(s *Sampler, r sdfray.Ray, stats *FrameStats) sdfray.Color

// RayTrace renders the frame seen by cam by intersecting camera rays with the objects'
// analytic shapes. Shadows are tested with [InShadow].
func RayTrace(ctx context.Context, cam sdfray.Camera, objects []sdfray.Object, lights []sdfray.Light, cfg Config) (*image.RGBA, FrameStats, error) {
	sh := &Shader{
		Mode:          cfg.Mode,
		Ambient:       cfg.Ambient,
		SpecularPower: cfg.SpecularPower,
		Lights:        lights,
		Occluder:      TraceOccluder(objects),
		Eye:           cam.Position(),
	}
	pixel := func(s *Sampler, r sdfray.Ray, stats *FrameStats) sdfray.Color {
		hit, ok := ClosestHit(r, objects)
		if !ok {
			stats.Misses++
			return cfg.Background
		}
		stats.Hits++
		return sh.HitColor(s, hit.Object, hit.Point, hit.Normal)
	}
	return renderFrame(ctx, "raytrace", cam, cfg, pixel)
}

// RayMarch renders the frame seen by cam by sphere tracing camera rays through the union of the
// objects' distance fields. Normals are estimated numerically and shadows are tested by marching.
func RayMarch(ctx context.Context, cam sdfray.Camera, objects []sdfray.Object, lights []sdfray.Light, cfg Config, m Marcher) (*image.RGBA, FrameStats, error) {
	if err := m.Validate(); err != nil {
		return nil, FrameStats{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	sh := &Shader{
		Mode:          cfg.Mode,
		Ambient:       cfg.Ambient,
		SpecularPower: cfg.SpecularPower,
		Lights:        lights,
		Occluder:      MarchOccluder{Marcher: m, Objects: objects},
		Eye:           cam.Position(),
	}
	pixel := func(s *Sampler, r sdfray.Ray, stats *FrameStats) sdfray.Color {
		res := m.March(r, objects)
		stats.MarchSteps += uint64(res.Steps)
		if res.State != Hit {
			stats.Misses++
			return cfg.Background
		}
		stats.Hits++
		n := m.Normal(res.Point, objects)
		return sh.HitColor(s, res.Object, res.Point, n)
	}
	return renderFrame(ctx, "raymarch", cam, cfg, pixel)
}

func renderFrame(ctx context.Context, mode string, cam sdfray.Camera, cfg Config, pixel pixelFunc) (*image.RGBA, FrameStats, error) {
	if err := cfg.validate(); err != nil {
		return nil, FrameStats{}, err
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, cfg.Height)
	stats := FrameStats{Mode: mode, Width: cfg.Width, Height: cfg.Height, Workers: workers}
	logger.Debugf("rendering %dx%d %s frame with %d workers", cfg.Width, cfg.Height, mode, workers)
	watch := stopwatch()

	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	rows := make(chan int, cfg.Height)
	for j := range cfg.Height {
		rows <- j
	}
	close(rows)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	invW := 1 / float32(cfg.Width)
	invH := 1 / float32(cfg.Height)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local FrameStats
			s := NewSampler(cfg.Seed)
		ROWS:
			for j := range rows {
				// Seed per row so output does not depend on which worker takes it.
				s.Rand.Seed(cfg.Seed + int64(j))
				v := (float32(j) + 0.5) * invH
				for i := range cfg.Width {
					if ctx.Err() != nil {
						break ROWS
					}
					u := (float32(i) + 0.5) * invW
					c := pixel(s, cam.Ray(u, v), &local)
					img.SetRGBA(i, j, toRGBA(c))
				}
			}
			local.ShadowRays = s.ShadowRays
			mu.Lock()
			stats.merge(local)
			mu.Unlock()
		}()
	}
	wg.Wait()
	stats.RenderTime = watch()
	if err := ctx.Err(); err != nil {
		logger.Warningf("%s frame interrupted after %s", mode, stats.RenderTime)
		return img, stats, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	logger.Infof("rendered %dx%d %s frame in %s", cfg.Width, cfg.Height, mode, stats.RenderTime)
	return img, stats, nil
}

func toRGBA(c sdfray.Color) color.RGBA {
	c = ms3.Vec{X: ms1.Clamp(c.X, 0, 1), Y: ms1.Clamp(c.Y, 0, 1), Z: ms1.Clamp(c.Z, 0, 1)}
	return color.RGBA{
		R: uint8(c.X*255 + 0.5),
		G: uint8(c.Y*255 + 0.5),
		B: uint8(c.Z*255 + 0.5),
		A: 255,
	}
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
