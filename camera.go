package sdfray

import (
	"errors"

	"github.com/soypat/glgl/math/ms3"
)

// CameraConfig positions a pinhole camera and its view plane.
type CameraConfig struct {
	Position ms3.Vec
	LookAt   ms3.Vec
	// Up hints the vertical direction of the image. It need not be orthogonal to the view direction.
	Up ms3.Vec
	// ViewDistance is the distance from Position to the view plane.
	ViewDistance float32
	// ViewWidth and ViewHeight are the view plane's extents in world units.
	ViewWidth, ViewHeight float32
}

// DefaultCameraConfig returns a camera at (0,0,20) looking toward -Z through a
// 6x4 view plane 5 units away.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Position:     ms3.Vec{Z: 20},
		LookAt:       ms3.Vec{},
		Up:           ms3.Vec{Y: 1},
		ViewDistance: 5,
		ViewWidth:    6,
		ViewHeight:   4,
	}
}

// Camera maps image coordinates to world space rays. It is immutable.
type Camera struct {
	pos     ms3.Vec
	forward ms3.Vec
	right   ms3.Vec
	up      ms3.Vec
	dist    float32
	w, h    float32
}

// NewCamera builds a camera's orthonormal basis from cfg.
func NewCamera(cfg CameraConfig) (Camera, error) {
	if cfg.ViewDistance <= 0 || cfg.ViewWidth <= 0 || cfg.ViewHeight <= 0 {
		return Camera{}, errors.New("camera view plane distance and extents must be positive")
	}
	look := ms3.Sub(cfg.LookAt, cfg.Position)
	if ms3.Norm(look) < epstol {
		return Camera{}, errors.New("camera look-at point coincides with its position")
	}
	forward := ms3.Unit(look)
	up := cfg.Up
	if ms3.Norm(up) < epstol {
		up = ms3.Vec{Y: 1}
	}
	right := ms3.Cross(forward, up)
	if ms3.Norm(right) < 1e-4 {
		// Looking along the up hint, pick the next best axis.
		up = ms3.Vec{Z: -1}
		if absf(forward.Z) > 0.9 {
			up = ms3.Vec{Y: 1}
		}
		right = ms3.Cross(forward, up)
	}
	right = ms3.Unit(right)
	return Camera{
		pos:     cfg.Position,
		forward: forward,
		right:   right,
		up:      ms3.Cross(right, forward),
		dist:    cfg.ViewDistance,
		w:       cfg.ViewWidth,
		h:       cfg.ViewHeight,
	}, nil
}

// Position returns the camera's eye position.
func (c Camera) Position() ms3.Vec { return c.pos }

// Forward returns the unit viewing direction.
func (c Camera) Forward() ms3.Vec { return c.forward }

// ToWorld maps image coordinates u,v in [0,1] to a point on the view plane.
// u grows to the right and v grows downward so v=0 is the top image row.
func (c Camera) ToWorld(u, v float32) ms3.Vec {
	x := (u - 0.5) * c.w
	y := (0.5 - v) * c.h
	p := ms3.Add(c.pos, ms3.Scale(c.dist, c.forward))
	p = ms3.Add(p, ms3.Scale(x, c.right))
	return ms3.Add(p, ms3.Scale(y, c.up))
}

// Ray returns the ray from the camera through image coordinates u,v.
func (c Camera) Ray(u, v float32) Ray {
	return NewRay(c.pos, ms3.Sub(c.ToWorld(u, v), c.pos))
}
