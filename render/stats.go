package render

import "time"

// FrameStats describes the work done rendering a frame.
type FrameStats struct {
	Mode          string
	Width, Height int
	Workers       int
	// Hits and Misses count camera rays.
	Hits, Misses uint64
	// MarchSteps counts distance evaluations of camera rays when ray marching.
	MarchSteps uint64
	// ShadowRays counts light samples tested for occlusion.
	ShadowRays uint64
	RenderTime time.Duration
}

func (fs *FrameStats) merge(other FrameStats) {
	fs.Hits += other.Hits
	fs.Misses += other.Misses
	fs.MarchSteps += other.MarchSteps
	fs.ShadowRays += other.ShadowRays
}

// Pixels returns the number of pixels rendered.
func (fs FrameStats) Pixels() uint64 {
	return fs.Hits + fs.Misses
}

// HitPercent returns the percentage of camera rays that hit a surface.
func (fs FrameStats) HitPercent() float32 {
	total := fs.Pixels()
	if total == 0 {
		return 0
	}
	return float32(10000*fs.Hits/total) / 100
}
