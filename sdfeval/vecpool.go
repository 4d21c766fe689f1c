package sdfeval

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms3"
)

// VecPool holds reusable evaluation buffers. The zero value is ready to use.
// A VecPool is not safe for concurrent use.
type VecPool struct {
	V3    bufPool[ms3.Vec]
	Float bufPool[float32]
}

// GetVecPool extracts a *VecPool from userData, which may be a *VecPool or
// implement a VecPool() *VecPool method.
func GetVecPool(userData any) (*VecPool, error) {
	switch v := userData.(type) {
	case *VecPool:
		if v != nil {
			return v, nil
		}
	case interface{ VecPool() *VecPool }:
		if vp := v.VecPool(); vp != nil {
			return vp, nil
		}
	}
	return nil, fmt.Errorf("want *sdfeval.VecPool userData, got %T", userData)
}

// AssertAllReleased returns an error if any acquired buffer was not released.
func (vp *VecPool) AssertAllReleased() error {
	if err := vp.V3.assertAllReleased(); err != nil {
		return fmt.Errorf("V3 pool: %w", err)
	}
	if err := vp.Float.assertAllReleased(); err != nil {
		return fmt.Errorf("float pool: %w", err)
	}
	return nil
}

type bufPool[T any] struct {
	free  [][]T
	inUse int
}

// Acquire returns a buffer of length n, reusing a released one when large enough.
func (bp *bufPool[T]) Acquire(n int) []T {
	bp.inUse++
	for i, buf := range bp.free {
		if cap(buf) >= n {
			bp.free[i] = bp.free[len(bp.free)-1]
			bp.free = bp.free[:len(bp.free)-1]
			return buf[:n]
		}
	}
	return make([]T, n)
}

// Release returns buf to the pool.
func (bp *bufPool[T]) Release(buf []T) {
	if bp.inUse <= 0 {
		panic("sdfeval: release of buffer not acquired")
	}
	bp.inUse--
	bp.free = append(bp.free, buf[:0])
}

func (bp *bufPool[T]) assertAllReleased() error {
	if bp.inUse != 0 {
		return errors.New("buffers still in use")
	}
	return nil
}
