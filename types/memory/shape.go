// Package memory defines the memory descriptor model consumed by the
// executor framework: shapes (static or dynamic), physical layout tags,
// immutable memory descriptors and the argument maps binding descriptors to
// actual buffers.
//
// Descriptors are owned by the surrounding graph and referenced, never
// copied, by the executor core. All types here are value types with
// structural equality; a *Desc additionally has a usable pointer identity
// (two nodes sharing an edge share the descriptor).
package memory

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
)

// DynamicDim marks an axis whose dimension is not bound yet.
const DynamicDim = -1

// Shape is the logical shape of a buffer: a list of dimensions, possibly
// dynamic. A dynamic axis holds DynamicDim in Dimensions and its bounds in
// MinDims/MaxDims (MaxDims may hold DynamicDim for an unbounded axis).
type Shape struct {
	Dimensions []int

	// MinDims and MaxDims are only set for dynamic shapes.
	MinDims []int
	MaxDims []int
}

// Make returns a static Shape with the given dimensions.
func Make(dimensions ...int) Shape {
	for _, dim := range dimensions {
		if dim < 0 {
			exceptions.Panicf("memory.Make(%v): negative dimension in a static shape", dimensions)
		}
	}
	return Shape{Dimensions: slices.Clone(dimensions)}
}

// MakeDynamic returns a Shape with per-axis bounds. Axes whose bounds
// coincide are considered bound to that dimension.
func MakeDynamic(minDims, maxDims []int) Shape {
	if len(minDims) != len(maxDims) {
		exceptions.Panicf("memory.MakeDynamic: rank mismatch between bounds %v and %v", minDims, maxDims)
	}
	dims := make([]int, len(minDims))
	for i := range minDims {
		if minDims[i] == maxDims[i] {
			dims[i] = minDims[i]
		} else {
			dims[i] = DynamicDim
		}
	}
	return Shape{
		Dimensions: dims,
		MinDims:    slices.Clone(minDims),
		MaxDims:    slices.Clone(maxDims),
	}
}

// Rank is the number of axes.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsDynamic reports whether any axis is unbound.
func (s Shape) IsDynamic() bool {
	return slices.Contains(s.Dimensions, DynamicDim)
}

// IsStatic reports whether every axis is bound to a concrete dimension.
func (s Shape) IsStatic() bool { return !s.IsDynamic() }

// Dim returns the dimension of the given axis, or DynamicDim if unbound.
func (s Shape) Dim(axis int) int { return s.Dimensions[axis] }

// Size is the number of elements of a static shape. It panics on dynamic
// shapes, whose element count is not defined.
func (s Shape) Size() int {
	if s.IsDynamic() {
		exceptions.Panicf("Shape.Size() on dynamic shape %s", s)
	}
	size := 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return size
}

// MinimumDims returns the lower-bound dimensions: the concrete dims of a
// static shape, or MinDims of a dynamic one.
func (s Shape) MinimumDims() []int {
	if s.IsStatic() {
		return s.Dimensions
	}
	return s.MinDims
}

// Equal compares two shapes structurally, bounds included.
func (s Shape) Equal(o Shape) bool {
	return slices.Equal(s.Dimensions, o.Dimensions) &&
		slices.Equal(s.MinDims, o.MinDims) &&
		slices.Equal(s.MaxDims, o.MaxDims)
}

// Clone returns a deep copy.
func (s Shape) Clone() Shape {
	return Shape{
		Dimensions: slices.Clone(s.Dimensions),
		MinDims:    slices.Clone(s.MinDims),
		MaxDims:    slices.Clone(s.MaxDims),
	}
}

// String implements fmt.Stringer: "[2 ? 64]" with "?" for dynamic axes.
func (s Shape) String() string {
	parts := make([]string, 0, s.Rank())
	for _, d := range s.Dimensions {
		if d == DynamicDim {
			parts = append(parts, "?")
		} else {
			parts = append(parts, fmt.Sprintf("%d", d))
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
