package executors

import "github.com/wutthichai46/openvino/types/memory"

// ImplType identifies the concrete kernel flavor an Executor dispatches to.
// It is also the unit of the user-configurable implementation priority list
// (see Context.ImplPriorities).
type ImplType int32

const (
	ImplUndefined ImplType = iota

	// ImplUnknown is a priority-list wildcard: it precedes everything.
	ImplUnknown

	// ImplGemmPacked is the shape-agnostic GEMM with pre-packed weights.
	ImplGemmPacked

	// ImplConv1x1 reinterprets a fully-connected operation as a 1x1
	// convolution.
	ImplConv1x1

	// ImplGemmBlocked is the cache-blocked GEMM.
	ImplGemmBlocked

	// ImplGraph is a fallback decomposition wrapping another executor.
	ImplGraph

	// ImplRef is the generic reference path.
	ImplRef
)

var implTypeNames = [...]string{
	ImplUndefined:   "undefined",
	ImplUnknown:     "unknown",
	ImplGemmPacked:  "gemm_packed",
	ImplConv1x1:     "conv_1x1",
	ImplGemmBlocked: "gemm_blocked",
	ImplGraph:       "graph",
	ImplRef:         "ref",
}

// String implements fmt.Stringer.
func (t ImplType) String() string {
	if t < 0 || int(t) >= len(implTypeNames) {
		return "invalid"
	}
	return implTypeNames[t]
}

// DefaultImplPriority is the built-in preference order among kernel
// flavors, best first. An execution context may override it.
func DefaultImplPriority() []ImplType {
	return []ImplType{
		ImplUnknown,
		ImplGemmPacked,
		ImplConv1x1,
		ImplGemmBlocked,
		ImplRef,
	}
}

// Executor is a compiled, shape-and-precision-bound compute object. It is
// owned by the factory that made it; handles may be shared freely, there is
// no implied copy of compiled state.
type Executor interface {
	// Update rebinds the executor to new descriptors and buffers. It is
	// called at least once before the first Execute, and again on every
	// shape change.
	Update(descs MemoryDescArgs, mem memory.Args) error

	// Execute runs the kernel over the given buffers.
	Execute(mem memory.Args) error

	// ImplType reports which kernel flavor ended up running.
	ImplType() ImplType
}
