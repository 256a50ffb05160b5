package executors

import "github.com/wutthichai46/openvino/types/memory"

// ShapeTolerance tells whether an implementation's applicability can be
// decided without knowing concrete tensor shapes.
type ShapeTolerance int32

const (
	// ShapeAgnostic implementations are selectable for any shapes once
	// their support predicate holds. Accepting one during filtering
	// shadows every lower-priority candidate.
	ShapeAgnostic ShapeTolerance = iota

	// ShapeDependent implementations additionally consult a shape
	// heuristic at selection time.
	ShapeDependent
)

// String implements fmt.Stringer.
func (t ShapeTolerance) String() string {
	if t == ShapeAgnostic {
		return "agnostic"
	}
	return "dependent"
}

// BackendType identifies the kernel library an implementation dispatches
// into. Together with OperationKind it keys the factory's backend-shell
// memoization.
type BackendType int32

const (
	BackendUndefined BackendType = iota

	// BackendGemm is the plain pure-Go GEMM library.
	BackendGemm

	// BackendBlocked is the cache-blocked kernel library.
	BackendBlocked
)

var backendTypeNames = [...]string{
	BackendUndefined: "undefined",
	BackendGemm:      "gemm",
	BackendBlocked:   "blocked",
}

// String implements fmt.Stringer.
func (t BackendType) String() string {
	if t < 0 || int(t) >= len(backendTypeNames) {
		return "invalid"
	}
	return backendTypeNames[t]
}

// OperationKind is the algebraic operation an implementation realizes.
type OperationKind int32

const (
	OpUndefined OperationKind = iota
	OpMatMul
	OpFullyConnected
	OpConvolution
)

var operationKindNames = [...]string{
	OpUndefined:      "undefined",
	OpMatMul:         "matmul",
	OpFullyConnected: "fullyconnected",
	OpConvolution:    "convolution",
}

// String implements fmt.Stringer.
func (k OperationKind) String() string {
	if k < 0 || int(k) >= len(operationKindNames) {
		return "invalid"
	}
	return operationKindNames[k]
}

// Implementation is one candidate compute strategy for an operation kind: a
// bundle of predicates plus a constructor. Implementations are plain data,
// registered once per operation kind in fixed priority order (highest
// first) and immutable afterwards; stub predicates make them directly
// testable.
type Implementation[A Attrs[A]] struct {
	name        string
	implType    ImplType
	backendType BackendType
	opKind      OperationKind
	tolerance   ShapeTolerance

	isSupported      func(*Config[A]) bool
	isFullyCompliant func(*Config[A]) (bool, *Config[A])
	isShapeSuitable  func(*Config[A]) bool
	create           func(*Config[A], memory.Args, *Context) (Executor, error)
}

// NewImplementation assembles an implementation record. Any predicate may
// be nil; see the corresponding method for the nil behavior.
func NewImplementation[A Attrs[A]](
	name string,
	implType ImplType,
	backendType BackendType,
	opKind OperationKind,
	tolerance ShapeTolerance,
	isSupported func(*Config[A]) bool,
	isFullyCompliant func(*Config[A]) (bool, *Config[A]),
	isShapeSuitable func(*Config[A]) bool,
	create func(*Config[A], memory.Args, *Context) (Executor, error),
) *Implementation[A] {
	return &Implementation[A]{
		name:             name,
		implType:         implType,
		backendType:      backendType,
		opKind:           opKind,
		tolerance:        tolerance,
		isSupported:      isSupported,
		isFullyCompliant: isFullyCompliant,
		isShapeSuitable:  isShapeSuitable,
		create:           create,
	}
}

// Name returns the implementation's registered name.
func (im *Implementation[A]) Name() string { return im.name }

// ImplType returns the kernel flavor the implementation advertises, matched
// against the context's priority list during filtering.
func (im *Implementation[A]) ImplType() ImplType { return im.implType }

// BackendType returns the kernel library tag.
func (im *Implementation[A]) BackendType() BackendType { return im.backendType }

// OperationKind returns the operation the implementation realizes.
func (im *Implementation[A]) OperationKind() OperationKind { return im.opKind }

// IsShapeAgnostic reports whether selection may skip the shape heuristic.
func (im *Implementation[A]) IsShapeAgnostic() bool {
	return im.tolerance == ShapeAgnostic
}

// IsSupported reports whether the implementation accepts the config's
// attributes and precisions at all. Nil predicate means unsupported.
func (im *Implementation[A]) IsSupported(cfg *Config[A]) bool {
	if im.isSupported == nil {
		return false
	}
	return im.isSupported(cfg)
}

// IsFullyCompliant checks the config against the implementation's ideal
// type/layout configuration. It returns (true, cfg) unchanged when every
// descriptor already matches, or (false, coerced) where coerced holds the
// same shapes under the ideal types and layouts. Nil check means never
// compliant, with no coercion to offer.
func (im *Implementation[A]) IsFullyCompliant(cfg *Config[A]) (bool, *Config[A]) {
	if im.isFullyCompliant == nil {
		return false, cfg
	}
	return im.isFullyCompliant(cfg)
}

// IsShapeSuitable consults the backend-specific shape heuristic. Nil
// heuristic means unsuitable.
func (im *Implementation[A]) IsShapeSuitable(cfg *Config[A]) bool {
	if im.isShapeSuitable == nil {
		return false
	}
	return im.isShapeSuitable(cfg)
}

// Create instantiates the backend shell for the config.
func (im *Implementation[A]) Create(cfg *Config[A], mem memory.Args, ctx *Context) (Executor, error) {
	return im.create(cfg, mem, ctx)
}
