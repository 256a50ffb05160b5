package executors

import (
	"github.com/wutthichai46/openvino/internal/hashutil"
	"github.com/wutthichai46/openvino/types/element"
	"github.com/wutthichai46/openvino/types/memory"
)

// stubAttrs is the minimal attribute type used across the framework tests.
type stubAttrs struct {
	tag int
}

func (a stubAttrs) Hash(seed uint64) uint64 {
	return hashutil.Combine(seed, uint64(a.tag))
}

func (a stubAttrs) Equal(o stubAttrs) bool { return a.tag == o.tag }

func plainDesc(t element.Type, dims ...int) *memory.Desc {
	return memory.NewDesc(t, memory.LayoutPlain, memory.Make(dims...))
}

func stubConfig(src []*memory.Desc, dst *memory.Desc) *Config[stubAttrs] {
	return &Config[stubAttrs]{
		Descs: MemoryDescArgs{Src: src, Dst: []*memory.Desc{dst}},
	}
}

// stubExecutor records lifecycle calls.
type stubExecutor struct {
	impl     ImplType
	updates  int
	executes int
}

func (e *stubExecutor) Update(MemoryDescArgs, memory.Args) error {
	e.updates++
	return nil
}

func (e *stubExecutor) Execute(memory.Args) error {
	e.executes++
	return nil
}

func (e *stubExecutor) ImplType() ImplType { return e.impl }

// stubImpl builds an implementation whose predicates are fixed booleans and
// whose compliance check always passes.
func stubImpl(name string, backend BackendType, op OperationKind, tolerance ShapeTolerance,
	supported, suitable bool, created *int) *Implementation[stubAttrs] {
	return NewImplementation(
		name,
		ImplRef,
		backend,
		op,
		tolerance,
		func(*Config[stubAttrs]) bool { return supported },
		func(cfg *Config[stubAttrs]) (bool, *Config[stubAttrs]) { return true, cfg },
		func(*Config[stubAttrs]) bool { return suitable },
		func(*Config[stubAttrs], memory.Args, *Context) (Executor, error) {
			if created != nil {
				*created++
			}
			return &stubExecutor{impl: ImplRef}, nil
		},
	)
}
