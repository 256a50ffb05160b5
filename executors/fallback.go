package executors

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/wutthichai46/openvino/types/memory"
)

// GraphEmitter builds the fallback decomposition: a substitute executor
// that accepts memory matching the originally requested config, converts it
// to the coerced config's precision/layout where required, executes the
// coerced operation, and converts the result back.
//
// The Ensure* methods are build-time compliance assertions. Coercion is a
// pure precision/layout projection; if the requested and coerced configs
// disagree on anything else, silently proceeding would change numerical
// results rather than just performance, so any mismatch panics.
type GraphEmitter[A Attrs[A]] struct {
	requested *Config[A]
	coerced   *Config[A]
	mem       memory.Args
	ctx       *Context
	name      string

	inner Executor
	err   error
}

// NewGraphEmitter starts a fallback build for the requested config.
func NewGraphEmitter[A Attrs[A]](requested *Config[A], mem memory.Args, ctx *Context, name string) *GraphEmitter[A] {
	return &GraphEmitter[A]{requested: requested, mem: mem, ctx: ctx, name: name}
}

// CreateGraph instantiates the coerced operation through create and records
// the coerced config for the compliance assertions.
func (g *GraphEmitter[A]) CreateGraph(coerced *Config[A], create func(*Config[A]) (Executor, error)) *GraphEmitter[A] {
	g.coerced = coerced
	g.inner, g.err = create(coerced)
	if g.err != nil {
		g.err = errors.Wrapf(g.err, "fallback for %q: creating coerced executor", g.name)
	}
	return g
}

// EnsureAttrsMatch asserts the coercion kept the operation attributes.
func (g *GraphEmitter[A]) EnsureAttrsMatch() *GraphEmitter[A] {
	if !g.requested.Attrs.Equal(g.coerced.Attrs) {
		exceptions.Panicf("fallback for %q: attribute mismatch between requested and coerced configs", g.name)
	}
	return g
}

// EnsureSrcDescsMatch asserts the coercion kept every source shape and the
// source port count.
func (g *GraphEmitter[A]) EnsureSrcDescsMatch() *GraphEmitter[A] {
	if len(g.requested.Descs.Src) != len(g.coerced.Descs.Src) {
		exceptions.Panicf("fallback for %q: source port count changed by coercion", g.name)
	}
	for i, req := range g.requested.Descs.Src {
		if !req.Shape().Equal(g.coerced.Descs.Src[i].Shape()) {
			exceptions.Panicf("fallback for %q: source %d shape changed by coercion: %s vs %s",
				g.name, i, req, g.coerced.Descs.Src[i])
		}
	}
	return g
}

// EnsureDstDescsMatch asserts the coercion kept every destination shape and
// the destination port count.
func (g *GraphEmitter[A]) EnsureDstDescsMatch() *GraphEmitter[A] {
	if len(g.requested.Descs.Dst) != len(g.coerced.Descs.Dst) {
		exceptions.Panicf("fallback for %q: destination port count changed by coercion", g.name)
	}
	for i, req := range g.requested.Descs.Dst {
		if !req.Shape().Equal(g.coerced.Descs.Dst[i].Shape()) {
			exceptions.Panicf("fallback for %q: destination %d shape changed by coercion: %s vs %s",
				g.name, i, req, g.coerced.Descs.Dst[i])
		}
	}
	return g
}

// EnsurePostOpsMatch asserts the coercion kept the fused post-operations.
func (g *GraphEmitter[A]) EnsurePostOpsMatch() *GraphEmitter[A] {
	if !g.requested.PostOps.Equal(g.coerced.PostOps) {
		exceptions.Panicf("fallback for %q: post-ops mismatch between requested and coerced configs", g.name)
	}
	return g
}

// Emit finishes the build and returns the substitute executor.
func (g *GraphEmitter[A]) Emit() (Executor, error) {
	if g.err != nil {
		return nil, g.err
	}
	klog.V(2).Infof("emitting fallback graph for %q", g.name)
	return &fallbackExecutor{
		requested: g.requested.Descs,
		coerced:   g.coerced.Descs,
		inner:     g.inner,
	}, nil
}

func srcArg(port int) memory.Arg {
	switch port {
	case 0:
		return memory.ArgSrc
	case 1:
		return memory.ArgWei
	default:
		return memory.ArgBias
	}
}

// fallbackExecutor is the emitted decomposition: per-port precision
// conversion around an executor compiled for the coerced descriptors.
type fallbackExecutor struct {
	requested MemoryDescArgs
	coerced   MemoryDescArgs
	inner     Executor

	// scratch buffers per converted source port, plus the converted
	// destination. Nil entries mean the port passes through untouched.
	srcScratch []*memory.Buffer
	dstScratch *memory.Buffer
}

// Update implements Executor: it re-allocates conversion scratch for the
// current shapes and rebinds the inner executor.
func (e *fallbackExecutor) Update(descs MemoryDescArgs, mem memory.Args) error {
	e.srcScratch = make([]*memory.Buffer, len(descs.Src))
	inner := memory.Args{}

	for i, desc := range descs.Src {
		arg := srcArg(i)
		coerced := e.coerced.Src[i]
		if desc.Equal(coerced) {
			inner[arg] = mem[arg]
			continue
		}
		e.srcScratch[i] = memory.NewBuffer(coerced.CloneWithDims(desc.Shape().Dimensions))
		inner[arg] = e.srcScratch[i]
	}

	dstDesc := descs.Dst[0]
	if dstDesc.Equal(e.coerced.Dst[0]) {
		e.dstScratch = nil
		inner[memory.ArgDst] = mem[memory.ArgDst]
	} else {
		e.dstScratch = memory.NewBuffer(e.coerced.Dst[0].CloneWithDims(dstDesc.Shape().Dimensions))
		inner[memory.ArgDst] = e.dstScratch
	}

	return e.inner.Update(e.coercedWithDims(descs), inner)
}

// coercedWithDims rebinds the coerced descriptors to the concrete dims of
// the descriptors Update was called with, so a dynamic-shaped coercion
// follows the actual shapes.
func (e *fallbackExecutor) coercedWithDims(descs MemoryDescArgs) MemoryDescArgs {
	out := MemoryDescArgs{
		Src: make([]*memory.Desc, len(e.coerced.Src)),
		Dst: make([]*memory.Desc, len(e.coerced.Dst)),
	}
	for i, c := range e.coerced.Src {
		out.Src[i] = c.CloneWithDims(descs.Src[i].Shape().Dimensions)
	}
	for i, c := range e.coerced.Dst {
		out.Dst[i] = c.CloneWithDims(descs.Dst[i].Shape().Dimensions)
	}
	return out
}

// Execute implements Executor: convert in, run the coerced operation,
// convert out.
func (e *fallbackExecutor) Execute(mem memory.Args) error {
	inner := memory.Args{}
	for i := range e.coerced.Src {
		arg := srcArg(i)
		if e.srcScratch[i] == nil {
			inner[arg] = mem[arg]
			continue
		}
		if err := memory.Convert(e.srcScratch[i], mem[arg]); err != nil {
			return errors.Wrapf(err, "fallback: converting %s input", arg)
		}
		inner[arg] = e.srcScratch[i]
	}
	if e.dstScratch == nil {
		inner[memory.ArgDst] = mem[memory.ArgDst]
	} else {
		inner[memory.ArgDst] = e.dstScratch
	}

	if err := e.inner.Execute(inner); err != nil {
		return err
	}

	if e.dstScratch != nil {
		if err := memory.Convert(mem[memory.ArgDst], e.dstScratch); err != nil {
			return errors.Wrapf(err, "fallback: converting output")
		}
	}
	return nil
}

// ImplType implements Executor.
func (e *fallbackExecutor) ImplType() ImplType { return ImplGraph }
