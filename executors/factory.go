package executors

import (
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"

	"github.com/wutthichai46/openvino/types/memory"
)

type factoryKey struct {
	backendType BackendType
	opKind      OperationKind
}

// Factory orchestrates executor selection and instantiation for one
// operator instance: filtering at compile time, selection plus compliance
// on every shape change, backend-shell memoization, and fallback emission.
//
// A Factory is not safe for concurrent use; one operator instance executes
// on one logical stream at a time. The kernel cache underneath (owned by
// the Context) is the only structure shared across factories.
type Factory[A Attrs[A]] struct {
	ctx             *Context
	implementations []*Implementation[A]
	suitable        []*Implementation[A]
	shells          map[factoryKey]Executor
}

// NewFactory returns a factory over the given implementation registry. The
// registry's order is its priority order, highest first.
func NewFactory[A Attrs[A]](ctx *Context, implementations []*Implementation[A]) *Factory[A] {
	return &Factory[A]{
		ctx:             ctx,
		implementations: implementations,
		shells:          make(map[factoryKey]Executor),
	}
}

// Filter narrows the registry to the implementations supporting cfg,
// preserving priority order. A non-empty priorityName restricts the walk to
// the implementation so named (operator-level user override). Once a
// shape-agnostic implementation is accepted the walk stops: no
// lower-priority candidate can ever be chosen for this config.
//
// Filter panics when nothing supports cfg: a valid registry always ends
// with a catch-all reference path, so an empty result is an operator
// misconfiguration, not a recoverable condition.
func (f *Factory[A]) Filter(cfg *Config[A], priorityName string) {
	f.suitable = f.suitable[:0]
	for _, impl := range f.implementations {
		klog.V(2).Infof("factory %s: considering implementation %q", f.ctx.ID(), impl.Name())
		if priorityName != "" && impl.Name() != priorityName {
			continue
		}
		if !implTypeAllowed(f.ctx.ImplPriorities(), impl.ImplType()) {
			klog.V(2).Infof("factory %s: implementation %q excluded by the context's priorities", f.ctx.ID(), impl.Name())
			continue
		}
		if !impl.IsSupported(cfg) {
			klog.V(2).Infof("factory %s: implementation %q does not support the config", f.ctx.ID(), impl.Name())
			continue
		}
		f.suitable = append(f.suitable, impl)
		if impl.IsShapeAgnostic() {
			klog.V(2).Infof("factory %s: implementation %q is shape agnostic, stopping", f.ctx.ID(), impl.Name())
			break
		}
	}
	if len(f.suitable) == 0 {
		exceptions.Panicf("no implementation supports the config %s", cfg)
	}
}

// implTypeAllowed reports whether the kernel flavor passes the priority
// list. An empty list or a list containing ImplUnknown admits everything.
func implTypeAllowed(priorities []ImplType, t ImplType) bool {
	if len(priorities) == 0 {
		return true
	}
	for _, p := range priorities {
		if p == ImplUnknown || p == t {
			return true
		}
	}
	return false
}

// PreconfigureMemoryDescriptors reports the descriptors the eventual
// backend will require for cfg, letting the node lifecycle negotiate
// layouts with neighboring operations before any kernel exists.
func (f *Factory[A]) PreconfigureMemoryDescriptors(cfg *Config[A]) MemoryDescArgs {
	impl := f.selectImpl(cfg)
	compliant, coerced := impl.IsFullyCompliant(cfg)
	if compliant {
		return cfg.Descs
	}
	return coerced.Descs
}

// Preconfigure eagerly builds the backend shell (and, transitively, warms
// the kernel cache) for cfg ahead of the first Make.
func (f *Factory[A]) Preconfigure(cfg *Config[A], mem memory.Args) error {
	impl := f.selectImpl(cfg)
	compliant, coerced := impl.IsFullyCompliant(cfg)
	if compliant {
		_, err := f.create(impl, cfg, mem)
		return err
	}
	_, err := f.create(impl, coerced, mem)
	return err
}

// Make returns the executor for cfg: the best-priority shape-suitable
// implementation if it is fully compliant (bound to the current shapes via
// Update), or a fallback decomposition otherwise.
func (f *Factory[A]) Make(cfg *Config[A], mem memory.Args) (Executor, error) {
	impl := f.selectImpl(cfg)
	compliant, coerced := impl.IsFullyCompliant(cfg)

	if compliant {
		klog.V(2).Infof("factory %s: %q is fully compliant", f.ctx.ID(), impl.Name())
		executor, err := f.create(impl, cfg, mem)
		if err != nil {
			return nil, err
		}
		if err := executor.Update(cfg.Descs, mem); err != nil {
			return nil, err
		}
		return executor, nil
	}

	klog.V(2).Infof("factory %s: falling back for %q; requested %s coerced %s",
		f.ctx.ID(), impl.Name(), cfg, coerced)
	f.ctx.Hook().FallbackEmitted(impl.Name())
	emitter := NewGraphEmitter(cfg, mem, f.ctx, impl.Name())
	executor, err := emitter.CreateGraph(coerced, func(actual *Config[A]) (Executor, error) {
		return f.create(impl, actual, mem)
	}).EnsureAttrsMatch().
		EnsureSrcDescsMatch().
		EnsureDstDescsMatch().
		EnsurePostOpsMatch().
		Emit()
	if err != nil {
		return nil, err
	}
	if err := executor.Update(cfg.Descs, mem); err != nil {
		return nil, err
	}
	return executor, nil
}

// selectImpl returns the first filtered implementation that is either shape
// agnostic or shape-suitable for cfg's concrete shapes. Exhausting the list
// means filtering and selection disagree about the config, an internal
// invariant break, hence fatal.
func (f *Factory[A]) selectImpl(cfg *Config[A]) *Implementation[A] {
	for _, impl := range f.suitable {
		if impl.IsShapeAgnostic() || impl.IsShapeSuitable(cfg) {
			f.ctx.Hook().ImplementationSelected(impl.Name())
			return impl
		}
	}
	exceptions.Panicf("failed to select an implementation for config %s", cfg)
	return nil
}

// create instantiates the backend shell for impl, memoized per
// (backendType, operationKind) within this factory: a second call for the
// same pair reuses the already-constructed shell.
func (f *Factory[A]) create(impl *Implementation[A], cfg *Config[A], mem memory.Args) (Executor, error) {
	key := factoryKey{backendType: impl.BackendType(), opKind: impl.OperationKind()}
	if shell, ok := f.shells[key]; ok {
		return shell, nil
	}
	klog.V(2).Infof("factory %s: configuring implementation %q", f.ctx.ID(), impl.Name())
	shell, err := impl.Create(cfg, mem, f.ctx)
	if err != nil {
		return nil, err
	}
	f.shells[key] = shell
	return shell, nil
}
