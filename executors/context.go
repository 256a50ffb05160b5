package executors

import (
	"slices"

	"github.com/google/uuid"

	"github.com/wutthichai46/openvino/executors/cache"
	"github.com/wutthichai46/openvino/instrument"
)

// Context is the execution environment shared by every factory and kernel
// built within it: the runtime kernel cache, the implementation priority
// list and the observability hook. It stands in for the compute
// engine/device handle of the surrounding runtime.
//
// A Context is immutable after creation and safe for concurrent use.
type Context struct {
	id             uuid.UUID
	runtimeCache   *cache.Cache[any]
	implPriorities []ImplType
	hook           instrument.Hook
}

// ContextOption configures NewContext.
type ContextOption func(*Context)

// WithImplPriorities overrides DefaultImplPriority for kernels built under
// this context. Best first.
func WithImplPriorities(priorities ...ImplType) ContextOption {
	return func(c *Context) {
		c.implPriorities = slices.Clone(priorities)
	}
}

// WithHook installs the observability hook.
func WithHook(hook instrument.Hook) ContextOption {
	return func(c *Context) {
		c.hook = hook
	}
}

// NewContext returns a fresh execution context with its own (empty) kernel
// cache.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		id:             uuid.New(),
		implPriorities: DefaultImplPriority(),
		hook:           instrument.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.runtimeCache = cache.New[any](c.hook)
	return c
}

// ID identifies the context in log lines.
func (c *Context) ID() uuid.UUID { return c.id }

// RuntimeCache returns the kernel cache shared by all operator instances of
// this context. Entries live until the context is dropped.
func (c *Context) RuntimeCache() *cache.Cache[any] { return c.runtimeCache }

// ImplPriorities returns the preference order among kernel flavors.
func (c *Context) ImplPriorities() []ImplType { return c.implPriorities }

// Hook returns the observability hook. Never nil.
func (c *Context) Hook() instrument.Hook { return c.hook }
