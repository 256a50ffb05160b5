// Package executors implements runtime selection and dispatch of compute
// kernels for inference operations.
//
// Given an operation's attributes, its input/output memory descriptors and
// any fused post-operations (together a Config), a Factory chooses which
// registered Implementation executes the operation, re-deciding on every
// shape change. When no implementation matches the config's precision and
// layout exactly, the surrounding data is coerced and a fallback
// decomposition is emitted instead. Compiled kernels are memoized in a
// concurrency-safe cache (see executors/cache) shared across operator
// instances of one execution Context.
//
// The decision procedure is staged:
//
//  1. Factory.Filter narrows the registered implementations to the ones
//     supporting the config, stopping at the first shape-agnostic match.
//  2. On each shape change, the first filtered implementation that is
//     shape-agnostic or shape-suitable is selected.
//  3. The selected implementation's compliance check translates the
//     config's precisions through its type-mapping table; a non-compliant
//     config is projected onto coerced descriptors (same shapes, adjusted
//     types/layouts).
//  4. Compliant configs instantiate the backend directly; non-compliant
//     ones go through the fallback GraphEmitter, which converts inputs,
//     runs the coerced operation and converts the result back.
//
// Errors that indicate operator misconfiguration or broken internal
// invariants (empty filter result, no shape-suitable candidate, fallback
// config mismatch) panic with a stack trace via github.com/gomlx/exceptions.
// Kernel build failures are ordinary errors and propagate to the caller
// unchanged.
package executors
