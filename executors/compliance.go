package executors

import (
	"github.com/wutthichai46/openvino/types/element"
	"github.com/wutthichai46/openvino/types/memory"
)

// LayoutConfig declares the physical layout an implementation wants on each
// port.
type LayoutConfig struct {
	Src []memory.Layout
	Dst memory.Layout
}

// fullyMatchConfiguration reports whether every current descriptor already
// carries the desired type and layout. A descriptor with Undefined type
// (absent port) matches any desired type.
func fullyMatchConfiguration(descs MemoryDescArgs, types InOutTypes, layouts LayoutConfig) bool {
	for i, desc := range descs.Src {
		if desc.Type() != types.Src[i] && desc.Type() != element.Undefined {
			return false
		}
		if !layoutMatches(desc.Layout(), layouts.Src[i]) {
			return false
		}
	}
	dst := descs.Dst[0]
	if dst.Type() != types.Dst && dst.Type() != element.Undefined {
		return false
	}
	return layoutMatches(dst.Layout(), layouts.Dst)
}

func layoutMatches(actual, desired memory.Layout) bool {
	return desired == memory.LayoutAny || actual == desired
}

// createOptimalDescs projects the current descriptors onto the desired type
// and layout configuration. Shapes, ranks and port counts never change:
// coercion is strictly a precision/layout projection. Descriptors already
// matching are referenced, not re-created, preserving their identity.
func createOptimalDescs(descs MemoryDescArgs, types InOutTypes, layouts LayoutConfig) MemoryDescArgs {
	out := MemoryDescArgs{
		Src: make([]*memory.Desc, len(descs.Src)),
		Dst: make([]*memory.Desc, len(descs.Dst)),
	}
	for i, desc := range descs.Src {
		typeOK := desc.Type() == element.Undefined || desc.Type() == types.Src[i]
		if typeOK && layoutMatches(desc.Layout(), layouts.Src[i]) {
			out.Src[i] = desc
			continue
		}
		typ := types.Src[i]
		if desc.Type() == element.Undefined {
			typ = desc.Type()
		}
		out.Src[i] = desc.CloneWith(typ, concreteLayout(layouts.Src[i], desc.Layout()))
	}
	dst := descs.Dst[0]
	typeOK := dst.Type() == element.Undefined || dst.Type() == types.Dst
	if typeOK && layoutMatches(dst.Layout(), layouts.Dst) {
		out.Dst[0] = dst
	} else {
		typ := types.Dst
		if dst.Type() == element.Undefined {
			typ = dst.Type()
		}
		out.Dst[0] = dst.CloneWith(typ, concreteLayout(layouts.Dst, dst.Layout()))
	}
	copy(out.Dst[1:], descs.Dst[1:])
	return out
}

func concreteLayout(desired, current memory.Layout) memory.Layout {
	if desired == memory.LayoutAny {
		return current
	}
	return desired
}

// FullyCompliantCommon is the standard compliance check shared by table
// driven implementations: translate the config's precisions through the
// mapping and compare every descriptor against the result. Returns
// (true, cfg) untouched on a full match, or (false, coerced) where coerced
// shares cfg's attributes, post-ops and shapes under the ideal types and
// layouts. Calling it again on the coerced config reports compliant.
func FullyCompliantCommon[A Attrs[A]](cfg *Config[A], mapping TypeMapping, layouts LayoutConfig) (bool, *Config[A]) {
	types := TypeConfiguration(mapping, cfg.Descs)

	if fullyMatchConfiguration(cfg.Descs, types, layouts) {
		return true, cfg
	}

	return false, &Config[A]{
		Descs:   createOptimalDescs(cfg.Descs, types, layouts),
		Attrs:   cfg.Attrs,
		PostOps: cfg.PostOps,
	}
}
