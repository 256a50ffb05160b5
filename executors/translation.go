package executors

import (
	"github.com/gomlx/exceptions"

	"github.com/wutthichai46/openvino/types/element"
)

// TypePolicy computes the desired element type for one port, given the
// concrete input types and the declared output type of the current config.
type TypePolicy func(inputs []element.Type, output element.Type, port int) element.Type

// PolicyOut keeps the config's declared output type.
func PolicyOut(_ []element.Type, output element.Type, _ int) element.Type {
	return output
}

// DstPort is the port index a destination policy is invoked with.
const DstPort = -1

// PolicyBypass passes the port's own concrete type through: the input type
// on a source port, the declared output type on the destination.
func PolicyBypass(inputs []element.Type, output element.Type, port int) element.Type {
	if port == DstPort {
		return output
	}
	return inputs[port]
}

// PolicyIn copies the concrete type of the named input port.
func PolicyIn(src int) TypePolicy {
	return func(inputs []element.Type, _ element.Type, _ int) element.Type {
		if src >= len(inputs) {
			exceptions.Panicf("type policy references input port %d, config has %d inputs", src, len(inputs))
		}
		return inputs[src]
	}
}

// PolicyJust forces a fixed literal type.
func PolicyJust(t element.Type) TypePolicy {
	return func([]element.Type, element.Type, int) element.Type {
		return t
	}
}

// PolicyFloat forces the default floating type.
func PolicyFloat(_ []element.Type, _ element.Type, _ int) element.Type {
	return element.DefaultFloat()
}

// TypeTranslation computes a full desired type configuration: one policy
// per source port plus one for the destination.
type TypeTranslation struct {
	Src []TypePolicy
	Dst TypePolicy
}

// PortTranslation builds a TypeTranslation from per-port policies, the
// destination policy last.
func PortTranslation(policies ...TypePolicy) TypeTranslation {
	if len(policies) < 2 {
		exceptions.Panicf("PortTranslation needs at least one source policy and the destination policy")
	}
	return TypeTranslation{
		Src: policies[:len(policies)-1],
		Dst: policies[len(policies)-1],
	}
}

// Everyone applies one policy to every port, destination included.
func Everyone(policy TypePolicy, srcPorts int) TypeTranslation {
	src := make([]TypePolicy, srcPorts)
	for i := range src {
		src[i] = policy
	}
	return TypeTranslation{Src: src, Dst: policy}
}

// InOutTypes is a desired type configuration: one entry per source port
// plus the destination.
type InOutTypes struct {
	Src []element.Type
	Dst element.Type
}

// TypeMappingEntry is one precision translation rule: an input mask tuple,
// an output mask, and the translation applied when both match.
type TypeMappingEntry struct {
	SrcMasks []element.Mask
	DstMask  element.Mask
	Translit TypeTranslation
}

// TypeMapping is the ordered rule table of an operation kind. Order is a
// first-class invariant: overlapping rules resolve to the first declared
// match, which is how exact mixed-precision policies take precedence over
// catch-alls. Keep specific rules above general ones.
type TypeMapping []TypeMappingEntry

// TypeConfiguration translates the concrete types of the config's
// descriptors through the mapping. The first structurally matching rule
// wins. When no rule matches, every port falls back to the default floating
// type; a table miss is recovered locally and never escalates.
func TypeConfiguration(mapping TypeMapping, descs MemoryDescArgs) InOutTypes {
	inputs := make([]element.Type, len(descs.Src))
	for i, d := range descs.Src {
		inputs[i] = d.Type()
	}
	output := descs.Dst[0].Type()

	for _, rule := range mapping {
		if !element.MatchesAll(rule.SrcMasks, inputs) || !rule.DstMask.Matches(output) {
			continue
		}
		return applyTranslation(rule.Translit, inputs, output)
	}

	fallback := InOutTypes{Src: make([]element.Type, len(inputs)), Dst: element.DefaultFloat()}
	for i := range fallback.Src {
		fallback.Src[i] = element.DefaultFloat()
	}
	return fallback
}

func applyTranslation(tr TypeTranslation, inputs []element.Type, output element.Type) InOutTypes {
	desired := InOutTypes{Src: make([]element.Type, len(inputs))}
	for port := range inputs {
		policy := PolicyBypass
		if port < len(tr.Src) {
			policy = tr.Src[port]
		}
		desired.Src[port] = policy(inputs, output, port)
	}
	desired.Dst = tr.Dst(inputs, output, DstPort)
	return desired
}
