package fullyconnected

import (
	"github.com/wutthichai46/openvino/executors"
	"github.com/wutthichai46/openvino/types/element"
	"github.com/wutthichai46/openvino/types/memory"
)

// typeMapping is the precision rule table for fully-connected, ports
// ordered src, wei, bias, dst. Declaration order carries the policy:
// exact mixed-precision rules sit above the coercing ones, the catch-all
// last.
var typeMapping = executors.TypeMapping{
	// bf16 and f16 compute keep their precision, bias follows dst.
	{
		SrcMasks: []element.Mask{element.MaskBF16, element.MaskBF16 | element.MaskF32 | element.MaskF16, element.MaskAny},
		DstMask:  element.MaskBF16 | element.MaskF32,
		Translit: executors.PortTranslation(executors.PolicyBypass, executors.PolicyBypass, executors.PolicyOut, executors.PolicyBypass),
	},
	{
		SrcMasks: []element.Mask{element.MaskF16, element.MaskF16, element.MaskAny},
		DstMask:  element.MaskF16 | element.MaskF32,
		Translit: executors.PortTranslation(executors.PolicyBypass, executors.PolicyBypass, executors.PolicyOut, executors.PolicyBypass),
	},
	// Integer outputs are not produced from float inputs: dst follows src.
	{
		SrcMasks: []element.Mask{element.MaskFloat, element.MaskAny, element.MaskAny},
		DstMask:  element.MaskI8 | element.MaskU8,
		Translit: executors.PortTranslation(executors.PolicyBypass, executors.PolicyBypass, executors.PolicyIn(0), executors.PolicyIn(0)),
	},
	// Float weights whose precision differs from the activations are
	// converted to the activation precision.
	{
		SrcMasks: []element.Mask{element.MaskF32, element.MaskHalfFloat, element.MaskAny},
		DstMask:  element.MaskAny,
		Translit: executors.PortTranslation(executors.PolicyBypass, executors.PolicyIn(0), executors.PolicyIn(0), executors.PolicyIn(0)),
	},
	{
		SrcMasks: []element.Mask{element.MaskBF16, element.MaskF16, element.MaskAny},
		DstMask:  element.MaskAny,
		Translit: executors.PortTranslation(executors.PolicyBypass, executors.PolicyIn(0), executors.PolicyIn(0), executors.PolicyIn(0)),
	},
	{
		SrcMasks: []element.Mask{element.MaskF16, element.MaskBF16, element.MaskAny},
		DstMask:  element.MaskAny,
		Translit: executors.PortTranslation(executors.PolicyBypass, executors.PolicyIn(0), executors.PolicyIn(0), executors.PolicyIn(0)),
	},
	// Quantized configurations: the exact rule passes everything through,
	// the relaxed one below forces bias and output to f32.
	{
		SrcMasks: []element.Mask{
			element.MaskU8 | element.MaskI8,
			element.MaskI8,
			element.MaskU8 | element.MaskI8 | element.MaskI32 | element.MaskBF16 | element.MaskF16 | element.MaskF32 | element.MaskUndefined,
		},
		DstMask:  element.MaskU8 | element.MaskI8 | element.MaskI32 | element.MaskBF16 | element.MaskF16 | element.MaskF32,
		Translit: executors.Everyone(executors.PolicyBypass, 3),
	},
	{
		SrcMasks: []element.Mask{element.MaskU8 | element.MaskI8, element.MaskI8, element.MaskAny},
		DstMask:  element.MaskAny,
		Translit: executors.PortTranslation(executors.PolicyBypass, executors.PolicyBypass, executors.PolicyJust(element.F32), executors.PolicyJust(element.F32)),
	},
	// Compressed weights stay compressed, bias and output follow the
	// activations.
	{
		SrcMasks: []element.Mask{element.MaskFloat, element.MaskCompressed, element.MaskAny},
		DstMask:  element.MaskAny,
		Translit: executors.PortTranslation(executors.PolicyBypass, executors.PolicyBypass, executors.PolicyIn(0), executors.PolicyIn(0)),
	},
	// Catch-all: force everything to the default float.
	{
		SrcMasks: []element.Mask{element.MaskAny, element.MaskAny, element.MaskAny},
		DstMask:  element.MaskAny,
		Translit: executors.Everyone(executors.PolicyFloat, 3),
	},
}

// plainLayouts is the layout configuration every fully-connected kernel
// expects: plain row-major on all ports.
var plainLayouts = executors.LayoutConfig{
	Src: []memory.Layout{memory.LayoutPlain, memory.LayoutPlain, memory.LayoutPlain},
	Dst: memory.LayoutPlain,
}
