package executors

import (
	"fmt"
	"strings"

	"github.com/wutthichai46/openvino/types/element"
	"github.com/wutthichai46/openvino/types/memory"
)

// Attrs constrains the operation-specific attribute types a Config can
// carry. Attribute values are compared and hashed by content.
type Attrs[A any] interface {
	Hash(seed uint64) uint64
	Equal(other A) bool
}

// MemoryDescArgs groups the ordered source and destination descriptors of
// an operation. The slice lengths are fixed by the operation's arity.
type MemoryDescArgs struct {
	Src []*memory.Desc
	Dst []*memory.Desc
}

// Equal compares both descriptor lists structurally.
func (a MemoryDescArgs) Equal(o MemoryDescArgs) bool {
	if len(a.Src) != len(o.Src) || len(a.Dst) != len(o.Dst) {
		return false
	}
	for i, d := range a.Src {
		if !d.Equal(o.Src[i]) {
			return false
		}
	}
	for i, d := range a.Dst {
		if !d.Equal(o.Dst[i]) {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (a MemoryDescArgs) String() string {
	var sb strings.Builder
	for _, d := range a.Src {
		fmt.Fprintf(&sb, "%s;", d)
	}
	sb.WriteString("->")
	for _, d := range a.Dst {
		fmt.Fprintf(&sb, "%s;", d)
	}
	return sb.String()
}

// Config is the full characterization of one operation instance at one
// point in time: descriptors, operation-specific attributes and fused
// post-operations. The node lifecycle constructs a fresh Config for every
// shape-change event; the framework never mutates one.
type Config[A Attrs[A]] struct {
	Descs   MemoryDescArgs
	Attrs   A
	PostOps PostOps
}

// Equal compares configs by content: every descriptor, the attributes and
// the post-op list must match structurally.
func (c *Config[A]) Equal(o *Config[A]) bool {
	return c.Descs.Equal(o.Descs) && c.Attrs.Equal(o.Attrs) && c.PostOps.Equal(o.PostOps)
}

// Hash folds the config's content into seed.
func (c *Config[A]) Hash(seed uint64) uint64 {
	for _, d := range c.Descs.Src {
		seed = d.Hash(seed)
	}
	for _, d := range c.Descs.Dst {
		seed = d.Hash(seed)
	}
	seed = c.Attrs.Hash(seed)
	return c.PostOps.Hash(seed)
}

// String implements fmt.Stringer.
func (c *Config[A]) String() string {
	return fmt.Sprintf("%s postOps=%s attrs=%v", c.Descs, c.PostOps, c.Attrs)
}

// Port accessors, shared by support predicates and shape heuristics across
// operation kinds. Source port 0 is the activation, 1 the weights, 2 the
// bias.

// SrcType returns the element type of source port idx.
func SrcType[A Attrs[A]](c *Config[A], idx int) element.Type {
	return c.Descs.Src[idx].Type()
}

// WeiType returns the weights element type.
func WeiType[A Attrs[A]](c *Config[A]) element.Type { return SrcType(c, 1) }

// BiaType returns the bias element type.
func BiaType[A Attrs[A]](c *Config[A]) element.Type { return SrcType(c, 2) }

// DstType returns the element type of destination port 0.
func DstType[A Attrs[A]](c *Config[A]) element.Type {
	return c.Descs.Dst[0].Type()
}

// SrcDims returns the dimensions of source port idx.
func SrcDims[A Attrs[A]](c *Config[A], idx int) []int {
	return c.Descs.Src[idx].Shape().Dimensions
}

// WeiDims returns the weights dimensions.
func WeiDims[A Attrs[A]](c *Config[A]) []int { return SrcDims(c, 1) }

// SrcRank returns the rank of source port idx.
func SrcRank[A Attrs[A]](c *Config[A], idx int) int {
	return c.Descs.Src[idx].Rank()
}

// WeiRank returns the weights rank.
func WeiRank[A Attrs[A]](c *Config[A]) int { return SrcRank(c, 1) }

// WeiMemSize returns the weights buffer size in bytes (0 if dynamic).
func WeiMemSize[A Attrs[A]](c *Config[A]) int {
	return c.Descs.Src[1].MemSize()
}
