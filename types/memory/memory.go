package memory

import (
	"unsafe"

	"github.com/gomlx/exceptions"
)

// Arg numbers the ports of an operation in an Args map.
type Arg int

const (
	ArgSrc Arg = iota
	ArgWei
	ArgBias
	ArgDst
)

var argNames = [...]string{
	ArgSrc:  "src",
	ArgWei:  "wei",
	ArgBias: "bias",
	ArgDst:  "dst",
}

// String implements fmt.Stringer.
func (a Arg) String() string {
	if a < 0 || int(a) >= len(argNames) {
		return "invalid"
	}
	return argNames[a]
}

// Memory is a buffer bound to a descriptor. Buffer allocation itself is the
// caller's concern; the executor core only reads and writes through this
// interface.
type Memory interface {
	Desc() *Desc
	Bytes() []byte
}

// Args maps operation ports to their buffers.
type Args map[Arg]Memory

// Buffer is a trivial in-process Memory backed by a byte slice. The graph
// integration normally supplies its own Memory implementation; Buffer
// serves the fallback path's scratch space and the tests.
type Buffer struct {
	desc *Desc
	data []byte
}

// NewBuffer allocates a zeroed buffer for a static descriptor.
func NewBuffer(desc *Desc) *Buffer {
	if desc.Shape().IsDynamic() {
		exceptions.Panicf("memory.NewBuffer: cannot allocate for dynamic descriptor %s", desc)
	}
	return &Buffer{desc: desc, data: make([]byte, desc.MemSize())}
}

// NewBufferWithData wraps an existing byte slice. The slice length must
// match the descriptor's memory size.
func NewBufferWithData(desc *Desc, data []byte) *Buffer {
	if len(data) != desc.MemSize() {
		exceptions.Panicf("memory.NewBufferWithData: %d bytes given for descriptor %s (%d bytes)",
			len(data), desc, desc.MemSize())
	}
	return &Buffer{desc: desc, data: data}
}

// Desc implements Memory.
func (b *Buffer) Desc() *Desc { return b.desc }

// Bytes implements Memory.
func (b *Buffer) Bytes() []byte { return b.data }

// AsFloat32 reinterprets a buffer's bytes as []float32. Panics if the
// buffer's element type is not f32.
func AsFloat32(m Memory) []float32 {
	requireType(m, "f32", 4)
	data := m.Bytes()
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// AsUint16 reinterprets a buffer's bytes as []uint16, the raw
// representation of both 16-bit float flavors.
func AsUint16(m Memory) []uint16 {
	data := m.Bytes()
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(&data[0])), len(data)/2)
}

// AsInt8 reinterprets a buffer's bytes as []int8.
func AsInt8(m Memory) []int8 {
	data := m.Bytes()
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*int8)(unsafe.Pointer(&data[0])), len(data))
}

func requireType(m Memory, name string, elemBytes int) {
	if m.Desc().Type().Bits()/8 != elemBytes {
		exceptions.Panicf("buffer holds %s elements, %s requested", m.Desc().Type(), name)
	}
}
