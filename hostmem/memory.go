package hostmem

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/tinypacks"
	"github.com/wippyai/tinypacks/errors"
)

// WazeroMemory wraps wazero memory to implement tinypacks.Memory
type WazeroMemory struct {
	mem api.Memory
}

// NewWazeroMemory wraps the linear memory of a wazero module instance.
func NewWazeroMemory(mem api.Memory) *WazeroMemory {
	return &WazeroMemory{mem: mem}
}

// Read returns a view of guest memory. The slice aliases the guest and is
// only valid until the guest runs again or memory grows.
func (m *WazeroMemory) Read(offset uint32, length uint32) ([]byte, error) {
	if m.mem == nil {
		return nil, errors.OutOfBounds(errors.PhaseHost, offset, length, 0)
	}
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseHost, offset, length, m.mem.Size())
	}
	return data, nil
}

func (m *WazeroMemory) Write(offset uint32, data []byte) error {
	if m.mem == nil {
		return errors.OutOfBounds(errors.PhaseHost, offset, uint32(len(data)), 0)
	}
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseHost, offset, uint32(len(data)), m.mem.Size())
	}
	return nil
}

func (m *WazeroMemory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

// Compile-time check that WazeroMemory implements tinypacks.Memory and MemorySizer
var _ tinypacks.Memory = (*WazeroMemory)(nil)
var _ tinypacks.MemorySizer = (*WazeroMemory)(nil)
