// Package hostmem moves packed values across the boundary between a Go
// host and a WebAssembly guest running under wazero.
//
// A guest hands the host a (ptr, len) region of its linear memory holding
// one packed element; the host decodes it with ReadValue. In the other
// direction WriteValue packs a value, reserves room with an Allocator and
// copies the bytes in, returning the region for the guest:
//
//	mem := hostmem.NewWazeroMemory(mod.Memory())
//	alloc, err := hostmem.NewFuncAllocator(ctx, mod)
//	ptr, n, err := hostmem.WriteValue(mem, alloc, v, nil)
//	ret, err := fn.Call(ctx, uint64(ptr), uint64(n))
//	rp, rn := hostmem.SplitPtrLen(ret[0])
//	out, err := hostmem.ReadValue(mem, rp, rn, nil)
//
// Conform checks a value against a WIT type before it is handed to a
// component function, so shape errors surface on the host with a path
// instead of as a trap inside the guest.
package hostmem
