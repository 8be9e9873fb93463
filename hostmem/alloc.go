package hostmem

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/tinypacks"
	"github.com/wippyai/tinypacks/errors"
)

const (
	CabiRealloc = "cabi_realloc"
	CabiFree    = "cabi_free"
)

// FuncAllocator allocates guest memory through the guest's exported
// cabi_realloc(old_ptr, old_size, align, new_size). If the guest also
// exports cabi_free(ptr, size, align) it is used by Free; otherwise Free
// does nothing.
type FuncAllocator struct {
	ctx       context.Context
	reallocFn api.Function
	freeFn    api.Function
	stackBuf  [4]uint64
	mu        sync.Mutex
}

// NewFuncAllocator looks up the allocation exports of mod. Calls made
// through the allocator use ctx.
func NewFuncAllocator(ctx context.Context, mod api.Module) (*FuncAllocator, error) {
	realloc := mod.ExportedFunction(CabiRealloc)
	if realloc == nil {
		return nil, errors.Unsupported(errors.PhaseHost, "module does not export "+CabiRealloc)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &FuncAllocator{
		ctx:       ctx,
		reallocFn: realloc,
		freeFn:    mod.ExportedFunction(CabiFree),
	}, nil
}

func (a *FuncAllocator) Alloc(size, align uint32) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stackBuf[0] = 0
	a.stackBuf[1] = 0
	a.stackBuf[2] = uint64(align)
	a.stackBuf[3] = uint64(size)
	if err := a.reallocFn.CallWithStack(a.ctx, a.stackBuf[:]); err != nil {
		return 0, errors.AllocationFailed(errors.PhaseHost, size, align, err)
	}
	ptr := uint32(a.stackBuf[0])
	if ptr == 0 && size > 0 {
		return 0, errors.AllocationFailed(errors.PhaseHost, size, align, nil)
	}
	return ptr, nil
}

func (a *FuncAllocator) Free(ptr, size, align uint32) {
	if a.freeFn == nil || ptr == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stackBuf[0] = uint64(ptr)
	a.stackBuf[1] = uint64(size)
	a.stackBuf[2] = uint64(align)
	if err := a.freeFn.CallWithStack(a.ctx, a.stackBuf[:3]); err != nil {
		Logger().Warn("Free: failed to call cabi_free",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

// BumpAllocator hands out increasing addresses from [base, limit) of a
// memory the host manages itself, for guests without an allocator export.
// Free is a no-op; Reset releases everything at once.
type BumpAllocator struct {
	base  uint32
	next  uint32
	limit uint32
	mu    sync.Mutex
}

func NewBumpAllocator(base, limit uint32) *BumpAllocator {
	return &BumpAllocator{base: base, next: base, limit: limit}
}

func (a *BumpAllocator) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	ptr := (uint64(a.next) + uint64(align) - 1) &^ (uint64(align) - 1)
	end := ptr + uint64(size)
	if end > uint64(a.limit) {
		return 0, errors.AllocationFailed(errors.PhaseHost, size, align, nil)
	}
	a.next = uint32(end)
	return uint32(ptr), nil
}

func (a *BumpAllocator) Free(ptr, size, align uint32) {}

// Reset makes the whole region available again.
func (a *BumpAllocator) Reset() {
	a.mu.Lock()
	a.next = a.base
	a.mu.Unlock()
}

var _ tinypacks.Allocator = (*FuncAllocator)(nil)
var _ tinypacks.Allocator = (*BumpAllocator)(nil)
