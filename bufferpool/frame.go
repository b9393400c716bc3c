package bufferpool

import "sync"

// FrameID identifies a slot in the buffer pool's fixed-size frame array.
type FrameID int

// PageID identifies a page on disk. A signed 64-bit integer; InvalidPageID
// is a negative sentinel.
type PageID int64

// InvalidPageID marks an empty frame or a failed allocation.
const InvalidPageID PageID = -1

// PageSize is the fixed number of bytes held by a frame and written to disk
// per page.
const PageSize = 4096

// framePool recycles *Frame values across eviction/admission cycles instead
// of letting the garbage collector reclaim and re-allocate PageSize-byte
// arrays on every cache miss. Grounded on bufferpool.go's pageSyncPool.
var framePool = sync.Pool{
	New: func() any {
		return &Frame{pageID: InvalidPageID}
	},
}

// Frame holds one page's bytes plus the metadata BufferPoolManager and
// Replacer need to track it: its disk identity, pin count, dirty flag, and
// an independent reader/writer latch over the bytes and those scalars.
//
// The latch is separate from BufferPoolManager's manager lock: external
// callers holding a pin take it to read/write data without tearing, and the
// manager takes it briefly to mutate metadata a pinned caller might be
// observing concurrently.
type Frame struct {
	mu       sync.RWMutex
	pageID   PageID
	pinCount int
	isDirty  bool
	lsn      LSN
	data     [PageSize]byte
}

func acquireFrame() *Frame {
	f := framePool.Get().(*Frame)
	f.pageID = InvalidPageID
	f.pinCount = 0
	f.isDirty = false
	f.lsn = 0
	return f
}

func releaseFrame(f *Frame) {
	framePool.Put(f)
}

// TakeReadLatch acquires a shared latch over data and metadata.
func (f *Frame) TakeReadLatch() { f.mu.RLock() }

// ReleaseReadLatch releases a shared latch taken by TakeReadLatch.
func (f *Frame) ReleaseReadLatch() { f.mu.RUnlock() }

// TakeWriteLatch acquires an exclusive latch over data and metadata.
func (f *Frame) TakeWriteLatch() { f.mu.Lock() }

// ReleaseWriteLatch releases an exclusive latch taken by TakeWriteLatch.
func (f *Frame) ReleaseWriteLatch() { f.mu.Unlock() }

// ID returns the page id currently resident in this frame.
func (f *Frame) ID() PageID { return f.pageID }

// PinCount returns the number of outstanding references to this frame.
func (f *Frame) PinCount() int { return f.pinCount }

// IsDirty reports whether data has been modified since the last write-back.
func (f *Frame) IsDirty() bool { return f.isDirty }

// LSN returns the log sequence number of the last modification recorded
// against this frame, used by LogManager.Flush's write-ahead ordering.
func (f *Frame) LSN() LSN { return f.lsn }

// SetLSN records the log sequence number of a modification to this frame.
// Callers must hold the write latch.
func (f *Frame) SetLSN(lsn LSN) { f.lsn = lsn }

// Data exposes the frame's fixed-size byte buffer. Callers must hold at
// least a read latch before reading it, and a write latch before mutating
// it.
func (f *Frame) Data() []byte { return f.data[:] }

// ResetMemory zeroes the frame's data buffer.
func (f *Frame) ResetMemory() {
	for i := range f.data {
		f.data[i] = 0
	}
}
