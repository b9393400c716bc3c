// Package bufferpool implements an in-memory buffer pool manager over a
// disk-backed page store: a fixed pool of frames, a page table, a free
// list, and a clock replacer, coordinating admission, eviction, and
// write-back the way a storage engine's buffer manager does.
package bufferpool

import (
	"fmt"
	"sync"

	"github.com/yiyangc91/bustub/errors"
	"github.com/yiyangc91/bustub/logger"
)

// BufferPoolManager owns a fixed-size array of frames and mediates all
// access to them: FetchPage/NewPage/UnpinPage/FlushPage/DeletePage, plus
// FlushAllPages for checkpointing. A single manager lock serializes page
// table, free list, and admission/eviction bookkeeping; each Frame's own
// latch protects its bytes for holders of an outstanding pin.
type BufferPoolManager struct {
	mu sync.Mutex

	diskManager DiskManager
	logManager  LogManager
	logger      logger.Logger

	frames    []*Frame
	replacer  Replacer
	freeList  []FrameID
	pageTable map[PageID]FrameID
}

// NewBufferPoolManager builds a manager with poolSize frames backed by
// diskManager. logManager and lg may be nil, in which case a no-op
// LogManager and logger are used.
func NewBufferPoolManager(poolSize int, diskManager DiskManager, logManager LogManager, lg logger.Logger) *BufferPoolManager {
	if logManager == nil {
		logManager = NopLogManager{}
	}
	if lg == nil {
		lg = logger.NopLogger
	}

	freeList := make([]FrameID, poolSize)
	for i := range freeList {
		freeList[i] = FrameID(i)
	}

	return &BufferPoolManager{
		diskManager: diskManager,
		logManager:  logManager,
		logger:      lg,
		frames:      make([]*Frame, poolSize),
		replacer:    NewClockReplacer(poolSize),
		freeList:    freeList,
		pageTable:   make(map[PageID]FrameID),
	}
}

// PoolSize returns the fixed number of frames this manager was built with.
func (b *BufferPoolManager) PoolSize() int {
	return len(b.frames)
}

// NewPage allocates a fresh page on disk and pins it into a frame,
// evicting a victim first if the pool has no free frames. Returns
// (InvalidPageID, nil, nil) if the pool is exhausted (every frame pinned).
func (b *BufferPoolManager) NewPage() (PageID, *Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.freeList) == 0 {
		victimized, err := b.victimizeFrame()
		if err != nil {
			return InvalidPageID, nil, err
		}
		if !victimized {
			b.logger.Debugf("NewPage: pool exhausted, every frame pinned")
			return InvalidPageID, nil, nil
		}
	}

	frameID := b.freeList[0]
	b.freeList = b.freeList[1:]

	pageID, err := b.diskManager.AllocatePage()
	if err != nil {
		b.freeList = append(b.freeList, frameID)
		return InvalidPageID, nil, errors.Wrap(err, "allocating page")
	}

	frame := acquireFrame()
	frame.pageID = pageID
	frame.pinCount = 1
	frame.ResetMemory()

	b.frames[frameID] = frame
	b.pageTable[pageID] = frameID
	b.replacer.Pin(frameID)

	b.logger.Debugf("NewPage(%d): allocated at frame %d", pageID, frameID)
	return pageID, frame, nil
}

// FetchPage returns the requested page, pinning it. On a page-table hit
// the existing frame is reused and its pin count incremented; on a miss a
// frame is obtained (free list, else eviction) and the page is read from
// disk. Returns (nil, nil) if the pool is exhausted.
func (b *BufferPoolManager) FetchPage(pageID PageID) (*Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if frameID, ok := b.pageTable[pageID]; ok {
		frame := b.frames[frameID]
		frame.TakeWriteLatch()
		frame.pinCount++
		frame.ReleaseWriteLatch()

		b.replacer.Pin(frameID)
		b.logger.Debugf("FetchPage(%d): hit at frame %d", pageID, frameID)
		return frame, nil
	}

	if len(b.freeList) == 0 {
		victimized, err := b.victimizeFrame()
		if err != nil {
			return nil, err
		}
		if !victimized {
			b.logger.Debugf("FetchPage(%d): pool exhausted, every frame pinned", pageID)
			return nil, nil
		}
	}

	frameID := b.freeList[0]
	b.freeList = b.freeList[1:]

	frame, err := b.diskManager.ReadPage(pageID)
	if err != nil {
		b.freeList = append(b.freeList, frameID)
		return nil, errors.Wrap(err, "reading page from disk")
	}
	frame.pinCount = 1
	frame.isDirty = false

	b.frames[frameID] = frame
	b.pageTable[pageID] = frameID
	b.replacer.Pin(frameID)

	b.logger.Debugf("FetchPage(%d): miss, read into frame %d", pageID, frameID)
	return frame, nil
}

// UnpinPage releases one reference to pageID. isDirty, if true, marks the
// frame dirty; the dirty flag is sticky and a later false can never clear
// it. Returns false if pageID isn't resident or its pin count is already
// zero (an over-unpin, which is a client error, not a panic).
func (b *BufferPoolManager) UnpinPage(pageID PageID, isDirty bool) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameID, ok := b.pageTable[pageID]
	if !ok {
		return false, nil
	}

	frame := b.frames[frameID]
	frame.TakeWriteLatch()
	defer frame.ReleaseWriteLatch()

	frame.isDirty = frame.isDirty || isDirty
	if frame.pinCount == 0 {
		b.logger.Printf("UnpinPage(%d): pin count already zero", pageID)
		return false, nil
	}

	frame.pinCount--
	if frame.pinCount == 0 {
		b.replacer.Unpin(frameID)
	}
	return true, nil
}

// FlushPage writes pageID's bytes to disk and clears its dirty flag. Pin
// state is left untouched — flushing is not an unpin. Returns false if
// pageID isn't resident.
func (b *BufferPoolManager) FlushPage(pageID PageID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameID, ok := b.pageTable[pageID]
	if !ok {
		return false, nil
	}

	frame := b.frames[frameID]
	frame.TakeWriteLatch()
	defer frame.ReleaseWriteLatch()

	if err := b.logManager.Flush(frame.lsn); err != nil {
		return false, errors.Wrap(err, "forcing log before page write")
	}
	if err := b.diskManager.WritePage(frame); err != nil {
		return false, errors.Wrap(err, "writing page")
	}
	frame.isDirty = false
	return true, nil
}

// DeletePage removes pageID from the buffer pool and asks the disk manager
// to deallocate it. A pinned page cannot be deleted and is reported as
// false with no deallocation attempted. Deleting an id that was never
// resident still attempts deallocation and returns true (idempotent).
func (b *BufferPoolManager) DeletePage(pageID PageID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameID, ok := b.pageTable[pageID]
	if !ok {
		if err := b.diskManager.DeallocatePage(pageID); err != nil {
			return false, errors.Wrap(err, "deallocating page")
		}
		return true, nil
	}

	frame := b.frames[frameID]
	frame.TakeReadLatch()
	pinned := frame.pinCount != 0
	frame.ReleaseReadLatch()
	if pinned {
		b.logger.Debugf("DeletePage(%d): still pinned, refusing", pageID)
		return false, nil
	}

	frame.isDirty = false // the page is going away; skip its write-back
	b.replacer.Pin(frameID)
	if err := b.wipeFrame(frameID); err != nil {
		return false, err
	}
	if err := b.diskManager.DeallocatePage(pageID); err != nil {
		return false, errors.Wrap(err, "deallocating page")
	}
	return true, nil
}

// FlushAllPages writes every resident page's bytes to disk and clears
// their dirty flags. Intended for checkpointing.
func (b *BufferPoolManager) FlushAllPages() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, frame := range b.frames {
		if frame == nil || frame.pageID == InvalidPageID {
			continue
		}
		frame.TakeWriteLatch()
		err := b.flushFrameLocked(frame)
		frame.ReleaseWriteLatch()
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *BufferPoolManager) flushFrameLocked(frame *Frame) error {
	if err := b.logManager.Flush(frame.lsn); err != nil {
		return errors.Wrap(err, "forcing log before page write")
	}
	if err := b.diskManager.WritePage(frame); err != nil {
		return errors.Wrap(err, "writing page")
	}
	frame.isDirty = false
	return nil
}

// victimizeFrame asks the replacer for a victim, writes it back if dirty,
// and returns it to the free list. Callers must hold b.mu.
func (b *BufferPoolManager) victimizeFrame() (bool, error) {
	frameID, ok := b.replacer.Victim()
	if !ok {
		return false, nil
	}
	if err := b.wipeFrame(frameID); err != nil {
		return false, err
	}
	return true, nil
}

// wipeFrame writes back frameID's occupant if dirty, detaches it from the
// page table, releases the Frame object, and returns frameID to the free
// list. Used by NewPage, FetchPage's miss path (via victimizeFrame), and
// DeletePage. Callers must hold b.mu.
func (b *BufferPoolManager) wipeFrame(frameID FrameID) error {
	frame := b.frames[frameID]
	if frame != nil {
		if frame.isDirty {
			if err := b.logManager.Flush(frame.lsn); err != nil {
				return errors.Wrap(err, "forcing log before write-back")
			}
			if err := b.diskManager.WritePage(frame); err != nil {
				return errors.Wrap(err, "writing back dirty frame")
			}
		}
		delete(b.pageTable, frame.pageID)
		frame.ResetMemory()
		releaseFrame(frame)
	}
	b.frames[frameID] = nil
	b.freeList = append(b.freeList, frameID)
	return nil
}

// OnDiskSize reports the backing disk manager's current footprint.
func (b *BufferPoolManager) OnDiskSize() int64 {
	return b.diskManager.FileSize()
}

// FreeFrames reports how many frames are currently unoccupied.
func (b *BufferPoolManager) FreeFrames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.freeList)
}

// ReplacerSize reports how many frames are currently victimizable.
func (b *BufferPoolManager) ReplacerSize() int {
	return b.replacer.Size()
}

// Dump prints the resident pages in the pool, for interactive debugging.
func (b *BufferPoolManager) Dump() {
	b.mu.Lock()
	defer b.mu.Unlock()

	fmt.Println("---------------------------------------------------------------")
	fmt.Println("BUFFER POOL")
	for frameID, frame := range b.frames {
		if frame == nil {
			continue
		}
		fmt.Printf("frame %d: page=%d pin=%d dirty=%t\n", frameID, frame.pageID, frame.pinCount, frame.isDirty)
	}
	fmt.Println("---------------------------------------------------------------")
}

// Close closes the underlying disk manager.
func (b *BufferPoolManager) Close() error {
	return b.diskManager.Close()
}
