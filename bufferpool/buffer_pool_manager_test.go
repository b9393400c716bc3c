package bufferpool

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestManager(t *testing.T, poolSize int) *BufferPoolManager {
	t.Helper()
	disk := NewMemDiskManager(poolSize + 64)
	bpm := NewBufferPoolManager(poolSize, disk, nil, nil)
	t.Cleanup(func() { _ = bpm.Close() })
	return bpm
}

func writeString(frame *Frame, s string) {
	frame.TakeWriteLatch()
	defer frame.ReleaseWriteLatch()
	copy(frame.Data(), []byte(s))
}

func readString(frame *Frame, n int) string {
	frame.TakeReadLatch()
	defer frame.ReleaseReadLatch()
	return string(frame.Data()[:n])
}

func TestBufferPoolManager_PoolFullThenRelease(t *testing.T) {
	bpm := newTestManager(t, 10)

	for i := 0; i < 10; i++ {
		pageID, frame, err := bpm.NewPage()
		assert.NoError(t, err)
		assert.NotNil(t, frame)
		assert.Equal(t, PageID(i), pageID)
		writeString(frame, fmt.Sprintf("page-%d", i))
	}

	for i := 0; i < 10; i++ {
		_, frame, err := bpm.NewPage()
		assert.NoError(t, err)
		assert.Nil(t, frame, "pool should be exhausted while every frame is pinned")
	}

	for i := 0; i < 5; i++ {
		ok, err := bpm.UnpinPage(PageID(i), true)
		assert.NoError(t, err)
		assert.True(t, ok)
	}

	var replacementIDs []PageID
	for i := 0; i < 5; i++ {
		pageID, frame, err := bpm.NewPage()
		assert.NoError(t, err)
		assert.NotNil(t, frame, "five frames should now be victimizable")
		replacementIDs = append(replacementIDs, pageID)
	}

	// free up a frame so page 0 (evicted to make room for the replacements
	// above) can be read back in
	ok, err := bpm.UnpinPage(replacementIDs[0], false)
	assert.NoError(t, err)
	assert.True(t, ok)

	frame, err := bpm.FetchPage(0)
	assert.NoError(t, err)
	assert.NotNil(t, frame)
	assert.Equal(t, "page-0", readString(frame, 6))
}

func TestBufferPoolManager_DeletePinnedIsRejected(t *testing.T) {
	bpm := newTestManager(t, 1)

	pageID, frame, err := bpm.NewPage()
	assert.NoError(t, err)
	writeString(frame, "Hello")

	ok, err := bpm.DeletePage(pageID)
	assert.NoError(t, err)
	assert.False(t, ok)

	refetched, err := bpm.FetchPage(pageID)
	assert.NoError(t, err)
	assert.Equal(t, "Hello", readString(refetched, 5))

	// undo the pin the fetch above took, returning to the single pin NewPage
	// established
	ok, err = bpm.UnpinPage(pageID, false)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = bpm.UnpinPage(pageID, false)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = bpm.UnpinPage(pageID, false)
	assert.NoError(t, err)
	assert.False(t, ok, "unpinning an already-zero pin count is a client error")

	ok, err = bpm.DeletePage(pageID)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestBufferPoolManager_DirtyIsSticky(t *testing.T) {
	bpm := newTestManager(t, 1)

	firstID, frame, err := bpm.NewPage()
	assert.NoError(t, err)
	writeString(frame, "Hello")

	for i := 0; i < 3; i++ {
		_, err := bpm.FetchPage(firstID)
		assert.NoError(t, err)
	}

	dirtyHints := []bool{false, true, false, false}
	for _, hint := range dirtyHints {
		ok, err := bpm.UnpinPage(firstID, hint)
		assert.NoError(t, err)
		assert.True(t, ok)
	}

	secondID, secondFrame, err := bpm.NewPage()
	assert.NoError(t, err)
	assert.NotNil(t, secondFrame, "the only frame should have been victimized for the second page")

	ok, err := bpm.UnpinPage(secondID, false)
	assert.NoError(t, err)
	assert.True(t, ok)

	refetched, err := bpm.FetchPage(firstID)
	assert.NoError(t, err)
	assert.Equal(t, "Hello", readString(refetched, 5))
}

func TestBufferPoolManager_NonDirtyIsLost(t *testing.T) {
	bpm := newTestManager(t, 1)

	firstID, frame, err := bpm.NewPage()
	assert.NoError(t, err)
	writeString(frame, "Hello")

	ok, err := bpm.UnpinPage(firstID, false)
	assert.NoError(t, err)
	assert.True(t, ok)

	secondID, secondFrame, err := bpm.NewPage()
	assert.NoError(t, err)
	assert.NotNil(t, secondFrame)

	ok, err = bpm.UnpinPage(secondID, false)
	assert.NoError(t, err)
	assert.True(t, ok)

	refetched, err := bpm.FetchPage(firstID)
	assert.NoError(t, err)
	assert.NotEqual(t, "Hello", readString(refetched, 5))
}

func TestBufferPoolManager_DeleteUnknownPageStillDeallocates(t *testing.T) {
	bpm := newTestManager(t, 4)

	ok, err := bpm.DeletePage(PageID(999))
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestBufferPoolManager_UnpinUnknownPageReturnsFalse(t *testing.T) {
	bpm := newTestManager(t, 4)

	ok, err := bpm.UnpinPage(PageID(12), true)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestBufferPoolManager_ZeroPoolSize(t *testing.T) {
	bpm := newTestManager(t, 0)

	_, frame, err := bpm.NewPage()
	assert.NoError(t, err)
	assert.Nil(t, frame)

	frame, err = bpm.FetchPage(0)
	assert.NoError(t, err)
	assert.Nil(t, frame)
}

func TestBufferPoolManager_FlushDoesNotUnpin(t *testing.T) {
	bpm := newTestManager(t, 4)

	pageID, frame, err := bpm.NewPage()
	assert.NoError(t, err)
	writeString(frame, "Hello")

	ok, err := bpm.FlushPage(pageID)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, frame.PinCount(), "FlushPage must not touch pin count")
	assert.False(t, frame.IsDirty())
}

func TestBufferPoolManager_FlushForcesLogWatermark(t *testing.T) {
	disk := NewMemDiskManager(16)
	logManager := NewInMemLogManager()
	bpm := NewBufferPoolManager(4, disk, logManager, nil)
	t.Cleanup(func() { _ = bpm.Close() })

	assert.Equal(t, LSN(0), logManager.FlushedLSN())

	pageID, frame, err := bpm.NewPage()
	assert.NoError(t, err)
	writeString(frame, "Hello")
	frame.TakeWriteLatch()
	frame.SetLSN(LSN(42))
	frame.ReleaseWriteLatch()

	ok, err := bpm.FlushPage(pageID)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, LSN(42), logManager.FlushedLSN(), "FlushPage must force the log up to the frame's LSN before writing it back")
}

func TestBufferPoolManager_Concurrency(t *testing.T) {
	const poolSize = 201
	const workers = 100

	bpm := newTestManager(t, poolSize)

	hotID, hotFrame, err := bpm.NewPage()
	assert.NoError(t, err)
	writeString(hotFrame, "Hello")
	ok, err := bpm.UnpinPage(hotID, true)
	assert.NoError(t, err)
	assert.True(t, ok)

	var wg sync.WaitGroup
	wg.Add(workers)
	errs := make([]error, workers)

	for w := 0; w < workers; w++ {
		go func(worker int) {
			defer wg.Done()
			errs[worker] = runConcurrencyWorker(bpm, hotID, worker)
		}(w)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "worker %d", i)
	}

	final, err := bpm.FetchPage(hotID)
	assert.NoError(t, err)
	assert.NotEqual(t, "Hello", readString(final, 5))
	ok, err = bpm.UnpinPage(hotID, false)
	assert.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, poolSize, bpm.FreeFrames()+bpm.ReplacerSize())
}

func runConcurrencyWorker(bpm *BufferPoolManager, hotID PageID, worker int) error {
	localID, localFrame, err := bpm.NewPage()
	if err != nil {
		return err
	}
	if localFrame == nil {
		return fmt.Errorf("worker %d: pool unexpectedly exhausted", worker)
	}
	tag := fmt.Sprintf("worker-%03d-data", worker)
	writeString(localFrame, tag)

	hot, err := bpm.FetchPage(hotID)
	if err != nil {
		return err
	}
	hot.TakeWriteLatch()
	copy(hot.Data()[:5], []byte(fmt.Sprintf("w%04d", worker)))
	hot.ReleaseWriteLatch()
	if _, err := bpm.UnpinPage(hotID, true); err != nil {
		return err
	}

	secondID, secondFrame, err := bpm.NewPage()
	if err != nil {
		return err
	}
	if secondFrame == nil {
		return fmt.Errorf("worker %d: pool unexpectedly exhausted on second page", worker)
	}

	if ok, err := bpm.DeletePage(secondID); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("worker %d: delete of still-pinned page unexpectedly succeeded", worker)
	}
	if _, err := bpm.UnpinPage(secondID, false); err != nil {
		return err
	}

	if readString(localFrame, len(tag)) != tag {
		return fmt.Errorf("worker %d: local page data did not round-trip", worker)
	}
	if _, err := bpm.UnpinPage(localID, true); err != nil {
		return err
	}

	thirdID, thirdFrame, err := bpm.NewPage()
	if err != nil {
		return err
	}
	if thirdFrame != nil {
		if _, err := bpm.UnpinPage(thirdID, false); err != nil {
			return err
		}
	}

	refetchedLocal, err := bpm.FetchPage(localID)
	if err != nil {
		return err
	}
	if readString(refetchedLocal, len(tag)) != tag {
		return fmt.Errorf("worker %d: local page data did not round-trip after refetch", worker)
	}
	_, err = bpm.UnpinPage(localID, false)
	return err
}
