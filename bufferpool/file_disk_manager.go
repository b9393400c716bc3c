// Copyright 2023 Molecula Corp. All rights reserved.
package bufferpool

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/yiyangc91/bustub/errors"
)

// checksumLen is the width of the xxhash prefix FileDiskManager stores
// ahead of each page's bytes. Grounded on the unused PAGE_CHECKSUM header
// offset in the teacher's page.go (offset 32, length 4) — here widened to
// a full 64-bit xxhash sum stored out-of-band from the page payload rather
// than packed into the page header, so PageSize stays a clean power of two.
const checksumLen = 8

// FileDiskManager is a DiskManager backed by a single on-disk file, one
// record of (checksum || page bytes) per page id. Grounded on
// ondiskdiskmanager.go's TupleStoreDiskManager, simplified from its
// sharded ObjectID/Shard keying to the flat page id §6 requires, and
// enriched with a per-page xxhash checksum to detect on-disk corruption.
type FileDiskManager struct {
	mu       sync.Mutex
	fd       *os.File
	numPages int64
}

// NewFileDiskManager opens (creating if necessary) the file at path as the
// backing store for a buffer pool.
func NewFileDiskManager(path string) (*FileDiskManager, error) {
	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "opening disk manager file")
	}
	info, err := fd.Stat()
	if err != nil {
		_ = fd.Close()
		return nil, errors.Wrap(err, "statting disk manager file")
	}
	recordLen := int64(checksumLen + PageSize)
	return &FileDiskManager{
		fd:       fd,
		numPages: info.Size() / recordLen,
	}, nil
}

func (d *FileDiskManager) recordOffset(pageID PageID) int64 {
	return int64(pageID) * int64(checksumLen+PageSize)
}

// ReadPage implements DiskManager, verifying the stored checksum and
// surfacing a coded error on mismatch.
func (d *FileDiskManager) ReadPage(pageID PageID) (*Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	offset := d.recordOffset(pageID)
	var header [checksumLen]byte
	if _, err := d.fd.ReadAt(header[:], offset); err != nil {
		return nil, errors.Wrap(err, "reading page checksum")
	}

	frame := acquireFrame()
	frame.pageID = pageID
	if _, err := d.fd.ReadAt(frame.data[:], offset+checksumLen); err != nil {
		releaseFrame(frame)
		return nil, errors.Wrap(err, "reading page bytes")
	}

	want := binary.BigEndian.Uint64(header[:])
	got := xxhash.Sum64(frame.data[:])
	if want != got {
		releaseFrame(frame)
		return nil, errors.New(errors.ErrCorruptPage, fmt.Sprintf("page %d failed checksum verification", pageID))
	}
	return frame, nil
}

// WritePage implements DiskManager, prefixing the page with a fresh
// checksum of its bytes.
func (d *FileDiskManager) WritePage(frame *Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	offset := d.recordOffset(frame.ID())
	var header [checksumLen]byte
	binary.BigEndian.PutUint64(header[:], xxhash.Sum64(frame.data[:]))

	if _, err := d.fd.WriteAt(header[:], offset); err != nil {
		return errors.Wrap(err, "writing page checksum")
	}
	if _, err := d.fd.WriteAt(frame.data[:], offset+checksumLen); err != nil {
		return errors.Wrap(err, "writing page bytes")
	}
	return nil
}

// AllocatePage implements DiskManager, returning fresh monotonically
// increasing page ids starting at 0.
func (d *FileDiskManager) AllocatePage() (PageID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pageID := PageID(d.numPages)
	d.numPages++
	return pageID, nil
}

// DeallocatePage implements DiskManager. This implementation never reclaims
// disk space for a deallocated page id; it is simply never read again.
func (d *FileDiskManager) DeallocatePage(pageID PageID) error {
	return nil
}

// FileSize implements DiskManager.
func (d *FileDiskManager) FileSize() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.numPages * int64(checksumLen+PageSize)
}

// Close implements DiskManager.
func (d *FileDiskManager) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fd.Close(); err != nil {
		return errors.Wrap(err, "closing disk manager file")
	}
	return nil
}

var _ DiskManager = (*FileDiskManager)(nil)
