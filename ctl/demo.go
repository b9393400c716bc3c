// Package ctl holds the plain command structs behind bpctl's cobra
// commands, grounded on the teacher monorepo's cmd/backup.go pattern of
// separating cobra wiring from the command's actual logic.
package ctl

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/yiyangc91/bustub/bufferpool"
	"github.com/yiyangc91/bustub/logger"
)

// DemoCommand walks a freshly built buffer pool through all six
// BufferPoolManager operations, logging each step, to give a newcomer a
// feel for the allocate/fetch/unpin/flush/delete lifecycle.
type DemoCommand struct {
	PoolSize    int
	DiskBackend string
	DataDir     string

	Stdout io.Writer
}

// Run executes the scripted walkthrough.
func (c *DemoCommand) Run() error {
	lg := logger.NewVerboseLogger(c.Stdout)

	disk, err := openDiskManager(c.DiskBackend, c.DataDir, c.PoolSize)
	if err != nil {
		return err
	}
	defer disk.Close()

	logManager := bufferpool.NewInMemLogManager()
	bpm := bufferpool.NewBufferPoolManager(c.PoolSize, disk, logManager, lg)

	pageID, frame, err := bpm.NewPage()
	if err != nil {
		return err
	}
	if frame == nil {
		return fmt.Errorf("pool exhausted with %d frames free to start", c.PoolSize)
	}
	frame.TakeWriteLatch()
	copy(frame.Data(), []byte("hello from bpctl demo"))
	frame.SetLSN(1)
	frame.ReleaseWriteLatch()

	if _, err := bpm.UnpinPage(pageID, true); err != nil {
		return err
	}
	if _, err := bpm.FlushPage(pageID); err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout, "log watermark after flush: %d\n", logManager.FlushedLSN())

	refetched, err := bpm.FetchPage(pageID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout, "round-tripped page %d: %q\n", pageID, string(refetched.Data()[:22]))
	if _, err := bpm.UnpinPage(pageID, false); err != nil {
		return err
	}

	if err := bpm.FlushAllPages(); err != nil {
		return err
	}
	fmt.Fprintln(c.Stdout, "flushed all resident pages")

	ok, err := bpm.DeletePage(pageID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout, "delete of page %d succeeded: %t\n", pageID, ok)

	fmt.Fprintf(c.Stdout, "on-disk size: %s\n", humanize.Bytes(uint64(bpm.OnDiskSize())))
	return nil
}
