package ctl

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yiyangc91/bustub/bufferpool"
)

// openDiskManager builds the DiskManager bpctl's commands run against,
// selecting between the in-memory spilling implementation and the
// on-disk, checksummed implementation.
func openDiskManager(backend string, dataDir string, poolSize int) (bufferpool.DiskManager, error) {
	switch backend {
	case "", "mem":
		return bufferpool.NewMemDiskManager(poolSize), nil
	case "file":
		dir := dataDir
		if dir == "" {
			var err error
			dir, err = os.MkdirTemp("", "bpctl-data")
			if err != nil {
				return nil, fmt.Errorf("creating data dir: %w", err)
			}
		}
		return bufferpool.NewFileDiskManager(filepath.Join(dir, "bpctl.pages"))
	default:
		return nil, fmt.Errorf("unknown disk backend %q (want mem or file)", backend)
	}
}
