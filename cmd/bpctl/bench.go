package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/yiyangc91/bustub/ctl"
)

func newBenchCommand(configPath *string) *cobra.Command {
	cmd := &ctl.BenchCommand{Stdout: os.Stdout}

	ccmd := &cobra.Command{
		Use:   "bench",
		Short: "Hammer a shared buffer pool with concurrent goroutines",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.PoolSize == 0 {
				cmd.PoolSize = cfg.PoolSize
			}
			if cmd.DiskBackend == "" {
				cmd.DiskBackend = cfg.DiskBackend
			}
			if cmd.DataDir == "" {
				cmd.DataDir = cfg.DataDir
			}
			if cmd.Threads == 0 {
				cmd.Threads = 100
			}
			return cmd.Run()
		},
	}

	flags := ccmd.Flags()
	flags.IntVar(&cmd.PoolSize, "pool-size", 0, "number of frames in the pool (0: use config default)")
	flags.IntVar(&cmd.Threads, "threads", 0, "number of concurrent goroutines (0: default 100)")
	flags.StringVar(&cmd.DiskBackend, "disk", "", "disk backend: mem or file (empty: use config default)")
	flags.StringVar(&cmd.DataDir, "data-dir", "", "directory for the file disk backend (empty: use config default)")
	return ccmd
}
