package main

import (
	"github.com/spf13/cobra"
	"github.com/yiyangc91/bustub/config"
)

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "bpctl",
		Short: "Exercise a buffer pool manager",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(newDemoCommand(&configPath))
	root.AddCommand(newBenchCommand(&configPath))
	return root
}

func loadConfig(path string) (config.Config, error) {
	return config.Load(path)
}
