// Command bpctl is an operator tool for exercising a buffer pool manager
// interactively: a scripted demo of the six operations, and a concurrency
// benchmark.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
