// Command cmtdata assembles windowed waveform measurements for moment-tensor
// inversion: it ingests window files with either storage backend, reports a
// container summary, and re-exports updated synthetics.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
