//go:build !windows

package cmd

import (
	"os"

	"golang.org/x/sys/unix"
)

// shutdownSignals cancel the command context.
var shutdownSignals = []os.Signal{os.Interrupt, unix.SIGTERM, unix.SIGHUP}
