//go:build windows

package cmd

import (
	"os"
)

// shutdownSignals cancel the command context. Windows only delivers
// os.Interrupt.
var shutdownSignals = []os.Signal{os.Interrupt}
