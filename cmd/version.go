package cmd

import "runtime/debug"

// Version is set at build time with -ldflags "-X thoreinstein.com/tug/cmd.Version=v1.2.3".
var Version = "dev"

// GetVersion returns the build version. A `go install` build reports the
// module version when no version was set at link time.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
