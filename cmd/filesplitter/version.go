// Copyright (c) 2025 The FileSplitter developers

package main

import "fmt"

const (
	// appName is the name shown in version and help output.
	appName = "filesplitter"

	// appMajor is application major version
	appMajor = 0

	// appMinor is application minor version
	appMinor = 6

	// appPatch is application patch version
	appPatch = 0
)

// appBuild may be set at link time with -ldflags "-X main.appBuild=...".
var appBuild string

// version returns the version as major.minor.patch, with the build metadata
// appended when present.
func version() string {
	v := fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
	if appBuild != "" {
		v += "+" + appBuild
	}
	return v
}
