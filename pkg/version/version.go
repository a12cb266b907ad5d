// Package version carries the build metadata stamped into the binary at
// link time via -ldflags "-X".
package version

var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)
