// Package buildinfo holds version information injected at build time via ldflags.
package buildinfo

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"

	// DebugBuild is flipped to "true" for development builds. Debug builds
	// turn programming errors (duplicate main window) into panics instead
	// of no-ops.
	DebugBuild = "false"
)

// IsDebug reports whether this is a development build.
func IsDebug() bool {
	return DebugBuild == "true" || Version == "dev"
}
