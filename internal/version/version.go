package version

// Version is overridable at build time with -ldflags.
var Version = "0.3.0"

// String returns the human-readable version.
func String() string {
	return Version
}
