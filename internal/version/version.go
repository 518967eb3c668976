// Package version holds the build version, overridable at link time with
// -ldflags "-X motifscan/internal/version.Version=...".
package version

var Version = "0.1.0"
