// Package version holds the memodex build version.
package version

// Version is the current release. Overridable at build time with
// -ldflags "-X github.com/harukit/memodex/pkg/version.Version=...".
var Version = "0.3.0"
