// Package version reports the build version, grounded on
// cmd/go-judge/version's debug.ReadBuildInfo fallback (module version
// baked in by `go install`), without that file's go:embed version.txt
// override since this repository has no version-stamping build step.
package version

import "runtime/debug"

// Version is resolved once at package init from the build info Go
// embeds in every binary built with module mode.
var Version = "unable to get version"

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	Version = info.Main.Version
}
