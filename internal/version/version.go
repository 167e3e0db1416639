// Package version holds build metadata. BuildDate is set at link time:
//
//	go build -ldflags "-X runners-bot/internal/version.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

var (
	AppName        = "Runners Org Bot"
	AppDescription = "Moderation and rank management for the Runners Org server"
	BuildDate      = ""
	GoVersion      = runtime.Version()
)

// String renders the build line shown at startup and by --version.
func String() string {
	built := BuildDate
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("%s (built %s, %s)", AppName, built, GoVersion)
}
