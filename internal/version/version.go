package version

import (
	"runtime"
	"time"
)

// AppName is used in logs, the CLI and the token issuer default.
const AppName = "smartbookmark"

var (
	Version   = "dev"                           // ex: v0.1.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version()               // go version
)

// String renders the build info on one line.
func String() string {
	return AppName + " " + Version + " (" + Commit + ", " + BuildDate + ", " + GoVersion + ")"
}
