// Package buildinfo holds version information injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/watchfire-io/taskgraph/internal/buildinfo.Version=1.2.0" ./cmd/taskgraph
package buildinfo

var (
	Version    = "dev"
	Codename   = "unknown"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)
