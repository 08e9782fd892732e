package version

// Set with -ldflags "-X github.com/rootstatus/rootstatus/pkg/version.Version=...".
var (
	Version   = "v0.0.0-dev"
	GitCommit = "unknown"
)
