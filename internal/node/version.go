package node

// Build information, set with -ldflags "-X".
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildTime = ""
)
