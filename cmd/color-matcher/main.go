package main

import "github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/cli"

// Version information - set by ldflags during build
var (
	Version   = ""
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cli.Execute(cli.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	})
}
