package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Populated by goreleaser through -ldflags. Empty in a plain `go build`,
// in which case the values fall back to module build info.
var (
	version = ""
	commit  = ""
	date    = ""
)

// vcsSetting looks up one key in the binary's embedded VCS metadata.
func vcsSetting(key string) string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range buildInfo.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// getVersion resolves the release version, preferring ldflags.
func getVersion() string {
	if version != "" {
		return version
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok && buildInfo.Main.Version != "" {
		return buildInfo.Main.Version
	}
	return "(devel)"
}

// getCommit resolves the short VCS revision, preferring ldflags.
func getCommit() string {
	if commit != "" {
		return commit
	}
	if rev := vcsSetting("vcs.revision"); rev != "" {
		if len(rev) > 7 {
			return rev[:7]
		}
		return rev
	}
	return "unknown"
}

// getDate resolves the build timestamp, preferring ldflags.
func getDate() string {
	if date != "" {
		return date
	}
	if t := vcsSetting("vcs.time"); t != "" {
		return t
	}
	return "unknown"
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of leakspider.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "leakspider version %s\n", getVersion())
			fmt.Fprintf(out, "  commit: %s\n", getCommit())
			fmt.Fprintf(out, "  built:  %s\n", getDate())
		},
	}
}
