// Package version carries the build metadata of tscan.
// Every variable can be overridden at build time via -ldflags "-X".
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the analyzer.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Plain returns Version without decoration, "dev" when it is empty.
func Plain() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		return "dev"
	}
	return v
}

// Colored renders major, minor and patch in their own colors; whatever follows
// the patch number ("-dev", "+meta") stays plain. color.NoColor disables it.
func Colored() string {
	v := Plain()
	core, rest := v, ""
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		core, rest = v[:i], v[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2]) + rest
}

// Extra returns the build metadata as "commit abc123, built 2024-01-15", or
// "" for development builds.
func Extra() string {
	var parts []string
	if c := strings.TrimSpace(GitCommit); c != "" {
		parts = append(parts, "commit "+c)
	}
	if d := strings.TrimSpace(BuildDate); d != "" {
		parts = append(parts, "built "+d)
	}
	return strings.Join(parts, ", ")
}
