package common

import (
	"fmt"
	"runtime"
)

const (
	// Application information
	ProjectName    = "TradeOracle Signal Bot"
	ProjectVersion = "1.0.0"
	ProjectRepo    = "github.com/tradeoracle/signal-bot"

	// Build information - overridden during build via -ldflags
	BuildDate   = "dev"
	BuildCommit = "dev"
)

// VersionInfo contains version and build information
type VersionInfo struct {
	ProjectName  string `json:"project_name"`
	Version      string `json:"version"`
	BuildDate    string `json:"build_date"`
	BuildCommit  string `json:"build_commit"`
	GoVersion    string `json:"go_version"`
	Architecture string `json:"architecture"`
	Repository   string `json:"repository"`
}

// GetVersionInfo returns complete version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		ProjectName:  ProjectName,
		Version:      ProjectVersion,
		BuildDate:    BuildDate,
		BuildCommit:  BuildCommit,
		GoVersion:    runtime.Version(),
		Architecture: runtime.GOOS + "/" + runtime.GOARCH,
		Repository:   ProjectRepo,
	}
}

// PrintVersion prints version information in a formatted way
func PrintVersion(appName string) {
	info := GetVersionInfo()

	fmt.Printf("%s v%s\n", appName, info.Version)
	fmt.Printf("Build: %s (%s)\n", info.BuildCommit, info.BuildDate)
	fmt.Printf("Go: %s (%s)\n", info.GoVersion, info.Architecture)
}

// GetFullVersion returns a full version string with build info
func GetFullVersion() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s-%s (%s)", info.Version, info.BuildCommit, info.BuildDate)
}
