package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the release of the dashboard and the report tool
	Version = "1.0.0"

	// APIVersion is the version of the HTTP and WebSocket API
	APIVersion = "v1"

	// DataFormatVersion names the rental export layout the loader expects
	DataFormatVersion = "clean-v1"

	ProductName = "Bike Rental Dashboard"
)

// VersionString is the one-line banner printed by the binaries.
func VersionString() string {
	return fmt.Sprintf("%s v%s", ProductName, Version)
}

// BuildString appends build metadata to VersionString. Empty fields are
// reported as unknown.
func BuildString(buildTime, buildID string) string {
	if buildTime == "" {
		buildTime = "unknown"
	}
	if buildID == "" {
		buildID = "unknown"
	}
	return fmt.Sprintf("%s (api %s, data %s, built %s, build %s, %s %s/%s)",
		VersionString(), APIVersion, DataFormatVersion, buildTime, buildID,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
