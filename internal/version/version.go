package version

// Version is the engine build version, set with
// -ldflags "-X github.com/rxtech-lab/argo-strategy/internal/version.Version=1.2.3".
// "main" marks a development build.
var Version = "v1.2.0"

// GetVersion returns the engine build version.
func GetVersion() string {
	return Version
}
