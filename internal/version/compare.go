package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckVersionCompatibility reports whether a strategy record written for
// recordVersion can be read by an engine that understands engineVersion.
//
// Rules:
//   - "main" on either side skips the check (development builds)
//   - major versions must match
//   - the record's minor version must not be newer than the engine's, because
//     newer records may carry node subtypes this engine cannot translate
//   - patch versions are ignored
func CheckVersionCompatibility(engineVersion, recordVersion string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	recordVersion = strings.TrimPrefix(recordVersion, "v")

	if engineVersion == "main" || recordVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return fmt.Errorf("invalid engine version '%s': %w", engineVersion, err)
	}

	recordSemver, err := semver.NewVersion(recordVersion)
	if err != nil {
		return fmt.Errorf("invalid strategy version '%s': %w", recordVersion, err)
	}

	if engineSemver.Major() != recordSemver.Major() {
		return fmt.Errorf("major version mismatch: engine reads %d.x.x but strategy was written for %d.x.x",
			engineSemver.Major(), recordSemver.Major())
	}

	if recordSemver.Minor() > engineSemver.Minor() {
		return fmt.Errorf("strategy version %d.%d.x is newer than engine %d.%d.x",
			recordSemver.Major(), recordSemver.Minor(),
			engineSemver.Major(), engineSemver.Minor())
	}

	return nil
}
