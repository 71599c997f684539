package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckVersionCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		engineVersion string
		recordVersion string
		expectError   bool
		errorContains string
	}{
		{name: "exact match", engineVersion: "1.2.0", recordVersion: "1.2.0"},
		{name: "patch differs", engineVersion: "1.2.0", recordVersion: "1.2.7"},
		{name: "older record minor", engineVersion: "1.4.0", recordVersion: "1.1.0"},
		{name: "v prefix", engineVersion: "v1.2.0", recordVersion: "v1.2.3"},
		{name: "development engine", engineVersion: "main", recordVersion: "9.0.0"},
		{name: "development record", engineVersion: "1.2.0", recordVersion: "main"},
		{name: "prerelease engine", engineVersion: "1.2.0-rc.1", recordVersion: "1.2.0"},
		{
			name:          "newer record minor",
			engineVersion: "1.2.0",
			recordVersion: "1.3.0",
			expectError:   true,
			errorContains: "is newer than engine",
		},
		{
			name:          "major differs",
			engineVersion: "2.0.0",
			recordVersion: "1.2.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},
		{
			name:          "invalid engine version",
			engineVersion: "not-a-version",
			recordVersion: "1.2.0",
			expectError:   true,
			errorContains: "invalid engine version",
		},
		{
			name:          "empty record version",
			engineVersion: "1.2.0",
			recordVersion: "",
			expectError:   true,
			errorContains: "invalid strategy version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVersionCompatibility(tt.engineVersion, tt.recordVersion)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
