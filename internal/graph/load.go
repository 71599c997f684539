package graph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-strategy/internal/version"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is the strategy record version this engine understands.
const SchemaVersion = "1.2.0"

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Load reads a strategy file. The format is picked from the extension and
// defaults to JSON.
func Load(path string) (*Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStrategyLoadFailed, err, "failed to read strategy %s", path)
	}

	format := FormatJSON

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}

	return Parse(data, format)
}

// Parse decodes a strategy record. YAML is normalised through JSON so both
// formats share the editor-compatible node decoding.
func Parse(data []byte, format Format) (*Strategy, error) {
	if format == FormatYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStrategyParseFailed, "invalid strategy yaml", err)
		}

		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStrategyParseFailed, "strategy yaml is not representable as json", err)
		}

		data = converted
	}

	var s Strategy
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyParseFailed, "invalid strategy json", err)
	}

	if s.Version != "" {
		if err := version.CheckVersionCompatibility(SchemaVersion, s.Version); err != nil {
			return nil, errors.Wrap(errors.ErrCodeVersionMismatch, "unsupported strategy version", err)
		}
	}

	return &s, nil
}
