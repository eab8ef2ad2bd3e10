package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/framerelay/internal/shared/types"
)

// LoadRequestDefaults reads per-kind request defaults from a YAML file:
//
//	rest:
//	  method: get
//	  headers: {Content-Type: application/json}
//	fetch:
//	  options: {credentials: include}
func LoadRequestDefaults(path string) (map[types.RequestKind]types.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request defaults: %w", err)
	}
	return ParseRequestDefaults(data)
}

// ParseRequestDefaults parses the YAML form of LoadRequestDefaults.
func ParseRequestDefaults(data []byte) (map[types.RequestKind]types.Request, error) {
	var raw map[string]types.Request
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse request defaults: %w", err)
	}

	out := make(map[types.RequestKind]types.Request, len(raw))
	for name, req := range raw {
		kind := types.RequestKind(name)
		if !kind.Valid() {
			return nil, fmt.Errorf("failed to parse request defaults: unknown request kind %q", name)
		}
		out[kind] = req
	}
	return out, nil
}
