package challenge

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Config Parsing
// =============================================================================

// ParseConfig decodes a challenge manifest and applies the defaulting the
// rest of the core assumes: non-nil slices, text flags for shorthand entries
// and the docker deployment type when none is given. It does not perform
// full schema validation.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse challenge config: %w", err)
	}

	if cfg.Title == "" {
		return nil, fmt.Errorf("challenge config has no title")
	}

	if cfg.Flags == nil {
		cfg.Flags = []Flag{}
	}
	if cfg.CustomServiceTypes == nil {
		cfg.CustomServiceTypes = []ServiceType{}
	}
	if cfg.PredefinedServices == nil {
		cfg.PredefinedServices = []PredefinedService{}
	}

	if cfg.Deployment != nil {
		if cfg.Deployment.Type == "" {
			cfg.Deployment.Type = DeploymentTypeDocker
		}
		if cfg.Deployment.Volumes == nil {
			cfg.Deployment.Volumes = []string{}
		}
		for i := range cfg.Deployment.Containers {
			ctr := &cfg.Deployment.Containers[i].Container
			if ctr.Services == nil {
				ctr.Services = []Service{}
			}
			if ctr.ExtraExposedPorts == nil {
				ctr.ExtraExposedPorts = []ExtraPort{}
			}
		}
	}

	return &cfg, nil
}
