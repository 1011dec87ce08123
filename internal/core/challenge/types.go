package challenge

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Config Types
// =============================================================================

// Config is the normalized challenge configuration. It is constructed once
// per invocation (by ParseConfig or an external validator) and is read-only
// afterwards: the orchestrator never writes back into it.
type Config struct {
	Title            string `yaml:"title"`
	ChallengeID      string `yaml:"challenge_id"`
	FlagFormatPrefix string `yaml:"flag_format_prefix"`
	FlagFormatSuffix string `yaml:"flag_format_suffix"`

	Flags              []Flag              `yaml:"flags"`
	CustomServiceTypes []ServiceType       `yaml:"custom_service_types"`
	PredefinedServices []PredefinedService `yaml:"predefined_services"`

	Deployment    *Deployment    `yaml:"deployment"`
	SolutionImage string         `yaml:"solution_image"`
	Custom        map[string]any `yaml:"custom"`
}

// BuildScript returns the path of the custom build script, if one is
// configured under the "custom" mapping.
func (c *Config) BuildScript() string {
	if c.Custom == nil {
		return ""
	}
	s, _ := c.Custom["build_script"].(string)
	return s
}

// =============================================================================
// Flags
// =============================================================================

// FlagType identifies how a Flag entry matches a candidate.
type FlagType string

const (
	FlagTypeText  FlagType = "text"
	FlagTypeRegex FlagType = "regex"
)

// Flag is a single flag predicate. Order among flags matters only in that the
// first matching predicate short-circuits verification.
type Flag struct {
	Type FlagType `yaml:"type"`
	Flag string   `yaml:"flag"`
}

// UnmarshalYAML accepts both the shorthand scalar form ("my_flag") and the
// explicit mapping form ({type: regex, flag: "..."}).
func (f *Flag) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		f.Type = FlagTypeText
		return value.Decode(&f.Flag)
	}

	type plain Flag
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*f = Flag(p)
	if f.Type == "" {
		f.Type = FlagTypeText
	}
	return nil
}

// =============================================================================
// Services
// =============================================================================

// ServiceType maps a service type key to its user_display template.
// Placeholders use literal {name} syntax.
type ServiceType struct {
	Type        string `yaml:"type"`
	UserDisplay string `yaml:"user_display"`
}

// PredefinedService describes an externally-fixed endpoint. It carries its
// own service type; the remaining keys form the substitution context.
type PredefinedService struct {
	Type string
	Subs map[string]string
}

// UnmarshalYAML splits the "type" key off from the substitution context.
func (p *PredefinedService) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	p.Subs = make(map[string]string, len(raw))
	for k, v := range raw {
		if k == "type" {
			p.Type = v
			continue
		}
		p.Subs[k] = v
	}
	return nil
}

// =============================================================================
// Deployment
// =============================================================================

// DeploymentTypeDocker is the only supported engine binding.
const DeploymentTypeDocker = "docker"

// Deployment declares the engine resources a challenge needs to run.
type Deployment struct {
	Type       string        `yaml:"type"`
	Containers ContainerDefs `yaml:"containers"`
	Networks   Networks      `yaml:"networks"`
	Volumes    []string      `yaml:"volumes"`
}

// ContainerDef pairs a container with its declared name. Declaration order
// equals build and start order.
type ContainerDef struct {
	Name      string
	Container Container
}

// ContainerDefs preserves the YAML mapping order of the containers block.
type ContainerDefs []ContainerDef

func (c *ContainerDefs) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("containers must be a mapping, got %s", value.Tag)
	}
	defs := make(ContainerDefs, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var def ContainerDef
		if err := value.Content[i].Decode(&def.Name); err != nil {
			return err
		}
		if err := value.Content[i+1].Decode(&def.Container); err != nil {
			return err
		}
		defs = append(defs, def)
	}
	*c = defs
	return nil
}

// Container declares one image to build and run.
type Container struct {
	// Image is a build directory, an image archive, or the name of an
	// image that already exists in the engine.
	Image             string      `yaml:"image"`
	Services          []Service   `yaml:"services"`
	ExtraExposedPorts []ExtraPort `yaml:"extra_exposed_ports"`
}

// Service is a single network-reachable endpoint exposed by a container.
// ExternalPort 0 means "assign from the allocator at start time".
type Service struct {
	Type         string `yaml:"type"`
	InternalPort int    `yaml:"internal_port"`
	ExternalPort int    `yaml:"external_port"`
}

// ExtraPort is an additional exposed port. Both sides are always explicit;
// extra ports never go through the allocator.
type ExtraPort struct {
	InternalPort int `yaml:"internal_port"`
	ExternalPort int `yaml:"external_port"`
}

// =============================================================================
// Networks
// =============================================================================

// Network is one declared network. Build consumes only Name; start consumes
// Members to decide which containers to attach.
type Network struct {
	Name    string
	Members []string
}

// HasMember reports whether the named container must attach to this network.
func (n Network) HasMember(container string) bool {
	for _, m := range n.Members {
		if m == container {
			return true
		}
	}
	return false
}

// Networks accepts both declaration shapes: a plain list of names to
// pre-create, or a mapping from name to the list of member containers.
type Networks []Network

func (n *Networks) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		nets := make(Networks, 0, len(names))
		for _, name := range names {
			nets = append(nets, Network{Name: name})
		}
		*n = nets
		return nil

	case yaml.MappingNode:
		nets := make(Networks, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			var net Network
			if err := value.Content[i].Decode(&net.Name); err != nil {
				return err
			}
			if err := value.Content[i+1].Decode(&net.Members); err != nil {
				return err
			}
			nets = append(nets, net)
		}
		*n = nets
		return nil
	}
	return fmt.Errorf("networks must be a list or a mapping, got %s", value.Tag)
}
