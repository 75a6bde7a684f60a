package progress

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StepSpec declares one data-gathering step an agent type performs. Label
// and Color are presentation only.
type StepSpec struct {
	ServiceID string `yaml:"service_id"`
	Label     string `yaml:"label"`
	Color     string `yaml:"color,omitempty"`
}

// Config maps agent types to their fixed, ordered step lists. The set of
// services an agent type calls is static configuration, never discovered at
// runtime.
type Config struct {
	Agents map[string][]StepSpec `yaml:"agents"`
}

// DefaultConfig returns the compiled-in step lists.
func DefaultConfig() *Config {
	return &Config{
		Agents: map[string][]StepSpec{
			"marketing": {
				{ServiceID: "search", Label: "Web search", Color: "4"},
				{ServiceID: "keyword-trends", Label: "Keyword trends", Color: "5"},
				{ServiceID: "hashtag-lookup", Label: "Hashtag lookup", Color: "6"},
			},
			"scheduler": {
				{ServiceID: "calendar-read", Label: "Calendar lookup", Color: "4"},
				{ServiceID: "task-list", Label: "Task lookup", Color: "5"},
			},
			"general": {
				{ServiceID: "search", Label: "Web search", Color: "4"},
			},
		},
	}
}

// LoadConfig loads step configuration from a YAML file. A missing file
// falls back to defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if len(cfg.Agents) == 0 {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFromHome loads configuration from ~/.worklight/agents.yaml.
func LoadConfigFromHome() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(filepath.Join(home, ".worklight", "agents.yaml"))
}

// Validate checks that every agent type has at least one step and no
// duplicate service IDs.
func (c *Config) Validate() error {
	for agent, steps := range c.Agents {
		if len(steps) == 0 {
			return fmt.Errorf("agent type %q has no steps", agent)
		}
		seen := map[string]bool{}
		for _, s := range steps {
			if s.ServiceID == "" {
				return fmt.Errorf("agent type %q has a step with no service_id", agent)
			}
			if seen[s.ServiceID] {
				return fmt.Errorf("agent type %q repeats service_id %q", agent, s.ServiceID)
			}
			seen[s.ServiceID] = true
		}
	}
	return nil
}

// StepsFor returns the step list for an agent type, falling back to the
// "general" list for unknown types. The result is never empty: a config
// with no usable list yields the compiled-in general steps, since a
// zero-step tracker would report itself complete before the run starts.
func (c *Config) StepsFor(agentType string) []StepSpec {
	if steps, ok := c.Agents[agentType]; ok && len(steps) > 0 {
		return steps
	}
	if steps, ok := c.Agents["general"]; ok && len(steps) > 0 {
		return steps
	}
	return DefaultConfig().Agents["general"]
}
