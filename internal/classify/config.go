package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads classifier policy from the keywords config file.
// Sections left empty in the file keep their defaults (see New).
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read keywords config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse keywords config: %w", err)
	}
	return cfg, nil
}
