package trust

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDomainTable reads the ranked domain table from the keywords config
// file. Returns nil (so the caller falls back to the built-in table) when
// the file has no domains section.
func LoadDomainTable(path string) ([]DomainTrust, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords config: %w", err)
	}

	var cfg struct {
		Domains []DomainTrust `yaml:"domains"`
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse keywords config: %w", err)
	}
	return cfg.Domains, nil
}
