package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// RuleOverrides extends the built-in static tables used during normalization.
//
//	categories:
//	  국내산: 원산지
//	renames:
//	  재료 종류: 재료
type RuleOverrides struct {
	Categories map[string]string `yaml:"categories"`
	Renames    map[string]string `yaml:"renames"`
}

// LoadRuleOverrides reads a YAML overrides file. An empty path yields empty overrides.
func LoadRuleOverrides(path string) (*RuleOverrides, error) {
	overrides := &RuleOverrides{}
	if path == "" {
		return overrides, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(b, overrides); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}
	for k, v := range overrides.Categories {
		if k == "" || v == "" {
			return nil, fmt.Errorf("rules file %s: empty category entry %q:%q", path, k, v)
		}
	}
	for k, v := range overrides.Renames {
		if k == "" || v == "" {
			return nil, fmt.Errorf("rules file %s: empty rename entry %q:%q", path, k, v)
		}
	}
	return overrides, nil
}
