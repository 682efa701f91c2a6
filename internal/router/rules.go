package router

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Keywords are the trigger phrases of the math and lookup rules.
type Keywords struct {
	Math   []string `yaml:"math"`
	Lookup []string `yaml:"lookup"`
}

func DefaultKeywords() Keywords {
	return Keywords{
		Math:   []string{"calculate", "solve", "compute", "+", "-", "*", "/", "math", "equation"},
		Lookup: []string{"who is", "what is", "when was", "where is", "tell me about", "information about"},
	}
}

// LoadRules reads keyword overrides from a YAML file. An empty path, or a list
// the file leaves out, keeps the defaults.
func LoadRules(path string) (Keywords, error) {
	kw := DefaultKeywords()
	if path == "" {
		return kw, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return kw, fmt.Errorf("failed to read router rules: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (Keywords, error) {
	kw := DefaultKeywords()

	var file Keywords
	if err := yaml.Unmarshal(data, &file); err != nil {
		return kw, fmt.Errorf("failed to parse router rules: %w", err)
	}
	if len(file.Math) > 0 {
		kw.Math = file.Math
	}
	if len(file.Lookup) > 0 {
		kw.Lookup = file.Lookup
	}
	return kw, nil
}
