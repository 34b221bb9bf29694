package rules

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a rule table from a JSON file and validates it.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	return New(cfg)
}
