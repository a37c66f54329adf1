package commons

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// LoadConfig reads a YAML file of configuration keys. Keys use the same
// names as the environment (SERVER_PORT, DB_DRIVER, ...); nested sections
// are flattened with underscores, so
//
//	db:
//	  driver: mysql
//
// sets DB_DRIVER.
func LoadConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	out := make(map[string]any)
	flatten("", raw, out)
	return out, nil
}

func flatten(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := strings.ToUpper(k)
		if prefix != "" {
			key = prefix + "_" + key
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = v
	}
}
