package config

import (
	"fmt"
	"os"
	"regexp"
)

// envRefPattern matches ${VAR} and ${VAR:-default}
var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// ExpandEnv expands environment variable references in a string value.
// Supports:
//   - ${VAR} - required variable (error if not set or empty)
//   - ${VAR:-default} - optional with default value
//
// Defaults are taken literally; they are not expanded a second time.
func ExpandEnv(value string) (string, error) {
	var missing []string

	result := envRefPattern.ReplaceAllStringFunc(value, func(match string) string {
		sub := envRefPattern.FindStringSubmatch(match)
		name, hasDefault, def := sub[1], sub[2] != "", sub[3]

		if val, ok := os.LookupEnv(name); ok && val != "" {
			return val
		}
		if hasDefault {
			return def
		}

		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("required environment variable(s) not set: %v", missing)
	}

	return result, nil
}
