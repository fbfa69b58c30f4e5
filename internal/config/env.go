package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFiles merges dotenv files into the process environment.
//
// Missing files are skipped; variables already set in the environment win.
func LoadEnvFiles(paths []string) []Warning {
	warnings := make([]Warning, 0)
	for _, raw := range paths {
		path := ExpandUserPath(raw)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				warnings = append(warnings, Warning{Message: fmt.Sprintf("env file %q: %v", path, err)})
			}
			continue
		}
		if err := godotenv.Load(path); err != nil {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("env file %q: %v", path, err)})
		}
	}
	return warnings
}

// Credential reads a trimmed credential from the named environment variable.
func Credential(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	value := strings.TrimSpace(os.Getenv(name))
	return value, value != ""
}
