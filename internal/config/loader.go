package config

import (
	"os"
	"path/filepath"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "leapxfer.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "leapxfer.yml"

// FindConfigFile returns the first config file found in dirs, in order.
// Returns empty string if none is found.
func FindConfigFile(dirs ...string) string {
	for _, dir := range dirs {
		for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}
