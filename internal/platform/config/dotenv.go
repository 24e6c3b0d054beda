package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles are tried in order by LoadDotEnv when no files are given
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadDotEnv merges dotenv files into the process environment
// variables already set win and missing files are skipped
// it must not log since the logger reads LOG_* on first use
func LoadDotEnv(files ...string) ([]string, error) {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}
	var loaded []string
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, err
		}
		loaded = append(loaded, f)
	}
	return loaded, nil
}
