// utils.go: OS specific configuration path helpers
package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/wakin721/Neri/internal/errors"
)

const osWindows = "windows"

// GetDefaultConfigPaths returns the OS specific default configuration
// directories, most specific first.
func GetDefaultConfigPaths() ([]string, error) {
	var configPaths []string

	exePath, err := os.Executable()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "get-executable-path").
			Build()
	}
	exeDir := filepath.Dir(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "get-home-directory").
			Build()
	}

	switch runtime.GOOS {
	case osWindows:
		configPaths = []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", "neri"),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "neri"),
			"/etc/neri",
		}
	}

	return configPaths, nil
}
