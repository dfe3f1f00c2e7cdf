// config.go: settings for the occurrence engine. Defines the settings
// structs and the functions to load and persist them.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/wakin721/Neri/internal/errors"
)

// DefaultGlobalThreshold is the fallback confidence cutoff used when the
// threshold map carries no usable "global" entry.
const DefaultGlobalThreshold = 0.25

// GlobalThresholdKey is the required fallback key of the threshold map.
const GlobalThresholdKey = "global"

// ThresholdMap maps a species name to the minimum confidence a raw detection
// needs to count toward that species. The "global" entry is the fallback for
// species without their own entry.
type ThresholdMap map[string]float64

// Lookup resolves the effective threshold for a species. A nil or empty map
// degrades to DefaultGlobalThreshold rather than failing.
func (tm ThresholdMap) Lookup(species string) float64 {
	if tm == nil {
		return DefaultGlobalThreshold
	}
	if t, ok := tm[species]; ok {
		return t
	}
	if t, ok := tm[GlobalThresholdKey]; ok {
		return t
	}
	return DefaultGlobalThreshold
}

// LogSettings controls the structured log file sink.
type LogSettings struct {
	Enabled    bool   // true to write structured logs to a file
	Path       string // log file path
	MaxSize    int    // rotation size in megabytes
	MaxBackups int    // rotated files to retain
}

// MainSettings contains application level settings.
type MainSettings struct {
	Name string      // application name used in logs
	Log  LogSettings // log file settings
}

// DetectionSettings describes the external detector invocation. The detector
// itself is a pluggable collaborator; only its parameters live here.
type DetectionSettings struct {
	ModelPath      string  // path to the detection model handed to the detector
	TimeoutSeconds float64 // upper bound for a single detector call
	IOU            float64 // NMS intersection-over-union passed to the detector
	Confidence     float64 // detector-side minimum confidence for emitted boxes
}

// IndependenceSettings controls the independent-event cooldown window.
type IndependenceSettings struct {
	CooldownSeconds int // same species seen again within this window is the same visit
}

// TaxonomySettings locates the reference species lists.
type TaxonomySettings struct {
	BirdListPath     string   // spreadsheet whose third column lists known bird names
	PersonnelAliases []string // species names classified as personnel
}

// SQLiteSettings controls the optional occurrence database output.
type SQLiteSettings struct {
	Enabled bool   // true to also materialize occurrences into SQLite
	Path    string // database file path
}

// OutputSettings controls the export artifacts.
type OutputSettings struct {
	Format string         // "csv" or "excel"
	SQLite SQLiteSettings // optional database materialization
}

// InputSettings locates the processing batch on disk.
type InputSettings struct {
	SourceDir   string // directory with the original camera-trap images
	ArtifactDir string // directory with per-image detection JSON artifacts
}

// Settings is the root configuration of the application.
type Settings struct {
	Debug bool // true to enable debug logging

	Main         MainSettings
	Detection    DetectionSettings
	Thresholds   ThresholdMap // per-species confidence thresholds with "global" fallback
	Independence IndependenceSettings
	Taxonomy     TaxonomySettings
	Output       OutputSettings
	Input        InputSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment into a Settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// Setting returns the loaded settings instance, or nil before Load.
func Setting() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file yet, create one with defaults.
			return createDefaultConfig(configPaths)
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the default configuration to the first default
// config path and loads it back through viper.
func createDefaultConfig(configPaths []string) error {
	if len(configPaths) == 0 {
		return errors.Newf("no config paths available").
			Category(errors.CategoryConfiguration).
			Build()
	}

	configPath := filepath.Join(configPaths[0], "config.yaml")
	if err := os.MkdirAll(configPaths[0], 0o755); err != nil {
		return errors.New(err).
			Category(errors.CategoryConfiguration).
			FileContext(configPaths[0]).
			Build()
	}

	out, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "marshal-default-config").
			Build()
	}

	if err := os.WriteFile(configPath, out, 0o644); err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			FileContext(configPath).
			Build()
	}

	return viper.ReadInConfig()
}

// SaveThresholds persists an updated threshold map back to the loaded
// configuration file so later runs pick the adjusted values up.
func SaveThresholds(thresholds ThresholdMap) error {
	viper.Set("thresholds", map[string]float64(thresholds))
	if err := viper.WriteConfig(); err != nil {
		return errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "save-thresholds").
			Build()
	}

	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	if settingsInstance != nil {
		settingsInstance.Thresholds = thresholds
	}
	return nil
}
