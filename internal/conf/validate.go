// validate.go: settings validation
package conf

import (
	"log/slog"

	"github.com/wakin721/Neri/internal/errors"
)

// ValidateSettings checks the loaded settings for values the engine cannot
// work with. Soft problems (a missing global threshold entry) are repaired
// and logged instead of rejected, matching the engine's degrade-don't-fail
// policy for data gaps.
func ValidateSettings(settings *Settings) error {
	if settings.Thresholds == nil {
		settings.Thresholds = ThresholdMap{GlobalThresholdKey: DefaultGlobalThreshold}
		slog.Warn("thresholds missing from configuration, using default global threshold",
			"global", DefaultGlobalThreshold)
	}
	if _, ok := settings.Thresholds[GlobalThresholdKey]; !ok {
		settings.Thresholds[GlobalThresholdKey] = DefaultGlobalThreshold
		slog.Warn("threshold map has no global entry, default applied",
			"global", DefaultGlobalThreshold)
	}

	for species, threshold := range settings.Thresholds {
		if threshold < 0 || threshold > 1 {
			return errors.Newf("threshold for %q out of range: %f", species, threshold).
				Category(errors.CategoryConfiguration).
				Context("species", species).
				Build()
		}
	}

	if settings.Independence.CooldownSeconds <= 0 {
		return errors.Newf("independence cooldown must be positive, got %d",
			settings.Independence.CooldownSeconds).
			Category(errors.CategoryConfiguration).
			Build()
	}

	switch settings.Output.Format {
	case "csv", "excel":
	default:
		return errors.Newf("unsupported output format: %q", settings.Output.Format).
			Category(errors.CategoryConfiguration).
			Context("format", settings.Output.Format).
			Build()
	}

	if settings.Detection.TimeoutSeconds <= 0 {
		return errors.Newf("detection timeout must be positive, got %f",
			settings.Detection.TimeoutSeconds).
			Category(errors.CategoryConfiguration).
			Build()
	}

	return nil
}
