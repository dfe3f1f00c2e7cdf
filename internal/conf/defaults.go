// defaults.go: default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "Neri")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "neri.log")
	viper.SetDefault("main.log.maxsize", 10)
	viper.SetDefault("main.log.maxbackups", 3)

	viper.SetDefault("detection.modelpath", "model/neri.onnx")
	viper.SetDefault("detection.timeoutseconds", 10.0)
	viper.SetDefault("detection.iou", 0.3)
	viper.SetDefault("detection.confidence", 0.25)

	viper.SetDefault("thresholds", map[string]float64{
		GlobalThresholdKey: DefaultGlobalThreshold,
	})

	// 30 minutes is the customary camera-trap independence interval.
	viper.SetDefault("independence.cooldownseconds", 1800)

	viper.SetDefault("taxonomy.birdlistpath", "res/中国鸟类名录.xlsx")
	viper.SetDefault("taxonomy.personnelaliases", []string{"人", "牧民", "人员"})

	viper.SetDefault("output.format", "excel")
	viper.SetDefault("output.sqlite.enabled", false)
	viper.SetDefault("output.sqlite.path", "occurrences.db")

	viper.SetDefault("input.sourcedir", "")
	viper.SetDefault("input.artifactdir", "")
}
