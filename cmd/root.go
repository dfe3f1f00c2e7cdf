package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wakin721/Neri/cmd/correct"
	"github.com/wakin721/Neri/cmd/export"
	"github.com/wakin721/Neri/cmd/mark"
	"github.com/wakin721/Neri/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "neri",
		Short: "Neri camera-trap occurrence engine",
		Long: "Neri converts per-image camera-trap detections into a deduplicated " +
			"wildlife-occurrence table with operator corrections preserved.",
	}

	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		export.Command(settings),
		correct.Command(settings),
		mark.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags configures the global flags shared by every subcommand.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVar(&settings.Debug, "debug", settings.Debug,
		"Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Input.SourceDir, "source", settings.Input.SourceDir,
		"Directory with the original camera-trap images")
	rootCmd.PersistentFlags().StringVar(&settings.Input.ArtifactDir, "artifacts", settings.Input.ArtifactDir,
		"Directory with per-image detection JSON artifacts")
}
