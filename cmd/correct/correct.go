// Package correct implements the correct subcommand: apply an operator
// correction to one record's artifact and flag it in the validation state.
package correct

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wakin721/Neri/internal/analysis/processor"
	"github.com/wakin721/Neri/internal/conf"
	"github.com/wakin721/Neri/internal/detection"
	"github.com/wakin721/Neri/internal/taxonomy"
)

// Command creates the correct command.
func Command(settings *conf.Settings) *cobra.Command {
	var correction processor.Correction

	cmd := &cobra.Command{
		Use:   "correct [image-filename]",
		Short: "Apply an operator correction to one record",
		Long: "Overrides a record's species fields with operator-supplied values. " +
			"The record is marked manually verified and automatic re-derivation " +
			"no longer touches its species names or counts.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorrect(settings, args[0], correction)
		},
	}

	cmd.Flags().StringVar(&correction.Species, "species", "",
		"Corrected species names, comma separated ("+detection.EmptySentinel+" for none)")
	cmd.Flags().StringVar(&correction.Count, "count", "",
		"Corrected counts, comma separated; blank keeps the summed prior count")
	cmd.Flags().StringVar(&correction.Remark, "remark", "", "Operator remark")
	_ = cmd.MarkFlagRequired("species")

	return cmd
}

func runCorrect(settings *conf.Settings, imageFilename string, correction processor.Correction) error {
	if settings.Input.ArtifactDir == "" {
		return fmt.Errorf("--artifacts must be set")
	}

	artifactPath := detection.ArtifactPath(settings.Input.ArtifactDir, imageFilename)
	rec, err := detection.LoadArtifact(artifactPath)
	if err != nil {
		return fmt.Errorf("loading record: %w", err)
	}
	rec.Filename = imageFilename

	tax := taxonomy.Load(settings.Taxonomy.BirdListPath, settings.Taxonomy.PersonnelAliases)
	proc := processor.New(settings, tax)

	if err := proc.ApplyCorrection(rec, correction); err != nil {
		return fmt.Errorf("correction rejected: %w", err)
	}

	if err := detection.SaveArtifact(rec, artifactPath); err != nil {
		return fmt.Errorf("saving record: %w", err)
	}

	// A corrected record is by definition not confirmed-correct.
	state := detection.LoadValidationState(settings.Input.ArtifactDir)
	state[imageFilename] = false
	if err := detection.SaveValidationState(settings.Input.ArtifactDir, state); err != nil {
		return fmt.Errorf("saving validation state: %w", err)
	}

	fmt.Printf("Corrected %s: species=%s counts=%s\n",
		imageFilename, rec.Species.String(), rec.Counts.String())
	return nil
}
