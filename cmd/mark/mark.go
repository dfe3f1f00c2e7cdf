// Package mark implements the mark subcommand: record a review verdict for
// one image in the batch validation state.
package mark

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wakin721/Neri/internal/conf"
	"github.com/wakin721/Neri/internal/detection"
)

// Command creates the mark command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "mark [image-filename] [correct|wrong]",
		Short: "Record a review verdict for one image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMark(settings, args[0], args[1])
		},
	}
}

func runMark(settings *conf.Settings, imageFilename, verdict string) error {
	if settings.Input.ArtifactDir == "" {
		return fmt.Errorf("--artifacts must be set")
	}

	var correct bool
	switch verdict {
	case "correct":
		correct = true
	case "wrong":
		correct = false
	default:
		return fmt.Errorf("verdict must be correct or wrong, got %q", verdict)
	}

	state := detection.LoadValidationState(settings.Input.ArtifactDir)
	state[imageFilename] = correct
	if err := detection.SaveValidationState(settings.Input.ArtifactDir, state); err != nil {
		return fmt.Errorf("saving validation state: %w", err)
	}

	fmt.Printf("Marked %s as %s\n", imageFilename, verdict)
	return nil
}
