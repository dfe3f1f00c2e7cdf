// Package export implements the export subcommand: run the full derivation
// pipeline over a batch and materialize the occurrence table.
package export

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wakin721/Neri/internal/analysis/processor"
	"github.com/wakin721/Neri/internal/conf"
	"github.com/wakin721/Neri/internal/datastore"
	"github.com/wakin721/Neri/internal/detection"
	exporter "github.com/wakin721/Neri/internal/export"
	"github.com/wakin721/Neri/internal/taxonomy"
)

// Command creates the export command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [output-file]",
		Short: "Export the deduplicated occurrence table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := "校验结果"
			if len(args) > 0 {
				output = args[0]
			}
			return runExport(settings, output)
		},
	}

	cmd.PersistentFlags().StringVar(&settings.Output.Format, "format",
		settings.Output.Format, "Output format, csv or excel")

	return cmd
}

func runExport(settings *conf.Settings, output string) error {
	if settings.Input.ArtifactDir == "" || settings.Input.SourceDir == "" {
		return fmt.Errorf("both --artifacts and --source must be set")
	}

	tax := taxonomy.Load(settings.Taxonomy.BirdListPath, settings.Taxonomy.PersonnelAliases)

	records, err := detection.LoadBatch(settings.Input.ArtifactDir, settings.Input.SourceDir,
		detection.FileInfoMetadata{})
	if err != nil {
		return fmt.Errorf("loading batch: %w", err)
	}

	proc := processor.New(settings, tax)
	mat := exporter.New(proc)

	if err := mat.Export(records, output, settings.Output.Format); err != nil {
		return fmt.Errorf("exporting batch: %w", err)
	}

	// Optional database materialization of the same processed batch.
	if store := datastore.New(settings); store != nil {
		if err := saveToDatabase(store, records); err != nil {
			return fmt.Errorf("saving batch to database: %w", err)
		}
	}

	fmt.Printf("Exported %d records to %s\n", len(records), output)
	return nil
}

func saveToDatabase(store datastore.Interface, records []*detection.Record) error {
	if err := store.Open(); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close occurrence database", "error", err)
		}
	}()

	batchID := uuid.NewString()
	occurrences := make([]datastore.Occurrence, 0, len(records))
	for _, rec := range records {
		occurrences = append(occurrences, datastore.NewOccurrence(batchID, rec))
	}

	if err := store.SaveBatch(batchID, occurrences); err != nil {
		return err
	}

	slog.Info("batch saved to database", "batch_id", batchID, "records", len(occurrences))
	return nil
}
