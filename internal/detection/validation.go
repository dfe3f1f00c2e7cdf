// validation.go: the per-batch validation-state file. Maps image filename to
// true (confirmed correct) or false (flagged or corrected). Read and written
// wholesale, one file per batch.
package detection

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wakin721/Neri/internal/errors"
)

// ValidationFilename is the fixed name of the validation-state file inside
// the artifact directory.
const ValidationFilename = "validation.json"

// LoadValidationState reads the validation map for a batch. A missing or
// corrupt file degrades to an empty map so review can start over instead of
// blocking the batch.
func LoadValidationState(artifactDir string) map[string]bool {
	path := filepath.Join(artifactDir, ValidationFilename)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read validation state", "path", path, "error", err)
		}
		return map[string]bool{}
	}

	state := map[string]bool{}
	if err := json.Unmarshal(data, &state); err != nil {
		slog.Warn("validation state file is corrupt, starting empty",
			"path", path, "error", err)
		return map[string]bool{}
	}
	return state
}

// SaveValidationState writes the validation map for a batch.
func SaveValidationState(artifactDir string, state map[string]bool) error {
	path := filepath.Join(artifactDir, ValidationFilename)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryFileParsing).
			FileContext(path).
			Build()
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	return nil
}
