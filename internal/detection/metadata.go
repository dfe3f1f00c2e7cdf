// metadata.go: image metadata extraction contract. EXIF parsing is an
// external collaborator; the engine only depends on this interface.
package detection

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wakin721/Neri/internal/errors"
)

// Metadata is the per-image information the engine needs from a metadata
// extractor. A zero CaptureTimestamp means the image carried none.
type Metadata struct {
	Format           string
	CaptureTimestamp time.Time
}

// MetadataProvider extracts capture metadata from a source image.
type MetadataProvider interface {
	Extract(imagePath string) (Metadata, error)
}

// FileInfoMetadata is the fallback provider used when no EXIF-capable
// extractor is wired in. It derives the format from the file extension and
// the capture timestamp from the file modification time, which camera-trap
// SD card dumps usually preserve.
type FileInfoMetadata struct{}

// Extract implements MetadataProvider.
func (FileInfoMetadata) Extract(imagePath string) (Metadata, error) {
	info, err := os.Stat(imagePath)
	if err != nil {
		return Metadata{}, errors.New(err).
			Category(errors.CategoryImageMeta).
			FileContext(imagePath).
			Build()
	}

	ext := strings.TrimPrefix(filepath.Ext(imagePath), ".")
	return Metadata{
		Format:           strings.ToUpper(ext),
		CaptureTimestamp: info.ModTime(),
	}, nil
}
