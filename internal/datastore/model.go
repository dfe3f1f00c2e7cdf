// model.go: database model for materialized occurrence rows
package datastore

import (
	"time"

	"github.com/wakin721/Neri/internal/detection"
	"github.com/wakin721/Neri/internal/taxonomy"
)

// Occurrence is one exported occurrence row, keyed by batch so repeated
// exports of the same deployment stay distinguishable.
type Occurrence struct {
	ID      uint   `gorm:"primaryKey"`
	BatchID string `gorm:"index:idx_occurrences_batch"`

	Filename    string `gorm:"index:idx_occurrences_filename"`
	Format      string
	CaptureDate string `gorm:"index:idx_occurrences_date"`
	CaptureTime string
	WorkingDays int

	SpeciesNames  string `gorm:"index:idx_occurrences_species"`
	SpeciesTypes  string
	SpeciesCounts string
	MinConfidence string
	Independent   bool `gorm:"index:idx_occurrences_independent"`
	Remark        string

	ManuallyVerified bool
	CreatedAt        time.Time
}

// NewOccurrence projects a processed record into a database row.
func NewOccurrence(batchID string, rec *detection.Record) Occurrence {
	return Occurrence{
		BatchID:          batchID,
		Filename:         rec.Filename,
		Format:           rec.Format,
		CaptureDate:      rec.CaptureDate(),
		CaptureTime:      rec.CaptureTime(),
		WorkingDays:      rec.WorkingDays,
		SpeciesNames:     rec.Species.String(),
		SpeciesTypes:     taxonomy.TypeString(rec.SpeciesTypes),
		SpeciesCounts:    rec.Counts.String(),
		MinConfidence:    rec.MinConfidence.String(),
		Independent:      rec.Independent,
		Remark:           rec.Remark,
		ManuallyVerified: rec.Verification == detection.ManuallyVerified,
	}
}
