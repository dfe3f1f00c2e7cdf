// Package processor implements the occurrence engine: confidence-threshold
// species filtering, species-type classification, independent-event tagging
// and the operator-correction overlay. All stages mutate detection records in
// place and run strictly sequentially over a batch.
package processor

import (
	"log/slog"
	"time"

	"github.com/wakin721/Neri/internal/conf"
	"github.com/wakin721/Neri/internal/detection"
	"github.com/wakin721/Neri/internal/logging"
	"github.com/wakin721/Neri/internal/taxonomy"
)

// Processor ties the engine stages to their configuration and reference data.
type Processor struct {
	Settings *conf.Settings
	Taxonomy *taxonomy.Taxonomy

	log *slog.Logger
}

// New creates a processor for one batch run.
func New(settings *conf.Settings, tax *taxonomy.Taxonomy) *Processor {
	return &Processor{
		Settings: settings,
		Taxonomy: tax,
		log:      logging.ForService("processor"),
	}
}

// ClassifyRecord recomputes the record's coarse species types from its
// current species list. It applies to automatic and operator-corrected
// records alike; classification never consults confidence data.
func (p *Processor) ClassifyRecord(rec *detection.Record) {
	rec.SpeciesTypes = p.Taxonomy.ClassifyTypes(rec.Species)
}

// Prepare runs the full derivation pipeline over a batch snapshot: threshold
// filtering and type classification per record, then the independent-event
// sweep and working-day computation over the whole set. The pass is
// idempotent, so a caller may safely re-invoke it after aborting.
func (p *Processor) Prepare(records []*detection.Record) {
	for _, rec := range records {
		p.ApplyThresholds(rec)
		p.ClassifyRecord(rec)
	}

	cooldown := time.Duration(p.Settings.Independence.CooldownSeconds) * time.Second
	TagIndependents(records, p.Settings.Thresholds, cooldown)

	ComputeWorkingDays(records)
}
