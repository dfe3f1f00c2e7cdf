// Package export materializes a processed batch into the fixed-schema
// occurrence table, as delimited text or a spreadsheet workbook.
package export

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/wakin721/Neri/internal/analysis/processor"
	"github.com/wakin721/Neri/internal/detection"
	"github.com/wakin721/Neri/internal/errors"
	"github.com/wakin721/Neri/internal/logging"
	"github.com/wakin721/Neri/internal/taxonomy"
)

// SheetName is the fixed sheet name of the spreadsheet variant.
const SheetName = "物种检测信息"

// IndependentMark is how a positive independent-detection verdict renders in
// the table; the negative verdict renders empty.
const IndependentMark = "是"

// Supported output formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

// Columns is the fixed output schema in column order. Missing values render
// empty; fields outside this schema are dropped.
var Columns = []string{
	"文件名", "格式", "拍摄日期", "拍摄时间", "工作天数",
	"物种名称", "物种类型", "物种数量", "最低置信度", "独立探测首只", "备注",
}

// Materializer turns processed records into tabular artifacts.
type Materializer struct {
	proc *processor.Processor
	log  *slog.Logger
}

// New creates a materializer over a processor.
func New(proc *processor.Processor) *Materializer {
	return &Materializer{
		proc: proc,
		log:  logging.ForService("export"),
	}
}

// Export runs the derivation pipeline over the batch and writes the
// occurrence table to outputPath in the requested format. Failures are
// returned as errors, never panics; the caller decides user-facing behavior.
func (m *Materializer) Export(records []*detection.Record, outputPath, format string) error {
	if len(records) == 0 {
		return errors.Newf("no records to export").
			Category(errors.CategoryExport).
			Build()
	}

	m.proc.Prepare(records)
	rows := BuildRows(records)

	var err error
	switch strings.ToLower(format) {
	case FormatCSV:
		err = WriteCSV(outputPath, rows)
	case FormatExcel:
		err = WriteXLSX(outputPath, rows)
	default:
		return errors.Newf("unsupported export format: %q", format).
			Category(errors.CategoryExport).
			Context("format", format).
			Build()
	}
	if err != nil {
		return err
	}

	m.log.Info("batch exported",
		"records", len(records),
		"output", outputPath,
		"format", format)
	return nil
}

// BuildRows projects records onto the fixed schema, one row per image, in
// input order. Header row excluded.
func BuildRows(records []*detection.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, buildRow(rec))
	}
	return rows
}

func buildRow(rec *detection.Record) []string {
	workingDays := ""
	if rec.WorkingDays > 0 {
		workingDays = strconv.Itoa(rec.WorkingDays)
	}

	independent := ""
	if rec.Independent {
		independent = IndependentMark
	}

	// The species and count cells keep the 空 sentinel for a record with no
	// qualifying detections while the confidence cell stays empty; the type
	// cell is empty as well. The tagged types encode that directly.
	return []string{
		rec.Filename,
		rec.Format,
		rec.CaptureDate(),
		rec.CaptureTime(),
		workingDays,
		rec.Species.String(),
		taxonomy.TypeString(rec.SpeciesTypes),
		rec.Counts.String(),
		rec.MinConfidence.String(),
		independent,
		rec.Remark,
	}
}
