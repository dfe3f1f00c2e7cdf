// detector.go: contract with the external object-detection model and the
// bounded-wait wrapper around its invocation.
package detection

import (
	"context"
	"time"

	"github.com/wakin721/Neri/internal/conf"
	"github.com/wakin721/Neri/internal/errors"
)

// Result is the raw output of one detector invocation. Confidences and
// Classes are index-aligned, one element per emitted box. ClassNames maps
// string-typed class ids to display species names.
type Result struct {
	Boxes       []Box
	Confidences []float64
	Classes     []int
	ClassNames  map[string]string
}

// Detector is the external detection capability. The settings carry the model
// path and the NMS/confidence parameters the implementation should run with.
// Implementations are expected to honor context cancellation but the Run
// wrapper bounds the wait even for ones that do not.
type Detector interface {
	Detect(ctx context.Context, imagePath string, settings conf.DetectionSettings) (*Result, error)
}

// Run invokes the detector with the configured parameters and a hard timeout
// taken from settings. On timeout a CategoryTimeout error is returned and no
// partial result is surfaced; retrying is the caller's decision.
func Run(ctx context.Context, d Detector, imagePath string, settings conf.DetectionSettings) (*Result, error) {
	timeout := time.Duration(settings.TimeoutSeconds * float64(time.Second))
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		res *Result
		err error
	}
	// Buffered so a detector that ignores cancellation can still complete
	// and let its goroutine exit after we stop listening.
	done := make(chan outcome, 1)

	start := time.Now()
	go func() {
		res, err := d.Detect(ctx, imagePath, settings)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, errors.Wrap(out.err).
				Category(errors.CategoryModelLoad).
				FileContext(imagePath).
				Timing("detect", time.Since(start)).
				Build()
		}
		return out.res, nil
	case <-ctx.Done():
		return nil, errors.Newf("species detection timed out after %s", timeout).
			Category(errors.CategoryTimeout).
			FileContext(imagePath).
			Timing("detect", time.Since(start)).
			Build()
	}
}

// NewRecord builds a fresh record from a detector result and image metadata.
// Derived fields (species, counts, confidence, types) start empty; the
// threshold filter fills them in.
func NewRecord(imageFilename string, md Metadata, res *Result) *Record {
	rec := &Record{
		Filename:         imageFilename,
		Format:           md.Format,
		CaptureTimestamp: md.CaptureTimestamp,
		DetectionTime:    time.Now().Format(DetectionTimeLayout),
	}
	if res != nil {
		rec.Boxes = res.Boxes
		rec.AllConfidences = res.Confidences
		rec.AllClasses = res.Classes
		rec.ClassNames = res.ClassNames
	}
	return rec
}
