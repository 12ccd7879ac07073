package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"seoflow/internal/logging"
	"seoflow/internal/services"
	"seoflow/internal/sheet"
)

// ProcessFunc handles one record. Returning nil counts the record as
// processed. Validation errors count it as skipped, fatal errors abort the
// batch, anything else counts it as failed.
type ProcessFunc func(ctx context.Context, record *sheet.Record) error

// RunBatch drives a workflow's per-record loop with failure isolation.
// Failed and skipped records keep their status and carry the error in
// last_error so the next run retries them.
func RunBatch(ctx context.Context, logger *slog.Logger, store *sheet.Store, records []*sheet.Record, fn ProcessFunc) (Summary, error) {
	start := time.Now()
	summary := Summary{}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, err
		}

		recordCtx := services.WithRecordID(ctx, record.ID)
		err := fn(recordCtx, record)
		if err == nil {
			summary.Processed++
			continue
		}

		if services.Fatal(err) {
			summary.Elapsed = time.Since(start)
			logger.Error("batch aborted",
				logging.Int64(logging.FieldRecordID, record.ID),
				logging.Error(err),
			)
			return summary, err
		}

		if markErr := store.SetLastError(recordCtx, record.ID, err.Error()); markErr != nil {
			summary.Elapsed = time.Since(start)
			return summary, markErr
		}

		if errors.Is(err, services.ErrValidation) {
			summary.Skipped++
			logger.Warn("record skipped",
				logging.Int64(logging.FieldRecordID, record.ID),
				logging.Error(err),
			)
			continue
		}

		summary.Failed++
		logger.Error("record failed",
			logging.Int64(logging.FieldRecordID, record.ID),
			logging.Error(err),
		)
	}

	summary.Elapsed = time.Since(start)
	return summary, nil
}
