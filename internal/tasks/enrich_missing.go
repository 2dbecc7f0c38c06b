package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// EnrichMissingTask enriches every book lacking metadata, one at a time.
type EnrichMissingTask struct{}

func (t EnrichMissingTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_missing",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Hour, // OpenLibrary allows one request per second
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichMissingProcessor creates a processor function for EnrichMissingTask.
// Failures on individual books are logged, not retried.
func EnrichMissingProcessor(enricher BookEnricher, logger *zap.Logger) backlite.QueueProcessor[EnrichMissingTask] {
	return func(ctx context.Context, _ EnrichMissingTask) error {
		if enricher == nil {
			return errors.New("enricher not configured")
		}

		result, err := enricher.EnrichAllMissing(ctx)
		if err != nil {
			return fmt.Errorf("enrich missing metadata: %w", err)
		}

		logger.Info("metadata sweep complete",
			zap.Int("total", result.TotalBooks),
			zap.Int("enriched", result.Enriched),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed))
		for _, msg := range result.Errors {
			logger.Warn("book enrichment failed", zap.String("error", msg))
		}
		return nil
	}
}

func NewEnrichMissingQueue(enricher BookEnricher, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(EnrichMissingProcessor(enricher, orNop(logger)))
}
