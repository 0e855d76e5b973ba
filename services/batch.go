package services

import (
	"context"

	"despachos/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type batchStep[T any] func(ctx context.Context, cfg *models.Configuration, sender Sender, item T, batchID *string) (models.SubmissionResult, error)

func identity(s string) string { return s }

// runBatch applies step to every item under the submission lock, pausing
// between items. One sender serves the whole batch. An error from step
// becomes a failed result keyed by key(item) and the batch goes on.
func runBatch[T any](ctx context.Context, d *Dispatcher, cfg *models.Configuration, kind string, items []T, key func(T) string, step batchStep[T]) (*models.BatchResult, error) {
	if cfg == nil {
		return nil, ErrConfigMissing
	}
	release, err := d.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	batch := &models.BatchResult{BatchID: uuid.NewString(), Results: []models.SubmissionResult{}}
	sender := d.newSender(cfg)
	d.logger.Info(kind+" batch started", zap.String("batch_id", batch.BatchID), zap.Int("items", len(items)))
	for i, item := range items {
		if i > 0 {
			d.sleep(d.pause)
		}
		res, err := step(ctx, cfg, sender, item, &batch.BatchID)
		if err != nil {
			res.Success = false
			if res.Consecutive == "" {
				res.Consecutive = key(item)
			}
			res.Message = err.Error()
		}
		batch.Add(res)
	}
	d.logger.Info(kind+" batch finished",
		zap.String("batch_id", batch.BatchID),
		zap.Int("exitosos", batch.Successes),
		zap.Int("errores", batch.Failures),
	)
	return batch, nil
}
