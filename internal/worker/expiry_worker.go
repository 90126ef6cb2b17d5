package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/service"
)

const (
	sweepInterval = time.Minute
	sweepBatch    = 200
)

// ExpiryWorker periodically scores pending exams whose deadline passed
// without anyone touching them again. Correctness never depends on it:
// every exam access already applies lazy expiry. The sweep only keeps
// abandoned sessions from lingering as pending forever.
type ExpiryWorker struct {
	exams *service.ExamService
	log   zerolog.Logger
}

// NewExpiryWorker creates a new ExpiryWorker.
func NewExpiryWorker(exams *service.ExamService, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		exams: exams,
		log:   log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (w *ExpiryWorker) Run(ctx context.Context) {
	w.log.Info().Dur("interval", sweepInterval).Msg("expiry worker started")

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("expiry worker stopped")
			return
		case <-ticker.C:
			scored, err := w.exams.SweepExpired(ctx, sweepBatch)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep failed")
				continue
			}
			if scored > 0 {
				w.log.Info().Int("scored", scored).Msg("expired exams auto-scored")
			}
		}
	}
}
