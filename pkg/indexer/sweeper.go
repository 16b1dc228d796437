package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openlaunch/launchpad-indexer/internal/metrics"
	"github.com/openlaunch/launchpad-indexer/pkg/config"
)

// TxRunner opens one database transaction per sweep. *store.Store is adapted
// to it in cmd; tests substitute an in-memory runner.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx EntityTx) error) error
}

// HeightSource reports the chain head.
type HeightSource interface {
	CurrentHeight(ctx context.Context) (uint64, error)
}

// Sweeper drives the ingestion loop for one source contract: plan the next
// block window, fetch its logs, decode and order them, then apply everything
// plus the cursor advance in a single transaction. A crash at any point leaves
// the cursor on the last committed sweep, so restart re-runs at most one sweep
// and never half of one.
type Sweeper struct {
	source    config.SourceConfig
	cfg       *config.IndexerConfig
	heights   HeightSource
	fetcher   *Fetcher
	processor *Processor
	db        TxRunner
	logger    *zap.Logger
}

// NewSweeper creates a sweeper for one source contract.
func NewSweeper(source config.SourceConfig, cfg *config.IndexerConfig, heights HeightSource, fetcher *Fetcher, processor *Processor, db TxRunner, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		source:    source,
		cfg:       cfg,
		heights:   heights,
		fetcher:   fetcher,
		processor: processor,
		db:        db,
		logger:    logger.With(zap.String("source", strings.ToLower(source.Address))),
	}
}

// Run loops until the context is cancelled. It returns an error only for a
// fatal inconsistency; transient failures are logged and retried from the
// unmoved cursor.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("Starting sweeper",
		zap.Uint64("start_block", s.source.StartBlock),
		zap.Uint64("window_blocks", s.cfg.WindowBlocks),
		zap.Uint64("subrange_blocks", s.cfg.SubrangeBlocks))

	for {
		if ctx.Err() != nil {
			return nil
		}

		caughtUp, err := s.sweep(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			return nil
		case errors.Is(err, ErrInconsistent):
			return err
		case err != nil:
			metrics.SweepsTotal.WithLabelValues(s.sourceAddr(), "error").Inc()
			s.logger.Error("Sweep failed, retrying", zap.Error(err))
			if !s.sleep(ctx, s.cfg.RetryInterval) {
				return nil
			}
		case caughtUp:
			if !s.sleep(ctx, s.cfg.IdleInterval) {
				return nil
			}
		}
	}
}

func (s *Sweeper) sourceAddr() string {
	return strings.ToLower(s.source.Address)
}

// sweep runs one full cycle and reports whether the cursor has caught up with
// the chain head.
func (s *Sweeper) sweep(ctx context.Context) (bool, error) {
	source := s.sourceAddr()

	// Bootstrap or read the cursor in its own short transaction.
	var last uint64
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx EntityTx) error {
		cursor, err := tx.GetCursor(ctx, source)
		if err != nil {
			return err
		}
		if cursor == nil {
			last = s.source.StartBlock
			return tx.SaveCursor(ctx, source, last)
		}
		last = cursor.LastIndexedBlock
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to load cursor: %w", err)
	}

	head, err := s.heights.CurrentHeight(ctx)
	if err != nil {
		metrics.RPCErrorsTotal.WithLabelValues("height").Inc()
		return false, err
	}

	ranges := Plan(last, head, s.cfg.WindowBlocks, s.cfg.SubrangeBlocks)
	if len(ranges) == 0 {
		return true, nil
	}
	target := ranges[len(ranges)-1].To

	started := time.Now()
	logger := s.logger.With(
		zap.String("sweep_id", uuid.New().String()),
		zap.Uint64("from_block", ranges[0].From),
		zap.Uint64("to_block", target))

	logs, err := s.fetcher.Fetch(ctx, ranges)
	if err != nil {
		metrics.RPCErrorsTotal.WithLabelValues("get_logs").Inc()
		return false, fmt.Errorf("failed to fetch logs: %w", err)
	}

	events, err := DecodeAndSort(logs)
	if err != nil {
		// Undecodable logs from our own topic filter mean an ABI mismatch;
		// retrying cannot help.
		return false, fmt.Errorf("%w: %v", ErrInconsistent, err)
	}

	err = s.db.RunInTx(ctx, func(ctx context.Context, tx EntityTx) error {
		if err := s.processor.Apply(ctx, tx, events); err != nil {
			return err
		}
		return tx.SaveCursor(ctx, source, target)
	})
	if err != nil {
		return false, err
	}

	metrics.SweepsTotal.WithLabelValues(source, "ok").Inc()
	metrics.SweepDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	metrics.LastIndexedBlock.WithLabelValues(source).Set(float64(target))
	for _, ev := range events {
		metrics.EventsProcessed.WithLabelValues(source, ev.Kind()).Inc()
	}

	logger.Info("Sweep committed",
		zap.Int("events", len(events)),
		zap.Duration("duration", time.Since(started)))

	return target >= head, nil
}

// sleep waits for d or cancellation; reports false when cancelled.
func (s *Sweeper) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
