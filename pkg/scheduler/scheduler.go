// Package scheduler drives the competition lifecycle on-chain. It never
// writes indexed entities: it reads aggregate state, polls collateral and
// submits transactions; the resulting events flow back in through the sweeps.
package scheduler

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/openlaunch/launchpad-indexer/internal/metrics"
	"github.com/openlaunch/launchpad-indexer/pkg/config"
	"github.com/openlaunch/launchpad-indexer/pkg/launch"
)

// Chain is the transaction-side dependency, satisfied by *chain.Client.
type Chain interface {
	TokenCollateral(ctx context.Context, launchpad, token common.Address) (*big.Int, error)
	StartCompetition(ctx context.Context, launchpad common.Address) (*types.Transaction, error)
	SetWinner(ctx context.Context, launchpad common.Address, competitionID *big.Int) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Reader is the read-only view of the indexed state the scheduler consults.
type Reader interface {
	LatestCompetition(ctx context.Context, sourceAddress string) (*launch.Competition, error)
	CompetitionTokens(ctx context.Context, competitionRowID int64) ([]*launch.Token, error)
}

// Scheduler checks on a fixed interval whether the current competition epoch
// is due to roll over, and performs the rollover on-chain when it is.
type Scheduler struct {
	cfg       *config.CompetitionConfig
	launchpad common.Address
	chain     Chain
	reader    Reader
	logger    *zap.Logger

	// Injected for deterministic tests.
	now func() time.Time
	rng *rand.Rand

	// Cached rollover target; recomputed when the observed epoch changes.
	boundaryKey uint64
	boundary    time.Time
}

// New creates a scheduler for one launchpad contract.
func New(cfg *config.CompetitionConfig, chain Chain, reader Reader, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		launchpad: common.HexToAddress(cfg.Source),
		chain:     chain,
		reader:    reader,
		logger:    logger,
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run loops until the context is cancelled. Check failures are logged and
// retried on the next tick; nothing here is fatal to the process.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Starting competition scheduler",
		zap.String("launchpad", s.launchpad.Hex()),
		zap.Int("interval_days", s.cfg.IntervalDays),
		zap.Duration("check_interval", s.cfg.CheckInterval))

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.check(ctx); err != nil {
				s.logger.Error("Competition check failed", zap.Error(err))
			}
		}
	}
}

func (s *Scheduler) check(ctx context.Context) error {
	prev, err := s.reader.LatestCompetition(ctx, strings.ToLower(s.launchpad.Hex()))
	if err != nil {
		return err
	}

	now := s.now()

	// The boundary is pinned once per epoch so the jitter does not drift
	// between ticks. An epoch change, observed through the latest active
	// competition id, forces a recompute.
	key := uint64(0)
	if prev != nil && !prev.IsCompleted {
		key = prev.CompetitionID
	}
	if s.boundary.IsZero() || s.boundaryKey != key {
		s.boundaryKey = key
		s.boundary = s.nextBoundary(now, prev)
		s.logger.Info("Next competition boundary", zap.Time("boundary", s.boundary))
	}
	if now.Before(s.boundary) {
		return nil
	}

	// Rolling over an existing epoch requires at least one token above the
	// collateral threshold; the first competition starts unconditionally.
	if prev != nil {
		qualified, err := s.anyTokenQualified(ctx, prev)
		if err != nil {
			return err
		}
		if !qualified {
			s.logger.Info("No token above collateral threshold, deferring rollover",
				zap.Uint64("competition_id", prev.CompetitionID))
			return nil
		}
	}

	if err := s.rollover(ctx, prev); err != nil {
		return err
	}

	// The new competition becomes visible only after the indexer sweeps the
	// NewCompetitionStarted event. Push the boundary a full interval out so
	// the rollover does not fire twice against stale state; the epoch change
	// recomputes it from the actual start.
	s.boundary = now.Add(time.Duration(s.cfg.IntervalDays) * 24 * time.Hour)
	return nil
}

// nextBoundary computes when the current epoch should roll over. With no
// prior competition, a completed one, or an interval that has already elapsed,
// the rollover is re-anchored to the next midnight; otherwise it is the prior
// start plus the configured interval. Either way a random jitter is added so
// rollovers of multiple deployments do not align.
func (s *Scheduler) nextBoundary(now time.Time, prev *launch.Competition) time.Time {
	var base time.Time
	interval := time.Duration(s.cfg.IntervalDays) * 24 * time.Hour

	if prev != nil && !prev.IsCompleted {
		start := time.Unix(int64(prev.TimestampStart), 0)
		base = start.Add(interval)
		if !base.After(now) {
			base = nextMidnight(now)
		}
	} else {
		base = nextMidnight(now)
	}

	if s.cfg.BoundaryJitter > 0 {
		base = base.Add(time.Duration(s.rng.Int63n(int64(s.cfg.BoundaryJitter))))
	}
	return base
}

func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
}

// anyTokenQualified polls the on-chain collateral of every enabled token in
// the competition until one clears the threshold.
func (s *Scheduler) anyTokenQualified(ctx context.Context, competition *launch.Competition) (bool, error) {
	tokens, err := s.reader.CompetitionTokens(ctx, competition.ID)
	if err != nil {
		return false, err
	}

	threshold := s.cfg.Threshold()
	for _, token := range tokens {
		collateral, err := s.chain.TokenCollateral(ctx, s.launchpad, common.HexToAddress(token.Address))
		if err != nil {
			metrics.RPCErrorsTotal.WithLabelValues("collateral").Inc()
			return false, fmt.Errorf("failed to read collateral of %s: %w", token.Address, err)
		}
		if collateral.Cmp(threshold) >= 0 {
			return true, nil
		}
	}
	return false, nil
}

// rollover starts the next competition and, when a previous one exists,
// settles its winner. Each submission is retried a bounded number of times;
// exhaustion defers to the next check cycle.
func (s *Scheduler) rollover(ctx context.Context, prev *launch.Competition) error {
	s.logger.Info("Rolling over competition epoch")

	err := s.submit(ctx, "start_competition", func(ctx context.Context) (*types.Transaction, error) {
		return s.chain.StartCompetition(ctx, s.launchpad)
	})
	if err != nil {
		return err
	}

	if prev == nil {
		return nil
	}

	competitionID := new(big.Int).SetUint64(prev.CompetitionID)
	return s.submit(ctx, "set_winner", func(ctx context.Context) (*types.Transaction, error) {
		return s.chain.SetWinner(ctx, s.launchpad, competitionID)
	})
}

func (s *Scheduler) submit(ctx context.Context, method string, send func(ctx context.Context) (*types.Transaction, error)) error {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.cfg.RetryDelay):
			}
		}

		tx, err := send(ctx)
		if err == nil {
			_, err = s.chain.WaitMined(ctx, tx)
		}
		if err == nil {
			metrics.CompetitionTxsSent.WithLabelValues(method, "ok").Inc()
			s.logger.Info("Competition transaction confirmed", zap.String("method", method))
			return nil
		}

		lastErr = err
		metrics.CompetitionTxsSent.WithLabelValues(method, "error").Inc()
		s.logger.Warn("Competition transaction failed",
			zap.String("method", method),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return fmt.Errorf("%s failed after %d attempts: %w", method, s.cfg.MaxRetries+1, lastErr)
}
