package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openlaunch/launchpad-indexer/pkg/launch"
	"github.com/openlaunch/launchpad-indexer/pkg/store/dao"
)

// LatestCompetition retrieves the most recently started competition for a
// source contract. Returns nil when none has been indexed yet.
func (t *Tx) LatestCompetition(ctx context.Context, sourceAddress string) (*launch.Competition, error) {
	d := new(dao.CompetitionDao)
	err := t.db.NewSelect().
		Model(d).
		Where("source_address = ?", sourceAddress).
		Order("competition_id DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest competition: %w", err)
	}
	return toCompetition(d), nil
}

// CompetitionByOnchainID retrieves a competition by its on-chain id.
// Returns nil when not indexed.
func (t *Tx) CompetitionByOnchainID(ctx context.Context, sourceAddress string, competitionID uint64) (*launch.Competition, error) {
	d := new(dao.CompetitionDao)
	err := t.db.NewSelect().
		Model(d).
		Where("source_address = ?", sourceAddress).
		Where("competition_id = ?", int64(competitionID)).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	return toCompetition(d), nil
}

// InsertCompetition creates a competition record and fills in its assigned id.
func (t *Tx) InsertCompetition(ctx context.Context, c *launch.Competition) error {
	d := toCompetitionDao(c)
	_, err := t.db.NewInsert().
		Model(d).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert competition: %w", err)
	}
	c.ID = d.ID
	return nil
}

// CompleteCompetition closes a competition at the given timestamp.
func (t *Tx) CompleteCompetition(ctx context.Context, competitionRowID int64, endTimestamp uint64) error {
	_, err := t.db.NewUpdate().
		Model((*dao.CompetitionDao)(nil)).
		Set("is_completed = TRUE").
		Set("timestamp_end = ?", int64(endTimestamp)).
		Where("id = ?", competitionRowID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete competition: %w", err)
	}
	return nil
}

// SetCompetitionWinner records the winning token on a competition row.
func (t *Tx) SetCompetitionWinner(ctx context.Context, competitionRowID, tokenID int64) error {
	_, err := t.db.NewUpdate().
		Model((*dao.CompetitionDao)(nil)).
		Set("winner_token_id = ?", tokenID).
		Where("id = ?", competitionRowID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set competition winner: %w", err)
	}
	return nil
}
