package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openlaunch/launchpad-indexer/pkg/launch"
	"github.com/openlaunch/launchpad-indexer/pkg/store/dao"
)

// GetCursor retrieves the high-water mark for a source contract.
// Returns nil when no cursor has been persisted yet.
func (t *Tx) GetCursor(ctx context.Context, sourceAddress string) (*launch.Cursor, error) {
	d := new(dao.CursorDao)
	err := t.db.NewSelect().
		Model(d).
		Where("source_address = ?", sourceAddress).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cursor: %w", err)
	}
	return &launch.Cursor{
		SourceAddress:    d.SourceAddress,
		LastIndexedBlock: uint64(d.LastIndexedBlock),
		UpdatedAt:        d.UpdatedAt,
	}, nil
}

// SaveCursor upserts the high-water mark for a source contract.
func (t *Tx) SaveCursor(ctx context.Context, sourceAddress string, block uint64) error {
	d := &dao.CursorDao{
		SourceAddress:    sourceAddress,
		LastIndexedBlock: int64(block),
	}
	_, err := t.db.NewInsert().
		Model(d).
		On("CONFLICT (source_address) DO UPDATE").
		Set("last_indexed_block = EXCLUDED.last_indexed_block").
		Set("updated_at = NOW()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save cursor: %w", err)
	}
	return nil
}
